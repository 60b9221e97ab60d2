// Package config collects runtime configuration from environment
// variables, with an optional YAML file for model routing profiles and
// pricing overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/memvault/memvault/internal/models"
	"github.com/memvault/memvault/internal/router"
	"github.com/memvault/memvault/internal/tokens"
)

// Config is everything the process needs to start. Every field has a
// default except EncryptionKey, which the secrets layer rejects at
// startup when missing.
type Config struct {
	Port           string
	DBPath         string
	LLMBaseURL     string
	OllamaURL      string
	EmbeddingModel string
	EncryptionKey  string

	WorkingMemoryLimit int
	WorkingMemoryTTL   time.Duration
	EpisodicMaxAge     time.Duration
	SweepSchedule      string

	ModelConfigPath string
}

// FromEnv reads the configuration from the environment, filling in
// defaults for anything unset.
func FromEnv() Config {
	cfg := Config{
		Port:               envOr("PORT", "8000"),
		DBPath:             envOr("DUCKDB_PATH", filepath.Join(".", "memvault.duckdb")),
		LLMBaseURL:         envOr("LLM_BASE_URL", "https://api.groq.com/openai"),
		OllamaURL:          envOr("OLLAMA_URL", "http://localhost:11434"),
		EmbeddingModel:     envOr("EMBEDDING_MODEL", "nomic-embed-text"),
		EncryptionKey:      os.Getenv("ENCRYPTION_KEY"),
		WorkingMemoryLimit: envIntOr("WORKING_MEMORY_LIMIT", 10),
		WorkingMemoryTTL:   time.Duration(envIntOr("WORKING_MEMORY_TTL_SECONDS", 1800)) * time.Second,
		EpisodicMaxAge:     time.Duration(envIntOr("EPISODIC_MAX_AGE_DAYS", 7)) * 24 * time.Hour,
		SweepSchedule:      envOr("LIFECYCLE_SWEEP_SCHEDULE", "@hourly"),
		ModelConfigPath:    os.Getenv("MODEL_CONFIG_PATH"),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// modelFile is the YAML shape of the optional model configuration file.
type modelFile struct {
	Profiles map[string]models.ModelProfile `yaml:"profiles"`
	Pricing  tokens.PriceTable              `yaml:"pricing"`
}

// LoadModelConfig reads routing profiles and pricing from the YAML file
// at path. Missing path means built-in defaults. Profiles are keyed by
// tier name (simple, medium, complex); unknown tier names are an error,
// and tiers absent from the file keep their defaults.
func LoadModelConfig(path string) (map[router.Complexity]models.ModelProfile, tokens.PriceTable, error) {
	profiles := map[router.Complexity]models.ModelProfile{}
	pricing := tokens.DefaultPriceTable()

	if path == "" {
		return profiles, pricing, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tokens.PriceTable{}, fmt.Errorf("read model config: %w", err)
	}

	var file modelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, tokens.PriceTable{}, fmt.Errorf("parse model config: %w", err)
	}

	for name, profile := range file.Profiles {
		tier, err := tierFromName(name)
		if err != nil {
			return nil, tokens.PriceTable{}, err
		}
		profiles[tier] = profile
	}

	if len(file.Pricing.Models) > 0 {
		pricing = file.Pricing
		if pricing.DefaultModel == "" {
			pricing.DefaultModel = tokens.DefaultPriceTable().DefaultModel
		}
	}

	return profiles, pricing, nil
}

func tierFromName(name string) (router.Complexity, error) {
	switch name {
	case "simple":
		return router.Simple, nil
	case "medium":
		return router.Medium, nil
	case "complex":
		return router.Complex, nil
	default:
		return "", fmt.Errorf("unknown routing tier %q in model config", name)
	}
}
