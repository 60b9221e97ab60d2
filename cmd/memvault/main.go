package main

import (
	"fmt"
	"log"
	"os"

	"github.com/memvault/memvault/internal/api"
	"github.com/memvault/memvault/internal/chat"
	"github.com/memvault/memvault/internal/config"
	"github.com/memvault/memvault/internal/cost"
	"github.com/memvault/memvault/internal/db"
	"github.com/memvault/memvault/internal/embedding"
	"github.com/memvault/memvault/internal/kv"
	"github.com/memvault/memvault/internal/llm"
	"github.com/memvault/memvault/internal/mcp"
	"github.com/memvault/memvault/internal/memory"
	"github.com/memvault/memvault/internal/router"
	"github.com/memvault/memvault/internal/scheduler"
	"github.com/memvault/memvault/internal/secrets"
)

func main() {
	cfg := config.FromEnv()

	profiles, pricing, err := config.LoadModelConfig(cfg.ModelConfigPath)
	if err != nil {
		log.Fatalf("Failed to load model config: %v", err)
	}

	// Initialize database
	store, err := db.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Credential encryption
	keybox, err := secrets.NewKeybox(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize encryption: %v", err)
	}
	credentials := secrets.NewCredentialStore(store, keybox)

	// Memory tiers
	embedder := embedding.NewClient(cfg.OllamaURL, cfg.EmbeddingModel)
	working := memory.NewWorkingStore(kv.NewMemStore(), cfg.WorkingMemoryLimit, cfg.WorkingMemoryTTL)
	longterm := memory.NewLongTermStore(store, embedder)
	lifecycle := memory.NewLifecycle(working, store, longterm, cfg.EpisodicMaxAge)

	// Routing and cost accounting
	rt := router.New(profiles)
	tracker := cost.NewTracker(store, pricing)
	analytics := cost.NewAnalytics(store)

	// Chat pipeline
	chatService := chat.NewService(credentials, working, store, longterm, rt, tracker, lifecycle, cfg.LLMBaseURL)

	// Background sweep promotes aged memories without waiting for the
	// user's next chat.
	sweeper := scheduler.NewSweeper(store, credentials, lifecycle, cfg.EpisodicMaxAge, cfg.SweepSchedule,
		func(apiKey string) memory.Extractor {
			return llm.NewClient(cfg.LLMBaseURL, apiKey)
		})
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start memory sweep: %v", err)
	}
	defer sweeper.Stop()

	// HTTP API with MCP over SSE
	server := api.NewServer(store, chatService, working, analytics, credentials, cfg.Port)
	mcpServer := mcp.NewServer(chatService, store, longterm, analytics)
	server.AddMCPServer(mcpServer.GetMCPServer())

	fmt.Fprintf(os.Stderr, "===================================\n")
	fmt.Fprintf(os.Stderr, "MemVault starting...\n")
	fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.DBPath)
	fmt.Fprintf(os.Stderr, "LLM provider: %s\n", cfg.LLMBaseURL)
	fmt.Fprintf(os.Stderr, "Ollama: %s\n", cfg.OllamaURL)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.EmbeddingModel)
	fmt.Fprintf(os.Stderr, "Sweep schedule: %s\n", cfg.SweepSchedule)
	fmt.Fprintf(os.Stderr, "===================================\n")

	if err := server.Serve(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
