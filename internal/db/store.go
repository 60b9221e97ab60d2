// Package db wraps DuckDB for the durable substrates: episodic
// memories and cost logs (relational), long-term facts (vector, via the
// VSS extension), and encrypted per-user credentials.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
)

// Store wraps DuckDB operations. One Store per process; handles are
// explicitly constructed and injected, never ambient.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath and applies the
// schema.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize sets up the database schema and extensions
func (s *Store) initialize() error {
	schema := `
		-- Install and load VSS extension for fact similarity search
		INSTALL vss;
		LOAD vss;

		CREATE TABLE IF NOT EXISTS episodic_memories (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			session_id VARCHAR NOT NULL,
			summary TEXT NOT NULL,
			importance_score DOUBLE DEFAULT 0.5,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			is_archived BOOLEAN DEFAULT FALSE
		);

		CREATE TABLE IF NOT EXISTS longterm_facts (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			fact_key VARCHAR NOT NULL,
			content TEXT NOT NULL,
			embedding FLOAT[768],
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS cost_logs (
			query_id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			session_id VARCHAR NOT NULL,
			working_memory_tokens INTEGER DEFAULT 0,
			episodic_memory_tokens INTEGER DEFAULT 0,
			longterm_memory_tokens INTEGER DEFAULT 0,
			user_message_tokens INTEGER DEFAULT 0,
			response_tokens INTEGER DEFAULT 0,
			total_tokens INTEGER DEFAULT 0,
			actual_cost DOUBLE DEFAULT 0,
			naive_cost DOUBLE DEFAULT 0,
			cost_saved DOUBLE DEFAULT 0,
			savings_percent DOUBLE DEFAULT 0,
			model_used VARCHAR,
			memory_hit BOOLEAN DEFAULT FALSE,
			memory_layer_used VARCHAR DEFAULT '',
			estimator_version VARCHAR,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS user_api_keys (
			user_id VARCHAR PRIMARY KEY,
			key_encrypted VARCHAR NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_episodic_user ON episodic_memories (user_id);
		-- Note: no index on created_at; archiving updates rows and DuckDB
		-- has trouble updating rows covered by a TIMESTAMP index.
		CREATE INDEX IF NOT EXISTS idx_facts_user ON longterm_facts (user_id);
		CREATE INDEX IF NOT EXISTS idx_costs_user ON cost_logs (user_id);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	// Try to create HNSW index for fact search (best effort; VSS falls
	// back to a scan without it)
	_, _ = s.db.Exec("CREATE INDEX IF NOT EXISTS idx_facts_embedding ON longterm_facts USING HNSW (embedding)")

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
