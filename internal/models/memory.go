package models

import "time"

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one message in a working-memory session. Turns are immutable
// once appended; ordering is append order.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// EpisodicMemory is a summarized record of a past session. It is created
// only by promotion from working memory and is never deleted, only
// archived once its facts have been extracted to long-term memory.
type EpisodicMemory struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	SessionID       string    `json:"session_id"`
	Summary         string    `json:"summary"`
	ImportanceScore float64   `json:"importance_score"`
	CreatedAt       time.Time `json:"created_at"`
	Archived        bool      `json:"archived"`
}

// LongTermFact is a durable semantic fact about a user, retrievable by
// embedding similarity. The ID is derived from (userID, factKey,
// content hash) so re-extracting the same fact upserts in place.
type LongTermFact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FactKey   string    `json:"fact_key"`
	Content   string    `json:"content"` // "key: value" text, what gets embedded
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MemoryLayer names which memory tier satisfied a query's context.
type MemoryLayer string

const (
	LayerNone     MemoryLayer = ""
	LayerEpisodic MemoryLayer = "episodic"
	LayerLongTerm MemoryLayer = "longterm"
)
