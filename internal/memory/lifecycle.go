package memory

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/memvault/memvault/internal/models"
)

// DefaultEpisodicMaxAge is how long an episodic memory stays active
// before it becomes a long-term promotion candidate.
const DefaultEpisodicMaxAge = 7 * 24 * time.Hour

// EpisodicRows is the slice of the relational store the lifecycle needs.
type EpisodicRows interface {
	InsertEpisodic(ctx context.Context, mem *models.EpisodicMemory) error
	EpisodicOlderThan(ctx context.Context, userID string, cutoff time.Time) ([]models.EpisodicMemory, error)
	ArchiveEpisodic(ctx context.Context, memoryID string) error
}

// Summarizer condenses a conversation into a summary and an importance
// score in [0,1].
type Summarizer interface {
	Summarize(ctx context.Context, turns []models.Turn) (string, float64, error)
}

// Extractor pulls a fact mapping out of a summary. Malformed output
// comes back as an empty mapping, not an error.
type Extractor interface {
	ExtractFacts(ctx context.Context, summary string) (map[string]any, error)
}

// Distiller is the external language-model capability the lifecycle
// borrows: summarization plus fact extraction, on the calling user's
// credentials.
type Distiller interface {
	Summarizer
	Extractor
}

// Lifecycle promotes memories up the tiers. Both steps are best-effort:
// a failure is logged and isolated, never propagated to the chat caller,
// and each step is safe to re-run.
type Lifecycle struct {
	working  *WorkingStore
	episodic EpisodicRows
	longterm *LongTermStore
	maxAge   time.Duration
	now      func() time.Time
}

// NewLifecycle builds the promotion runner. A non-positive maxAge falls
// back to the default 7 days.
func NewLifecycle(working *WorkingStore, episodic EpisodicRows, longterm *LongTermStore, maxAge time.Duration) *Lifecycle {
	if maxAge <= 0 {
		maxAge = DefaultEpisodicMaxAge
	}
	return &Lifecycle{
		working:  working,
		episodic: episodic,
		longterm: longterm,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Run executes both promotion steps for the session's user. The steps
// are independent: a failure in one does not stop the other.
func (l *Lifecycle) Run(ctx context.Context, userID, sessionID string, distiller Distiller) {
	if err := l.PromoteWorking(ctx, userID, sessionID, distiller); err != nil {
		log.Printf("memory lifecycle: working promotion for user %s: %v", userID, err)
	}
	if err := l.PromoteAged(ctx, userID, distiller); err != nil {
		log.Printf("memory lifecycle: episodic promotion for user %s: %v", userID, err)
	}
}

// PromoteWorking summarizes a full working session into a new episodic
// memory, then clears the session. On summarization failure the working
// memory is left intact so the next turn retries.
func (l *Lifecycle) PromoteWorking(ctx context.Context, userID, sessionID string, summarizer Summarizer) error {
	full, err := l.working.IsFull(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if !full {
		return nil
	}

	turns, err := l.working.Read(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		return nil
	}

	summary, importance, err := summarizer.Summarize(ctx, turns)
	if err != nil {
		return fmt.Errorf("summarize session %s: %w", sessionID, err)
	}

	mem := &models.EpisodicMemory{
		UserID:          userID,
		SessionID:       sessionID,
		Summary:         summary,
		ImportanceScore: importance,
	}
	if err := l.episodic.InsertEpisodic(ctx, mem); err != nil {
		// Working memory stays intact; the summary is regenerated on
		// the next attempt.
		return fmt.Errorf("persist episodic memory: %w", err)
	}

	if err := l.working.Clear(ctx, userID, sessionID); err != nil {
		return fmt.Errorf("clear promoted session: %w", err)
	}

	log.Printf("memory lifecycle: promoted working session %s to episodic for user %s", sessionID, userID)
	return nil
}

// PromoteAged extracts long-term facts from episodic memories older
// than the age threshold, archiving each memory once processed. An
// empty extraction still archives — otherwise a fact-free summary would
// be reprocessed forever. An upstream failure skips the archive so the
// memory is retried on a later run; failures are isolated per memory.
func (l *Lifecycle) PromoteAged(ctx context.Context, userID string, extractor Extractor) error {
	cutoff := l.now().Add(-l.maxAge)
	memories, err := l.episodic.EpisodicOlderThan(ctx, userID, cutoff)
	if err != nil {
		return err
	}

	var firstErr error
	for _, mem := range memories {
		facts, err := extractor.ExtractFacts(ctx, mem.Summary)
		if err != nil {
			log.Printf("memory lifecycle: extract facts from memory %s: %v", mem.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if len(facts) > 0 {
			if err := l.longterm.Save(ctx, userID, facts); err != nil {
				log.Printf("memory lifecycle: save facts from memory %s: %v", mem.ID, err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
		}

		if err := l.episodic.ArchiveEpisodic(ctx, mem.ID); err != nil {
			log.Printf("memory lifecycle: archive memory %s: %v", mem.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		log.Printf("memory lifecycle: promoted episodic memory %s to long-term for user %s", mem.ID, userID)
	}

	return firstErr
}
