// Package scheduler runs the background memory sweep: on a cron
// schedule it finds users holding aged episodic memories and promotes
// them to long-term facts, so promotion does not depend on the user
// chatting again.
package scheduler

import (
	"context"
	"log"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/memvault/memvault/internal/memory"
)

// AgedUsers is the slice of the relational store the sweep needs.
type AgedUsers interface {
	UsersWithAgedEpisodic(ctx context.Context, cutoff time.Time) ([]string, error)
}

// Credentials resolves a user's provider API key.
type Credentials interface {
	Get(ctx context.Context, userID string) (string, error)
}

// Sweeper periodically promotes aged episodic memories for every user
// that has them. Each user's sweep runs on their own credentials; a user
// without a stored key is skipped, not failed.
type Sweeper struct {
	store       AgedUsers
	credentials Credentials
	lifecycle   *memory.Lifecycle
	maxAge      time.Duration
	schedule    string

	// newExtractor builds the fact extractor for one user's key.
	newExtractor func(apiKey string) memory.Extractor

	cron *rcron.Cron
	now  func() time.Time
}

// NewSweeper builds the sweeper. schedule is a cron expression or a
// descriptor like "@hourly".
func NewSweeper(
	store AgedUsers,
	credentials Credentials,
	lifecycle *memory.Lifecycle,
	maxAge time.Duration,
	schedule string,
	newExtractor func(apiKey string) memory.Extractor,
) *Sweeper {
	if maxAge <= 0 {
		maxAge = memory.DefaultEpisodicMaxAge
	}
	return &Sweeper{
		store:        store,
		credentials:  credentials,
		lifecycle:    lifecycle,
		maxAge:       maxAge,
		schedule:     schedule,
		newExtractor: newExtractor,
		now:          time.Now,
	}
}

// Start registers the sweep with the cron scheduler and starts it.
func (s *Sweeper) Start() error {
	s.cron = rcron.New()
	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.Sweep(context.Background())
	}); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[sweep] scheduled memory sweep: %s", s.schedule)
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep promotes aged memories for every user that has them. Failures
// are isolated per user; one user's missing key or provider outage never
// blocks the rest.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := s.now().Add(-s.maxAge)
	users, err := s.store.UsersWithAgedEpisodic(ctx, cutoff)
	if err != nil {
		log.Printf("[sweep] list users with aged memories: %v", err)
		return
	}
	if len(users) == 0 {
		return
	}
	log.Printf("[sweep] %d users with promotion candidates", len(users))

	for _, userID := range users {
		apiKey, err := s.credentials.Get(ctx, userID)
		if err != nil {
			log.Printf("[sweep] skip user %s: %v", userID, err)
			continue
		}

		if err := s.lifecycle.PromoteAged(ctx, userID, s.newExtractor(apiKey)); err != nil {
			log.Printf("[sweep] promote aged memories for %s: %v", userID, err)
		}
	}
}
