package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/flowc/pkg/config"
	"mercator-hq/flowc/pkg/telemetry/logging"
)

// Scheduler prunes the store on a cron schedule while a long-running
// command such as watch is active.
type Scheduler struct {
	store   *Store
	config  config.RetentionConfig
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *logging.Logger
	running bool
}

// NewScheduler creates a retention scheduler for s.
func NewScheduler(s *Store, cfg config.RetentionConfig) *Scheduler {
	return &Scheduler{
		store:  s,
		config: cfg,
		cron:   cron.New(),
		logger: s.logger.With("component", "store.retention"),
	}
}

// Start schedules pruning. Standard cron expressions and descriptors such
// as "@hourly" are accepted. If Schedule is empty, the scheduler does nothing.
// The scheduler stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("retention schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}
	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started",
		"schedule", s.config.Schedule,
		"max_age", s.config.MaxAge,
		"max_artifacts", s.config.MaxArtifacts,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce prunes immediately and returns the number of deleted artifacts.
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := s.store.Prune(ctx, s.config.MaxAge, s.config.MaxArtifacts)
	if err != nil {
		s.logger.Error("scheduled pruning failed", "error", err)
		return deleted, err
	}
	if deleted == 0 {
		s.logger.Debug("scheduled pruning completed, no artifacts deleted")
	}
	return deleted, nil
}

// Stop stops the scheduler and waits for a running prune to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled pruning time, or nil when nothing is
// scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
