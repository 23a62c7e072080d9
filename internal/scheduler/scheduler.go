// Package scheduler provides cron-based history retention pruning.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/wxkit/dewpoint/internal/config"
	"github.com/wxkit/dewpoint/internal/storage"
)

// Scheduler manages the scheduled prune job.
type Scheduler struct {
	cron    *cron.Cron
	config  *config.Config
	storage storage.Storage
	logger  *zap.Logger
	running bool
	mu      sync.Mutex
	jobID   cron.EntryID
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg *config.Config, store storage.Storage, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(&cronLogger{logger: logger})),
		cron.WithChain(
			cron.Recover(cron.VerbosePrintfLogger(&cronLogger{logger: logger})),
		),
	)

	return &Scheduler{
		cron:    c,
		config:  cfg,
		storage: store,
		logger:  logger,
	}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if !s.config.Scheduler.Enabled {
		s.logger.Info("Scheduler is disabled in configuration")
		return nil
	}

	job := NewPruneJob(s.storage, s.config.History.RetentionDays, s.logger)

	entryID, err := s.cron.AddFunc(s.config.Scheduler.Schedule, job.Run)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w (schedule: %s)", err, s.config.Scheduler.Schedule)
	}
	s.jobID = entryID

	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started",
		zap.String("schedule", s.config.Scheduler.Schedule),
		zap.Int("retention_days", s.config.History.RetentionDays),
	)

	entry := s.cron.Entry(entryID)
	s.logger.Info("Next scheduled prune",
		zap.Time("next_run", entry.Next),
	)

	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run time.
func (s *Scheduler) NextRun() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.jobID == 0 {
		return "not scheduled"
	}

	entry := s.cron.Entry(s.jobID)
	return entry.Next.Format("2006-01-02 15:04:05")
}

// RunOnce runs the prune job once immediately (useful for testing).
func (s *Scheduler) RunOnce(ctx context.Context) error {
	job := NewPruneJob(s.storage, s.config.History.RetentionDays, s.logger)
	return job.RunWithContext(ctx)
}

// cronLogger adapts zap.Logger to cron's logger interface.
type cronLogger struct {
	logger *zap.Logger
}

func (l *cronLogger) Printf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
