package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wxkit/dewpoint/internal/api"
	"github.com/wxkit/dewpoint/internal/storage"
)

// PruneJob removes history records older than the retention window.
type PruneJob struct {
	storage       storage.Storage
	retentionDays int
	logger        *zap.Logger
}

// NewPruneJob creates a new prune job.
func NewPruneJob(store storage.Storage, retentionDays int, logger *zap.Logger) *PruneJob {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PruneJob{
		storage:       store,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Run executes the prune job (implements cron.Job interface).
func (j *PruneJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := j.RunWithContext(ctx); err != nil {
		j.logger.Error("Scheduled prune failed", zap.Error(err))
	}
}

// RunWithContext executes the prune job with a context.
func (j *PruneJob) RunWithContext(ctx context.Context) error {
	if j.retentionDays <= 0 {
		j.logger.Debug("Retention disabled, nothing to prune")
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)
	j.logger.Info("Pruning old computations",
		zap.Time("cutoff", cutoff),
		zap.Int("retention_days", j.retentionDays),
	)

	count, err := j.storage.DeleteOldComputations(ctx, cutoff)
	if err != nil {
		return err
	}

	api.RecordPruned(count)

	j.logger.Info("Prune completed",
		zap.Int64("deleted", count),
	)

	return nil
}
