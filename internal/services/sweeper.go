package services

import (
	"context"
	"time"

	"consolidation-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// StuckJobSweeper reclaims job runs whose owner died without closing them.
// Any RUNNING job older than the staleness threshold is force-transitioned
// to ERROR so operators never chase phantom running jobs.
type StuckJobSweeper struct {
	jobsRepo  repository.JobsRepositoryInterface
	logger    *logrus.Logger
	threshold time.Duration
	interval  time.Duration
}

// NewStuckJobSweeper creates a new sweeper
func NewStuckJobSweeper(jobsRepo repository.JobsRepositoryInterface, logger *logrus.Logger, threshold, interval time.Duration) *StuckJobSweeper {
	if threshold <= 0 {
		threshold = 30 * time.Minute
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StuckJobSweeper{
		jobsRepo:  jobsRepo,
		logger:    logger,
		threshold: threshold,
		interval:  interval,
	}
}

// SweepOnce reclaims all currently stale runs. Safe to call concurrently:
// the reclaim is a single guarded update, so two sweepers never double-count
// a job.
func (s *StuckJobSweeper) SweepOnce(ctx context.Context) (int64, error) {
	reclaimed, err := s.jobsRepo.ReclaimStale(ctx, s.threshold)
	if err != nil {
		return 0, err
	}
	if reclaimed > 0 {
		s.logger.WithField("reclaimed", reclaimed).Warn("Reclaimed stuck job runs")
	}
	return reclaimed, nil
}

// Run sweeps on a fixed interval until the context is cancelled. Intended
// to be started as a background goroutine at service startup.
func (s *StuckJobSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.WithError(err).Error("Stuck-job sweep failed")
			}
		}
	}
}
