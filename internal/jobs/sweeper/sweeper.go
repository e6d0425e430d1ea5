package sweeper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type expiredJobCloser interface {
	CloseExpired(ctx context.Context, now time.Time) (int64, error)
}

// Job closes postings whose apply deadline has passed, so the
// application gate rejects them even if nobody touched the row since
// the deadline.
type Job struct {
	jobs   expiredJobCloser
	now    func() time.Time
	logger *zap.Logger
}

func New(jobs expiredJobCloser, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		jobs:   jobs,
		now:    time.Now,
		logger: logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.jobs == nil {
		return nil
	}

	closed, err := j.jobs.CloseExpired(ctx, j.now())
	if err != nil {
		return fmt.Errorf("close expired jobs: %w", err)
	}
	if closed > 0 {
		j.logger.Info("closed expired job postings", zap.Int64("closed", closed))
	}

	return nil
}

// Start runs the sweep on the interval until the context is cancelled.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := j.Run(ctx); err != nil {
					j.logger.Warn("job deadline sweep failed", zap.Error(err))
				}
			}
		}
	}()
}
