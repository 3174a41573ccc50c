package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"heirloom.backend/pkg/logger"
	"heirloom.backend/pkg/metrics"
)

type expiredTokenCleaner interface {
	ClearExpiredAccessTokens(ctx context.Context, now time.Time) (int64, error)
}

// AccessTokenSweepJob clears beneficiary access tokens whose expiry has passed
type AccessTokenSweepJob struct {
	repo     expiredTokenCleaner
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
}

func NewAccessTokenSweepJob(repo expiredTokenCleaner, interval time.Duration) *AccessTokenSweepJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &AccessTokenSweepJob{
		repo:     repo,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (j *AccessTokenSweepJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting access token sweep job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Access token sweep job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Access token sweep job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *AccessTokenSweepJob) Stop() {
	close(j.stop)
}

func (j *AccessTokenSweepJob) sweep(ctx context.Context) {
	cleared, err := j.repo.ClearExpiredAccessTokens(ctx, j.now())
	if err != nil {
		logger.Error(ctx, "Failed to clear expired access tokens", zap.Error(err))
		return
	}
	if cleared == 0 {
		return
	}

	metrics.AccessTokensSwept.Add(float64(cleared))
	logger.Info(ctx, "Cleared expired access tokens", zap.Int64("count", cleared))
}
