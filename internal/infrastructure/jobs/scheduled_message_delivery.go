package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"heirloom.backend/internal/domain/entities"
	"heirloom.backend/pkg/logger"
	"heirloom.backend/pkg/metrics"
)

type scheduledMessageDeliverer interface {
	DeliverDueScheduled(ctx context.Context, now time.Time) (int64, error)
}

// ScheduledMessageJob releases scheduled_date messages of deceased owners
// once their date has passed
type ScheduledMessageJob struct {
	repo     scheduledMessageDeliverer
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
}

func NewScheduledMessageJob(repo scheduledMessageDeliverer, interval time.Duration) *ScheduledMessageJob {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ScheduledMessageJob{
		repo:     repo,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		stop:     make(chan struct{}),
	}
}

func (j *ScheduledMessageJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting scheduled message job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Scheduled message job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Scheduled message job stopped")
			return
		case <-ticker.C:
			j.deliver(ctx)
		}
	}
}

func (j *ScheduledMessageJob) Stop() {
	close(j.stop)
}

func (j *ScheduledMessageJob) deliver(ctx context.Context) {
	delivered, err := j.repo.DeliverDueScheduled(ctx, j.now())
	if err != nil {
		logger.Error(ctx, "Failed to deliver scheduled messages", zap.Error(err))
		return
	}
	if delivered == 0 {
		return
	}

	metrics.MessagesDelivered.WithLabelValues(string(entities.DeliveryScheduledDate)).Add(float64(delivered))
	logger.Info(ctx, "Delivered scheduled messages", zap.Int64("count", delivered))
}
