package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"OnDuty/internal/cache"
	"OnDuty/internal/model"
	"OnDuty/pkg/logger"
	"OnDuty/storage/mq"
)

// PublishScheduleTrigger claims the (kind, date) run token and publishes one
// delayed trigger message. A slot that is already claimed is skipped quietly:
// this is what keeps a re-fired scheduler from double-sending reminders.
func PublishScheduleTrigger(ctx context.Context, kind model.TriggerKind, date string, delay time.Duration) error {
	claimed, err := cache.TryAcquireRunToken(ctx, kind, date)
	if err != nil {
		return fmt.Errorf("acquire run token: %w", err)
	}
	if !claimed {
		logger.Logger.Info("Trigger already scheduled, skipping",
			zap.String("kind", string(kind)),
			zap.String("date", date),
		)
		return nil
	}

	msg := model.ScheduleTriggerMessage{
		MessageID:    uuid.NewString(),
		RunID:        fmt.Sprintf("%s:%s", kind, date),
		Kind:         kind,
		Date:         date,
		ScheduledAt:  time.Now().Format(time.RFC3339),
		DelaySeconds: int(delay.Seconds()),
	}

	if err := mq.PublishDelayedMessage(ctx, mq.ScheduleExchange, queueForKind(kind), delay, msg); err != nil {
		// Free the slot so the next scheduler pass can retry.
		if relErr := cache.ReleaseRunToken(ctx, kind, date); relErr != nil {
			logger.Logger.Error("Failed to release run token after publish failure",
				zap.String("kind", string(kind)),
				zap.String("date", date),
				zap.Error(relErr),
			)
		}
		return fmt.Errorf("publish trigger: %w", err)
	}

	logger.Logger.Info("Trigger scheduled",
		zap.String("kind", string(kind)),
		zap.String("date", date),
		zap.Duration("delay", delay),
	)
	return nil
}

func queueForKind(kind model.TriggerKind) string {
	switch kind {
	case model.TriggerClockInReminder:
		return mq.QueueClockInReminder
	case model.TriggerLateArrival:
		return mq.QueueLateArrival
	case model.TriggerClockOutRemind:
		return mq.QueueClockOutRemind
	case model.TriggerDailySummary:
		return mq.QueueDailySummary
	default:
		return ""
	}
}
