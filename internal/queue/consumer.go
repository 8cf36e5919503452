package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"OnDuty/internal/cache"
	"OnDuty/internal/model"
	"OnDuty/internal/service"
	"OnDuty/pkg/errors"
	"OnDuty/pkg/logger"
	"OnDuty/storage/mq"
)

const reconcileLockTTL = 30 * time.Second

// StartAllConsumers launches one consumer goroutine per queue. Each loop
// reconnects with a backoff until the context is cancelled.
func StartAllConsumers(ctx context.Context) {
	consumers := []mq.ConsumeOptions{
		{
			Queue:         mq.QueueClockInReminder,
			ConsumerTag:   "worker.clock_in_reminder",
			PrefetchCount: 1,
			Handler: scheduleHandler(model.TriggerClockInReminder, swallowing("clock_in_reminder", func(ctx context.Context, date string) error {
				_, err := service.Reminders().RunClockInReminder(ctx, date)
				return err
			})),
		},
		{
			Queue:         mq.QueueLateArrival,
			ConsumerTag:   "worker.late_arrival_alert",
			PrefetchCount: 1,
			Handler: scheduleHandler(model.TriggerLateArrival, swallowing("late_arrival_alert", func(ctx context.Context, date string) error {
				_, err := service.Reminders().RunLateArrivalAlert(ctx, date)
				return err
			})),
		},
		{
			Queue:         mq.QueueClockOutRemind,
			ConsumerTag:   "worker.clock_out_reminder",
			PrefetchCount: 1,
			Handler: scheduleHandler(model.TriggerClockOutRemind, swallowing("clock_out_reminder", func(ctx context.Context, date string) error {
				_, err := service.Reminders().RunClockOutReminder(ctx, date)
				return err
			})),
		},
		{
			Queue:         mq.QueueDailySummary,
			ConsumerTag:   "worker.daily_summary",
			PrefetchCount: 1,
			// Aggregation failures propagate: the message is requeued and the
			// error is visible in the alert log.
			Handler: scheduleHandler(model.TriggerDailySummary, func(ctx context.Context, date string) error {
				if _, err := service.Aggregator().Run(ctx, date); err != nil {
					service.ReportFunctionError(ctx, "daily_aggregator", err)
					return err
				}
				return nil
			}),
		},
		{
			Queue:         mq.QueueSessionCreated,
			ConsumerTag:   "worker.session_created",
			PrefetchCount: 8,
			Handler:       handleSessionCreated,
		},
	}

	for _, c := range consumers {
		go consumeLoop(ctx, c)
	}
}

func consumeLoop(ctx context.Context, opts mq.ConsumeOptions) {
	for {
		if err := mq.Consume(opts); err != nil {
			logger.Logger.Error("Consumer stopped",
				zap.String("queue", opts.Queue),
				zap.Error(err),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// swallowing applies the reminder-run failure policy: log the error to the
// alert log and report success to the queue so the message is not retried.
func swallowing(function string, run func(ctx context.Context, date string) error) func(ctx context.Context, date string) error {
	return func(ctx context.Context, date string) error {
		if err := run(ctx, date); err != nil {
			logger.Logger.Error("Reminder run failed",
				zap.String("function", function),
				zap.String("date", date),
				zap.Error(err),
			)
			service.ReportFunctionError(ctx, function, err)
		}
		return nil
	}
}

// scheduleHandler decodes a trigger message, fences duplicate deliveries via
// the processing mark, and hands the date to the run function.
func scheduleHandler(kind model.TriggerKind, run func(ctx context.Context, date string) error) mq.MessageHandler {
	return func(ctx context.Context, body []byte) error {
		var msg model.ScheduleTriggerMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return &errors.SkipMessageError{Reason: "malformed trigger message"}
		}
		if msg.Kind != kind {
			return &errors.SkipMessageError{Reason: "trigger kind mismatch: " + string(msg.Kind)}
		}

		first, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 0)
		if err != nil {
			return err
		}
		if !first {
			return &errors.SkipMessageError{Reason: "duplicate delivery " + msg.MessageID}
		}

		if err := run(ctx, msg.Date); err != nil {
			if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
				logger.Logger.Error("Failed to unmark message",
					zap.String("message_id", msg.MessageID),
					zap.Error(unmarkErr),
				)
			}
			return err
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 0); err != nil {
			logger.Logger.Warn("Failed to mark message processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}
		return nil
	}
}

// handleSessionCreated feeds a clock-in event to the conflict reconciler. A
// short per-(employee, date) lock serializes racing clock-ins so both checks
// cannot miss each other's session.
func handleSessionCreated(ctx context.Context, body []byte) error {
	var msg model.SessionCreatedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return &errors.SkipMessageError{Reason: "malformed session event"}
	}

	first, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 0)
	if err != nil {
		return err
	}
	if !first {
		return &errors.SkipMessageError{Reason: "duplicate delivery " + msg.MessageID}
	}

	lockKey := cache.ReconcileLockKey(msg.EmployeeID, msg.Date)
	locked, err := cache.TryLock(ctx, lockKey, reconcileLockTTL)
	if err != nil || !locked {
		// Another clock-in for the same employee is being reconciled; retry.
		if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
			logger.Logger.Error("Failed to unmark message",
				zap.String("message_id", msg.MessageID),
				zap.Error(unmarkErr),
			)
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("reconcile lock busy for %s", lockKey)
	}
	defer func() {
		if err := cache.Unlock(ctx, lockKey); err != nil {
			logger.Logger.Warn("Failed to release reconcile lock",
				zap.String("key", lockKey),
				zap.Error(err),
			)
		}
	}()

	session := &model.AttendanceSession{
		PublicID:      msg.SessionID,
		EmployeeID:    msg.EmployeeID,
		WorkDate:      msg.Date,
		ClockInTime:   msg.ClockInTime,
		DeviceID:      msg.DeviceID,
		DeviceName:    msg.DeviceName,
		SessionActive: true,
	}
	service.Reconciler().Run(ctx, session)

	if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 0); err != nil {
		logger.Logger.Warn("Failed to mark message processed",
			zap.String("message_id", msg.MessageID),
			zap.Error(err),
		)
	}
	return nil
}
