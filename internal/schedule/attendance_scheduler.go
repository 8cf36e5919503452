package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"OnDuty/config"
	"OnDuty/internal/model"
	"OnDuty/internal/queue"
	"OnDuty/pkg/logger"
	"OnDuty/utils"
)

var (
	schedulerOnce sync.Once
	schedulerInst *AttendanceScheduler
)

// AttendanceScheduler plans the day's trigger messages. It runs once per day
// shortly after midnight and publishes one delayed message per trigger; the
// run tokens claimed by the producer make re-planning the same day a no-op.
type AttendanceScheduler struct {
	logger     *zap.Logger
	loc        *time.Location
	jobRunning bool
	jobMu      sync.Mutex
	lastRun    time.Time
}

func GetScheduler() *AttendanceScheduler {
	schedulerOnce.Do(func() {
		schedulerInst = &AttendanceScheduler{
			logger: logger.Logger,
			loc:    config.Cfg.Location(),
		}
	})
	return schedulerInst
}

// ScheduleDailyTriggers publishes delayed trigger messages for today's
// clock-in reminder, late-arrival alert, clock-out reminder and daily
// summary. Weekends are skipped entirely; trigger times already in the past
// are skipped so a midday restart does not fire stale reminders.
func (s *AttendanceScheduler) ScheduleDailyTriggers(ctx context.Context) error {
	s.jobMu.Lock()
	if s.jobRunning {
		s.jobMu.Unlock()
		s.logger.Info("Trigger planning already running, skipping")
		return nil
	}
	s.jobRunning = true
	s.jobMu.Unlock()

	defer func() {
		s.jobMu.Lock()
		s.jobRunning = false
		s.jobMu.Unlock()
	}()

	now := time.Now().In(s.loc)
	s.lastRun = now

	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		s.logger.Info("Weekend, no triggers to plan",
			zap.String("weekday", now.Weekday().String()),
		)
		return nil
	}

	date := now.Format(utils.DateLayout)
	plan := []struct {
		kind model.TriggerKind
		at   string
	}{
		{model.TriggerClockInReminder, config.Cfg.WorkdayStart},
		{model.TriggerLateArrival, config.Cfg.LateAlertAt},
		{model.TriggerClockOutRemind, config.Cfg.WorkdayEnd},
		{model.TriggerDailySummary, config.Cfg.DailySummaryAt},
	}

	var firstErr error
	for _, trigger := range plan {
		fireAt, err := utils.ParseTimeOfDay(trigger.at, now)
		if err != nil {
			s.logger.Error("Invalid trigger time",
				zap.String("kind", string(trigger.kind)),
				zap.String("at", trigger.at),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		delay := fireAt.Sub(now)
		if delay < 0 {
			s.logger.Info("Trigger time already passed, skipping",
				zap.String("kind", string(trigger.kind)),
				zap.String("at", trigger.at),
			)
			continue
		}

		if err := queue.PublishScheduleTrigger(ctx, trigger.kind, date, delay); err != nil {
			s.logger.Error("Failed to schedule trigger",
				zap.String("kind", string(trigger.kind)),
				zap.String("date", date),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	s.logger.Info("Daily trigger planning finished",
		zap.String("date", date),
		zap.Duration("took", time.Since(now)),
	)
	return firstErr
}
