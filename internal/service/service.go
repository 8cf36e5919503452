package service

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"OnDuty/config"
	"OnDuty/internal/model"
	"OnDuty/internal/repository"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/push"
	"OnDuty/pkg/snowflake"
)

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// recordFunctionError appends a critical function_error entry so swallowed
// failures stay visible to administrators. Best effort: if the log write
// itself fails there is nothing left to do but log locally.
func recordFunctionError(ctx context.Context, alerts repository.AlertLog, function string, cause error) {
	id, err := snowflake.NextID()
	if err != nil {
		logger.Logger.Error("Failed to mint alert id for function error",
			zap.String("function", function),
			zap.Error(err),
		)
		return
	}

	record := &model.AlertRecord{
		PublicID: id,
		Type:     model.AlertTypeFunctionError,
		Severity: model.SeverityCritical,
		Payload:  model.JSONB{"error": cause.Error()},
		Outcome:  "error",
		Function: function,
	}
	if err := alerts.Append(ctx, record); err != nil {
		logger.Logger.Error("Failed to persist function error alert",
			zap.String("function", function),
			zap.Error(err),
		)
	}
}

// ReportFunctionError is the boundary hook for callers outside the services
// (queue consumers, the HTTP recover middleware) that need the same
// swallowed-error visibility.
func ReportFunctionError(ctx context.Context, function string, cause error) {
	recordFunctionError(ctx, repository.Alerts(), function, cause)
}

func localNow() time.Time {
	return time.Now().In(config.Cfg.Location())
}

// Singletons wire the gorm-backed stores and the configured push client into
// the services. Constructors stay injectable for tests.

var (
	reconcilerInst *ConflictReconciler
	reconcilerOnce sync.Once

	remindersInst *ReminderEngine
	remindersOnce sync.Once

	aggregatorInst *DailyAggregator
	aggregatorOnce sync.Once

	notificationsInst *NotificationService
	notificationsOnce sync.Once

	attendanceInst *AttendanceService
	attendanceOnce sync.Once

	authInst *AuthService
	authOnce sync.Once

	directorySvcInst *DirectoryService
	directorySvcOnce sync.Once
)

func Reconciler() *ConflictReconciler {
	reconcilerOnce.Do(func() {
		reconcilerInst = NewConflictReconciler(repository.Directory(), repository.Attendance(), repository.Alerts())
	})
	return reconcilerInst
}

func Reminders() *ReminderEngine {
	remindersOnce.Do(func() {
		remindersInst = NewReminderEngine(
			repository.Directory(),
			repository.Attendance(),
			repository.Alerts(),
			push.GetClient(),
			config.Cfg.DispatchWorkers,
		)
	})
	return remindersInst
}

func Aggregator() *DailyAggregator {
	aggregatorOnce.Do(func() {
		aggregatorInst = NewDailyAggregator(
			repository.Directory(),
			repository.Attendance(),
			repository.Alerts(),
			repository.Summaries(),
			config.Cfg.Location(),
			config.Cfg.StandardWorkHours,
		)
	})
	return aggregatorInst
}

func Notifications() *NotificationService {
	notificationsOnce.Do(func() {
		notificationsInst = NewNotificationService(repository.Directory(), repository.Alerts(), push.GetClient())
	})
	return notificationsInst
}

func Attendance() *AttendanceService {
	attendanceOnce.Do(func() {
		attendanceInst = NewAttendanceService(
			repository.Directory(),
			repository.Attendance(),
			publishSessionCreated,
			config.Cfg.Location(),
		)
	})
	return attendanceInst
}

func Auth() *AuthService {
	authOnce.Do(func() {
		authInst = NewAuthService(repository.Directory())
	})
	return authInst
}

func Directory() *DirectoryService {
	directorySvcOnce.Do(func() {
		directorySvcInst = NewDirectoryService(repository.Directory())
	})
	return directorySvcInst
}
