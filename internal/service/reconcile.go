package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"OnDuty/internal/model"
	"OnDuty/internal/repository"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/snowflake"
)

// ConflictReconciler enforces the one-active-session-per-device rule. When an
// employee clocks in while older sessions are still active on other devices,
// the newest clock-in wins and the older sessions are force-closed.
type ConflictReconciler struct {
	directory repository.DirectoryStore
	sessions  repository.AttendanceStore
	alerts    repository.AlertLog
	now       func() time.Time
}

func NewConflictReconciler(directory repository.DirectoryStore, sessions repository.AttendanceStore, alerts repository.AlertLog) *ConflictReconciler {
	return &ConflictReconciler{
		directory: directory,
		sessions:  sessions,
		alerts:    alerts,
		now:       time.Now,
	}
}

// ReconcileSession runs the conflict check for a newly created session. It
// queries the employee's other active sessions for the date, ignores sessions
// on the same device (benign retries), and for real conflicts writes one HIGH
// alert and deactivates every superseded session. The empty case is silent.
func (r *ConflictReconciler) ReconcileSession(ctx context.Context, session *model.AttendanceSession) error {
	// The event payload can be stale by the time a redelivery lands: the
	// session it announces may itself have been superseded or clocked out.
	// Re-read the row and let the settled state stand.
	current, err := r.sessions.SessionByPublicID(ctx, session.PublicID)
	if err != nil {
		return fmt.Errorf("look up session %d: %w", session.PublicID, err)
	}
	if current != nil && !current.SessionActive {
		logger.Logger.Info("Skipping conflict check for inactive session",
			zap.Int64("session_id", session.PublicID),
			zap.Int64("employee_id", session.EmployeeID),
		)
		return nil
	}

	active, err := r.sessions.ActiveSessions(ctx, session.EmployeeID, session.WorkDate)
	if err != nil {
		return fmt.Errorf("query active sessions: %w", err)
	}

	var conflicts []model.AttendanceSession
	for _, s := range active {
		if s.PublicID == session.PublicID {
			continue
		}
		if s.DeviceID == session.DeviceID {
			continue
		}
		conflicts = append(conflicts, s)
	}
	if len(conflicts) == 0 {
		return nil
	}

	employee, err := r.directory.EmployeeByPublicID(ctx, session.EmployeeID)
	if err != nil {
		return fmt.Errorf("look up employee %d: %w", session.EmployeeID, err)
	}

	name, department := "unknown", ""
	if employee != nil {
		name = employee.Name
		department = employee.Department
	}

	conflicting := make([]map[string]interface{}, 0, len(conflicts))
	for _, c := range conflicts {
		conflicting = append(conflicting, map[string]interface{}{
			"session_id":    c.PublicID,
			"device_id":     c.DeviceID,
			"device_name":   c.DeviceName,
			"clock_in_time": c.ClockInTime,
		})
	}

	alertID, err := snowflake.NextID()
	if err != nil {
		return fmt.Errorf("mint alert id: %w", err)
	}

	employeeID := session.EmployeeID
	alert := &model.AlertRecord{
		PublicID:       alertID,
		Type:           model.AlertTypeDeviceConflict,
		Severity:       model.SeverityHigh,
		EmployeeID:     &employeeID,
		RequiresAction: true,
		Outcome:        "open",
		Payload: model.JSONB{
			"employee_id":   session.EmployeeID,
			"employee_name": name,
			"department":    department,
			"date":          session.WorkDate,
			"new_session": map[string]interface{}{
				"session_id":    session.PublicID,
				"device_id":     session.DeviceID,
				"device_name":   session.DeviceName,
				"clock_in_time": session.ClockInTime,
			},
			"conflicting_sessions": conflicting,
		},
	}
	if err := r.alerts.Append(ctx, alert); err != nil {
		return fmt.Errorf("append conflict alert: %w", err)
	}

	reason := fmt.Sprintf("superseded by clock-in on %s", deviceLabel(session))
	at := r.now()
	for _, c := range conflicts {
		won, err := r.sessions.Deactivate(ctx, c.PublicID, reason, model.ReconcileActorSystem, at)
		if err != nil {
			return fmt.Errorf("deactivate session %d: %w", c.PublicID, err)
		}
		if !won {
			// A concurrent reconciliation or clock-out got there first.
			logger.Logger.Info("Session was already deactivated",
				zap.Int64("session_id", c.PublicID),
				zap.Int64("employee_id", session.EmployeeID),
			)
		}
	}

	logger.Logger.Warn("Device conflict reconciled",
		zap.Int64("employee_id", session.EmployeeID),
		zap.String("date", session.WorkDate),
		zap.String("winning_device", session.DeviceID),
		zap.Int("superseded", len(conflicts)),
	)
	return nil
}

// Run applies the trigger-boundary policy: errors are persisted as critical
// function_error alerts and swallowed, so the clock-in that caused the check
// is never rolled back.
func (r *ConflictReconciler) Run(ctx context.Context, session *model.AttendanceSession) {
	if err := r.ReconcileSession(ctx, session); err != nil {
		logger.Logger.Error("Conflict reconciliation failed",
			zap.Int64("session_id", session.PublicID),
			zap.Error(err),
		)
		recordFunctionError(ctx, r.alerts, "conflict_reconciler", err)
	}
}

func deviceLabel(s *model.AttendanceSession) string {
	if s.DeviceName != "" {
		return s.DeviceName
	}
	return s.DeviceID
}
