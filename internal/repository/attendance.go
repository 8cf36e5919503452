package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"OnDuty/internal/model"
	"OnDuty/storage/database"
)

// AttendanceStore covers the session reads and writes used by the clock
// handlers, the reconciler and the aggregator.
type AttendanceStore interface {
	CreateSession(ctx context.Context, session *model.AttendanceSession) error
	SessionByPublicID(ctx context.Context, publicID int64) (*model.AttendanceSession, error)
	// ActiveSessions returns the employee's sessions for the date that still
	// have session_active set, newest clock-in first.
	ActiveSessions(ctx context.Context, employeeID int64, date string) ([]model.AttendanceSession, error)
	// EmployeeSessions returns all of the employee's sessions for the date,
	// active or not, newest clock-in first.
	EmployeeSessions(ctx context.Context, employeeID int64, date string) ([]model.AttendanceSession, error)
	SessionsForDate(ctx context.Context, date string) ([]model.AttendanceSession, error)
	// OpenSessions returns active sessions for the date without a clock-out.
	OpenSessions(ctx context.Context, date string) ([]model.AttendanceSession, error)
	// CloseSession stamps the clock-out fields and clears session_active.
	CloseSession(ctx context.Context, publicID int64, clockOutTime string, clockOutAt time.Time, totalHours float64) error
	// Deactivate clears session_active on the session, recording who did it
	// and why. The update is guarded on session_active so two racing writers
	// cannot both claim the deactivation; it reports whether this call won.
	Deactivate(ctx context.Context, publicID int64, reason, actor string, at time.Time) (bool, error)
}

type gormAttendance struct{}

var (
	attendanceInst AttendanceStore
	attendanceOnce sync.Once
)

func Attendance() AttendanceStore {
	attendanceOnce.Do(func() {
		attendanceInst = &gormAttendance{}
	})
	return attendanceInst
}

func (r *gormAttendance) CreateSession(ctx context.Context, session *model.AttendanceSession) error {
	return database.DB().WithContext(ctx).Create(session).Error
}

func (r *gormAttendance) SessionByPublicID(ctx context.Context, publicID int64) (*model.AttendanceSession, error) {
	var session model.AttendanceSession
	err := database.DB().WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *gormAttendance) ActiveSessions(ctx context.Context, employeeID int64, date string) ([]model.AttendanceSession, error) {
	var sessions []model.AttendanceSession
	err := database.DB().WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("work_date = ?", date).
		Where("session_active = ?", true).
		Order("clock_in_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *gormAttendance) EmployeeSessions(ctx context.Context, employeeID int64, date string) ([]model.AttendanceSession, error) {
	var sessions []model.AttendanceSession
	err := database.DB().WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("work_date = ?", date).
		Order("clock_in_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *gormAttendance) SessionsForDate(ctx context.Context, date string) ([]model.AttendanceSession, error) {
	var sessions []model.AttendanceSession
	err := database.DB().WithContext(ctx).
		Where("work_date = ?", date).
		Order("clock_in_at").
		Find(&sessions).Error
	return sessions, err
}

func (r *gormAttendance) OpenSessions(ctx context.Context, date string) ([]model.AttendanceSession, error) {
	var sessions []model.AttendanceSession
	err := database.DB().WithContext(ctx).
		Where("work_date = ?", date).
		Where("session_active = ?", true).
		Where("clock_out_at IS NULL").
		Find(&sessions).Error
	return sessions, err
}

func (r *gormAttendance) CloseSession(ctx context.Context, publicID int64, clockOutTime string, clockOutAt time.Time, totalHours float64) error {
	return database.DB().WithContext(ctx).
		Model(&model.AttendanceSession{}).
		Where("public_id = ?", publicID).
		Updates(map[string]any{
			"clock_out_time": clockOutTime,
			"clock_out_at":   clockOutAt,
			"total_hours":    totalHours,
			"session_active": false,
		}).Error
}

func (r *gormAttendance) Deactivate(ctx context.Context, publicID int64, reason, actor string, at time.Time) (bool, error) {
	result := database.DB().WithContext(ctx).
		Model(&model.AttendanceSession{}).
		Where("public_id = ?", publicID).
		Where("session_active = ?", true).
		Updates(map[string]any{
			"session_active":    false,
			"reconciled_reason": reason,
			"reconciled_by":     actor,
			"reconciled_at":     at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
