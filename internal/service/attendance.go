package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"OnDuty/config"
	"OnDuty/internal/model"
	"OnDuty/internal/repository"
	"OnDuty/pkg/errors"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/snowflake"
	"OnDuty/storage/mq"
	"OnDuty/utils"
)

// SessionEventPublisher announces a freshly created session so the worker can
// run the conflict check on it.
type SessionEventPublisher func(ctx context.Context, msg *model.SessionCreatedMessage) error

// AttendanceService implements clock-in and clock-out for the device-facing
// API. Derived fields (lateness, status, total hours) are computed here on
// write; the background engines trust them as stored.
type AttendanceService struct {
	directory    repository.DirectoryStore
	sessions     repository.AttendanceStore
	publish      SessionEventPublisher
	loc          *time.Location
	workdayStart string
	now          func() time.Time
}

func NewAttendanceService(directory repository.DirectoryStore, sessions repository.AttendanceStore, publish SessionEventPublisher, loc *time.Location) *AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{
		directory:    directory,
		sessions:     sessions,
		publish:      publish,
		loc:          loc,
		workdayStart: config.Cfg.WorkdayStart,
		now:          time.Now,
	}
}

// Today returns the current calendar date in the workday timezone.
func (s *AttendanceService) Today() string {
	return s.now().In(s.loc).Format(utils.DateLayout)
}

// ClockIn creates a new active session for the employee. A second clock-in on
// the same device is rejected; a clock-in on a different device is allowed
// and resolved asynchronously by the conflict reconciler.
func (s *AttendanceService) ClockIn(ctx context.Context, employeeID int64, deviceID, deviceName string) (*model.AttendanceSession, error) {
	emp, err := s.directory.EmployeeByPublicID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, errors.EmployeeNotFound
	}
	if !emp.IsActive {
		return nil, errors.EmployeeInactive
	}

	now := s.now().In(s.loc)
	date := now.Format(utils.DateLayout)

	active, err := s.sessions.ActiveSessions(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}
	for _, existing := range active {
		if existing.DeviceID == deviceID {
			return nil, errors.AlreadyClockedIn
		}
	}

	isLate := false
	lateMinutes := 0
	if start, err := utils.ParseTimeOfDay(s.workdayStart, now); err == nil && now.After(start) {
		isLate = true
		lateMinutes = int(now.Sub(start).Minutes())
	}
	status := model.StatusPresent
	if isLate {
		status = model.StatusLate
	}

	id, err := snowflake.NextID()
	if err != nil {
		return nil, err
	}

	session := &model.AttendanceSession{
		PublicID:      id,
		EmployeeID:    employeeID,
		WorkDate:      date,
		ClockInTime:   now.Format(utils.TimeOfDayLayout),
		ClockInAt:     now,
		SessionActive: true,
		DeviceID:      deviceID,
		DeviceName:    deviceName,
		IsLate:        isLate,
		LateMinutes:   lateMinutes,
		Status:        status,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	if s.publish != nil {
		msg := &model.SessionCreatedMessage{
			MessageID:   uuid.NewString(),
			SessionID:   session.PublicID,
			EmployeeID:  employeeID,
			Date:        date,
			DeviceID:    deviceID,
			DeviceName:  deviceName,
			ClockInTime: session.ClockInTime,
			ScheduledAt: now.Format(time.RFC3339),
		}
		if err := s.publish(ctx, msg); err != nil {
			// The session exists either way; the conflict check just will not
			// run for it. Surface loudly.
			logger.Logger.Error("Failed to publish session created event",
				zap.Int64("session_id", session.PublicID),
				zap.Error(err),
			)
		}
	}

	return session, nil
}

// ClockOut closes the employee's newest open session for today and stamps the
// worked hours.
func (s *AttendanceService) ClockOut(ctx context.Context, employeeID int64) (*model.AttendanceSession, error) {
	now := s.now().In(s.loc)
	date := now.Format(utils.DateLayout)

	active, err := s.sessions.ActiveSessions(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}

	var open *model.AttendanceSession
	for i := range active {
		if active[i].IsOpen() {
			open = &active[i]
			break
		}
	}
	if open == nil {
		return nil, errors.NotClockedIn
	}

	hours := now.Sub(open.ClockInAt).Hours()
	if hours < 0 {
		hours = 0
	}
	hours = round2(hours)

	clockOutTime := now.Format(utils.TimeOfDayLayout)
	if err := s.sessions.CloseSession(ctx, open.PublicID, clockOutTime, now, hours); err != nil {
		return nil, err
	}

	open.ClockOutTime = &clockOutTime
	open.ClockOutAt = &now
	open.TotalHours = hours
	open.SessionActive = false
	return open, nil
}

// SessionsForDate lists every session for the date, for the admin dashboard.
// An empty date defaults to today.
func (s *AttendanceService) SessionsForDate(ctx context.Context, date string) ([]model.AttendanceSession, error) {
	if date == "" {
		date = s.Today()
	}
	return s.sessions.SessionsForDate(ctx, date)
}

// SessionsToday returns the employee's sessions for today, newest first.
func (s *AttendanceService) SessionsToday(ctx context.Context, employeeID int64) ([]model.AttendanceSession, error) {
	return s.sessions.EmployeeSessions(ctx, employeeID, s.Today())
}

func publishSessionCreated(ctx context.Context, msg *model.SessionCreatedMessage) error {
	return mq.PublishMessage(ctx, mq.EventsExchange, mq.QueueSessionCreated, msg)
}
