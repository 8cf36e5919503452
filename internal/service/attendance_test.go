package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"OnDuty/internal/model"
	apperrors "OnDuty/pkg/errors"
)

func newTestAttendance(directory *fakeDirectory, sessions *fakeAttendance, publish SessionEventPublisher, at time.Time) *AttendanceService {
	s := NewAttendanceService(directory, sessions, publish, time.UTC)
	s.workdayStart = "08:00:00"
	s.now = func() time.Time { return at }
	return s
}

func TestClockInCreatesSessionAndPublishes(t *testing.T) {
	directory := &fakeDirectory{employees: []model.Employee{
		{PublicID: 1, Name: "Alice Njeri", Role: model.RoleEmployee, IsActive: true},
	}}
	sessions := &fakeAttendance{}
	var published []*model.SessionCreatedMessage
	publish := func(ctx context.Context, msg *model.SessionCreatedMessage) error {
		published = append(published, msg)
		return nil
	}

	at := time.Date(2026, 3, 2, 7, 55, 0, 0, time.UTC)
	svc := newTestAttendance(directory, sessions, publish, at)

	session, err := svc.ClockIn(context.Background(), 1, "device-a", "Lobby Tablet")
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}

	if session.WorkDate != "2026-03-02" {
		t.Errorf("work date = %q", session.WorkDate)
	}
	if session.IsLate || session.Status != model.StatusPresent {
		t.Errorf("on-time clock-in marked late: %+v", session)
	}
	if !session.SessionActive {
		t.Error("new session must be active")
	}
	if len(published) != 1 || published[0].SessionID != session.PublicID {
		t.Fatalf("published = %+v, want one event for the session", published)
	}
}

func TestClockInAfterStartIsLate(t *testing.T) {
	directory := &fakeDirectory{employees: []model.Employee{
		{PublicID: 1, Name: "Alice Njeri", Role: model.RoleEmployee, IsActive: true},
	}}
	sessions := &fakeAttendance{}

	at := time.Date(2026, 3, 2, 8, 25, 0, 0, time.UTC)
	svc := newTestAttendance(directory, sessions, nil, at)

	session, err := svc.ClockIn(context.Background(), 1, "device-a", "")
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}

	if !session.IsLate || session.Status != model.StatusLate {
		t.Errorf("session = %+v, want late", session)
	}
	if session.LateMinutes != 25 {
		t.Errorf("late minutes = %d, want 25", session.LateMinutes)
	}
}

func TestClockInSameDeviceRejected(t *testing.T) {
	directory := &fakeDirectory{employees: []model.Employee{
		{PublicID: 1, Name: "Alice Njeri", Role: model.RoleEmployee, IsActive: true},
	}}
	sessions := &fakeAttendance{sessions: []model.AttendanceSession{
		{PublicID: 10, EmployeeID: 1, WorkDate: "2026-03-02", ClockInTime: "08:00:00", SessionActive: true, DeviceID: "device-a"},
	}}

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newTestAttendance(directory, sessions, nil, at)

	if _, err := svc.ClockIn(context.Background(), 1, "device-a", ""); !errors.Is(err, apperrors.AlreadyClockedIn) {
		t.Errorf("same-device clock-in error = %v, want AlreadyClockedIn", err)
	}

	// A different device is allowed; the reconciler resolves it afterwards.
	if _, err := svc.ClockIn(context.Background(), 1, "device-b", ""); err != nil {
		t.Errorf("cross-device clock-in error = %v, want nil", err)
	}
}

func TestClockOutClosesNewestOpenSession(t *testing.T) {
	directory := &fakeDirectory{employees: []model.Employee{
		{PublicID: 1, Name: "Alice Njeri", Role: model.RoleEmployee, IsActive: true},
	}}
	clockIn := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sessions := &fakeAttendance{sessions: []model.AttendanceSession{
		{PublicID: 10, EmployeeID: 1, WorkDate: "2026-03-02", ClockInTime: "08:00:00", ClockInAt: clockIn, SessionActive: true, DeviceID: "device-a"},
	}}

	at := time.Date(2026, 3, 2, 16, 30, 0, 0, time.UTC)
	svc := newTestAttendance(directory, sessions, nil, at)

	closed, err := svc.ClockOut(context.Background(), 1)
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}

	if closed.TotalHours != 8.5 {
		t.Errorf("total hours = %v, want 8.5", closed.TotalHours)
	}
	if closed.SessionActive {
		t.Error("closed session must be inactive")
	}
	stored := sessions.byPublicID(10)
	if stored.SessionActive || stored.ClockOutTime == nil {
		t.Errorf("stored session not closed: %+v", stored)
	}

	if _, err := svc.ClockOut(context.Background(), 1); !errors.Is(err, apperrors.NotClockedIn) {
		t.Errorf("second clock-out error = %v, want NotClockedIn", err)
	}
}

func TestClockInUnknownOrInactiveEmployee(t *testing.T) {
	directory := &fakeDirectory{employees: []model.Employee{
		{PublicID: 2, Name: "Former Staff", Role: model.RoleEmployee, IsActive: false},
	}}
	sessions := &fakeAttendance{}

	svc := newTestAttendance(directory, sessions, nil, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	if _, err := svc.ClockIn(context.Background(), 99, "d", ""); !errors.Is(err, apperrors.EmployeeNotFound) {
		t.Errorf("unknown employee error = %v, want EmployeeNotFound", err)
	}
	if _, err := svc.ClockIn(context.Background(), 2, "d", ""); !errors.Is(err, apperrors.EmployeeInactive) {
		t.Errorf("inactive employee error = %v, want EmployeeInactive", err)
	}
}
