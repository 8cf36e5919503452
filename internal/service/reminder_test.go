package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"OnDuty/internal/model"
	"OnDuty/pkg/push"
)

func newTestEngine(directory *fakeDirectory, sessions *fakeAttendance, alerts *fakeAlerts, dispatcher push.Client, workers int) *ReminderEngine {
	e := NewReminderEngine(directory, sessions, alerts, dispatcher, workers)
	e.now = func() time.Time { return time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC) }
	return e
}

func TestClockInReminderSelection(t *testing.T) {
	directory := &fakeDirectory{employees: []model.Employee{
		{PublicID: 1, Name: "Alice Njeri", Role: model.RoleEmployee, IsActive: true, FCMToken: strPtr("tok-1")},
		{PublicID: 2, Name: "Brian Kip", Role: model.RoleEmployee, IsActive: true, FCMToken: strPtr("tok-2")},
		{PublicID: 3, Name: "Carol Achieng", Role: model.RoleEmployee, IsActive: false, FCMToken: strPtr("tok-3")},
		{PublicID: 4, Name: "Dan Mwangi", Role: model.RoleAdmin, IsActive: true, FCMToken: strPtr("tok-4")},
	}}
	sessions := &fakeAttendance{sessions: []model.AttendanceSession{
		{PublicID: 10, EmployeeID: 1, WorkDate: "2026-03-02", ClockInTime: "07:58:00", SessionActive: true, DeviceID: "d1"},
	}}
	alerts := &fakeAlerts{}
	mock := push.NewMockClient()

	e := newTestEngine(directory, sessions, alerts, mock, 4)
	summary, err := e.RunClockInReminder(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("RunClockInReminder: %v", err)
	}

	tokens := mock.SentTokens()
	if len(tokens) != 1 || tokens[0] != "tok-2" {
		t.Fatalf("notified tokens = %v, want [tok-2]", tokens)
	}
	if summary.Candidates != 1 || summary.Sent != 1 || summary.Errors != 0 {
		t.Errorf("summary = %+v, want candidates=1 sent=1 errors=0", summary)
	}
	if !strings.Contains(mock.Calls[0].Body, "Brian") {
		t.Errorf("body = %q, want first name", mock.Calls[0].Body)
	}

	runs := alerts.ofType(model.AlertTypeClockInRun)
	if len(runs) != 1 {
		t.Fatalf("run summary records = %d, want 1", len(runs))
	}
	if runs[0].Payload["sent"] != 1 {
		t.Errorf("run summary sent = %v, want 1", runs[0].Payload["sent"])
	}
}

func TestReminderPartialFailureIsolation(t *testing.T) {
	var employees []model.Employee
	for i := 1; i <= 5; i++ {
		employees = append(employees, model.Employee{
			PublicID: int64(i),
			Name:     fmt.Sprintf("Employee %d", i),
			Role:     model.RoleEmployee,
			IsActive: true,
			FCMToken: strPtr(fmt.Sprintf("tok-%d", i)),
		})
	}
	directory := &fakeDirectory{employees: employees}
	sessions := &fakeAttendance{}
	alerts := &fakeAlerts{}
	mock := push.NewMockClient()
	mock.FailTokens["tok-3"] = true

	e := newTestEngine(directory, sessions, alerts, mock, 3)
	summary, err := e.RunClockInReminder(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("RunClockInReminder: %v", err)
	}

	if summary.Sent != 4 || summary.Errors != 1 {
		t.Errorf("summary sent=%d errors=%d, want sent=4 errors=1", summary.Sent, summary.Errors)
	}
	if len(mock.Calls) != 5 {
		t.Errorf("dispatch attempts = %d, want 5 (no short-circuit)", len(mock.Calls))
	}
}

func TestLateArrivalRosterCollected(t *testing.T) {
	directory := &fakeDirectory{employees: []model.Employee{
		{PublicID: 1, PFNumber: "PF-001", Name: "Alice Njeri", Department: "Finance", Role: model.RoleEmployee, IsActive: true, FCMToken: strPtr("tok-1")},
		{PublicID: 2, PFNumber: "PF-002", Name: "Brian Kip", Department: "IT", Role: model.RoleEmployee, IsActive: true, FCMToken: strPtr("tok-2")},
	}}
	sessions := &fakeAttendance{sessions: []model.AttendanceSession{
		{PublicID: 10, EmployeeID: 1, WorkDate: "2026-03-02", SessionActive: true, DeviceID: "d1"},
	}}
	alerts := &fakeAlerts{}
	mock := push.NewMockClient()

	e := newTestEngine(directory, sessions, alerts, mock, 2)
	summary, err := e.RunLateArrivalAlert(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("RunLateArrivalAlert: %v", err)
	}

	if len(summary.Late) != 1 || summary.Late[0].PFNumber != "PF-002" {
		t.Fatalf("late roster = %+v, want exactly PF-002", summary.Late)
	}
	if mock.Calls[0].Title != "Late Arrival Alert" {
		t.Errorf("title = %q", mock.Calls[0].Title)
	}

	runs := alerts.ofType(model.AlertTypeLateArrivalRun)
	if len(runs) != 1 {
		t.Fatalf("run summary records = %d, want 1", len(runs))
	}
	if _, ok := runs[0].Payload["late_employees"]; !ok {
		t.Error("run summary payload should carry the late roster")
	}
}

func TestClockOutReminderElapsedBody(t *testing.T) {
	directory := &fakeDirectory{employees: []model.Employee{
		{PublicID: 1, Name: "Alice Njeri", Role: model.RoleEmployee, IsActive: true, FCMToken: strPtr("tok-1")},
	}}
	sessions := &fakeAttendance{sessions: []model.AttendanceSession{
		{PublicID: 10, EmployeeID: 1, WorkDate: "2026-03-02", ClockInTime: "08:00:00", SessionActive: true, DeviceID: "d1"},
	}}
	alerts := &fakeAlerts{}
	mock := push.NewMockClient()

	e := newTestEngine(directory, sessions, alerts, mock, 2)
	summary, err := e.RunClockOutReminder(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("RunClockOutReminder: %v", err)
	}

	if summary.Sent != 1 {
		t.Fatalf("sent = %d, want 1", summary.Sent)
	}
	if !strings.Contains(mock.Calls[0].Body, "9h 0m") {
		t.Errorf("body = %q, want elapsed 9h 0m", mock.Calls[0].Body)
	}
	if mock.Calls[0].Title != "Time to Clock Out" {
		t.Errorf("title = %q", mock.Calls[0].Title)
	}
}

func TestClockOutReminderSkipsClosedSessions(t *testing.T) {
	out := "17:05:00"
	directory := &fakeDirectory{employees: []model.Employee{
		{PublicID: 1, Name: "Alice Njeri", Role: model.RoleEmployee, IsActive: true, FCMToken: strPtr("tok-1")},
		{PublicID: 2, Name: "Brian Kip", Role: model.RoleEmployee, IsActive: true, FCMToken: strPtr("tok-2")},
	}}
	sessions := &fakeAttendance{sessions: []model.AttendanceSession{
		{PublicID: 10, EmployeeID: 1, WorkDate: "2026-03-02", ClockInTime: "08:00:00", SessionActive: true, DeviceID: "d1"},
		{PublicID: 11, EmployeeID: 2, WorkDate: "2026-03-02", ClockInTime: "08:05:00", ClockOutTime: &out, SessionActive: false, DeviceID: "d2"},
	}}
	alerts := &fakeAlerts{}
	mock := push.NewMockClient()

	e := newTestEngine(directory, sessions, alerts, mock, 2)
	if _, err := e.RunClockOutReminder(context.Background(), "2026-03-02"); err != nil {
		t.Fatalf("RunClockOutReminder: %v", err)
	}

	tokens := mock.SentTokens()
	if len(tokens) != 1 || tokens[0] != "tok-1" {
		t.Errorf("notified tokens = %v, want [tok-1]", tokens)
	}
}
