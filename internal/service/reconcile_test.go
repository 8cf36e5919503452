package service

import (
	"context"
	"testing"
	"time"

	"OnDuty/internal/model"
)

func newTestReconciler(directory *fakeDirectory, sessions *fakeAttendance, alerts *fakeAlerts) *ConflictReconciler {
	r := NewConflictReconciler(directory, sessions, alerts)
	r.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	return r
}

func TestReconcileCrossDeviceConflict(t *testing.T) {
	directory := &fakeDirectory{employees: []model.Employee{
		{PublicID: 100, PFNumber: "PF-100", Name: "Grace Wanjiku", Department: "Finance", Role: model.RoleEmployee, IsActive: true},
	}}
	sessions := &fakeAttendance{sessions: []model.AttendanceSession{
		{PublicID: 1, EmployeeID: 100, WorkDate: "2026-03-02", ClockInTime: "08:01:00", SessionActive: true, DeviceID: "device-a", DeviceName: "Lobby Tablet"},
		{PublicID: 2, EmployeeID: 100, WorkDate: "2026-03-02", ClockInTime: "08:40:00", SessionActive: true, DeviceID: "device-b", DeviceName: "Grace's Phone"},
	}}
	alerts := &fakeAlerts{}

	newest := sessions.sessions[1]
	r := newTestReconciler(directory, sessions, alerts)
	if err := r.ReconcileSession(context.Background(), &newest); err != nil {
		t.Fatalf("ReconcileSession: %v", err)
	}

	conflictAlerts := alerts.ofType(model.AlertTypeDeviceConflict)
	if len(conflictAlerts) != 1 {
		t.Fatalf("conflict alerts = %d, want 1", len(conflictAlerts))
	}
	alert := conflictAlerts[0]
	if alert.Severity != model.SeverityHigh {
		t.Errorf("severity = %q, want %q", alert.Severity, model.SeverityHigh)
	}
	if !alert.RequiresAction {
		t.Error("alert should require action")
	}
	conflicting, ok := alert.Payload["conflicting_sessions"].([]map[string]interface{})
	if !ok || len(conflicting) != 1 {
		t.Fatalf("conflicting_sessions payload = %#v, want one entry", alert.Payload["conflicting_sessions"])
	}
	if conflicting[0]["session_id"] != int64(1) {
		t.Errorf("conflicting session id = %v, want 1", conflicting[0]["session_id"])
	}

	superseded := sessions.byPublicID(1)
	if superseded.SessionActive {
		t.Error("superseded session should be inactive")
	}
	if superseded.ReconciledReason == nil || *superseded.ReconciledReason == "" {
		t.Error("superseded session should carry a reconciliation reason")
	}
	if superseded.ReconciledBy == nil || *superseded.ReconciledBy != model.ReconcileActorSystem {
		t.Errorf("reconciled_by = %v, want %q", superseded.ReconciledBy, model.ReconcileActorSystem)
	}

	winner := sessions.byPublicID(2)
	if !winner.SessionActive {
		t.Error("newest session must stay active")
	}
}

func TestReconcileSameDeviceIsBenign(t *testing.T) {
	directory := &fakeDirectory{employees: []model.Employee{
		{PublicID: 100, Name: "Grace Wanjiku", Role: model.RoleEmployee, IsActive: true},
	}}
	sessions := &fakeAttendance{sessions: []model.AttendanceSession{
		{PublicID: 1, EmployeeID: 100, WorkDate: "2026-03-02", SessionActive: true, DeviceID: "device-a"},
		{PublicID: 2, EmployeeID: 100, WorkDate: "2026-03-02", SessionActive: true, DeviceID: "device-a"},
	}}
	alerts := &fakeAlerts{}

	newest := sessions.sessions[1]
	r := newTestReconciler(directory, sessions, alerts)
	if err := r.ReconcileSession(context.Background(), &newest); err != nil {
		t.Fatalf("ReconcileSession: %v", err)
	}

	if got := len(alerts.records); got != 0 {
		t.Errorf("alerts = %d, want 0", got)
	}
	if retry := sessions.byPublicID(1); !retry.SessionActive {
		t.Error("same-device session must not be deactivated")
	}
}

func TestReconcileNoFalsePositivesAcrossEmployees(t *testing.T) {
	directory := &fakeDirectory{employees: []model.Employee{
		{PublicID: 100, Name: "Grace Wanjiku", Role: model.RoleEmployee, IsActive: true},
		{PublicID: 200, Name: "John Otieno", Role: model.RoleEmployee, IsActive: true},
	}}
	sessions := &fakeAttendance{sessions: []model.AttendanceSession{
		{PublicID: 1, EmployeeID: 100, WorkDate: "2026-03-02", SessionActive: true, DeviceID: "device-a"},
		{PublicID: 2, EmployeeID: 200, WorkDate: "2026-03-02", SessionActive: true, DeviceID: "device-b"},
	}}
	alerts := &fakeAlerts{}

	r := newTestReconciler(directory, sessions, alerts)
	for i := range sessions.sessions {
		s := sessions.sessions[i]
		if err := r.ReconcileSession(context.Background(), &s); err != nil {
			t.Fatalf("ReconcileSession: %v", err)
		}
	}

	if got := len(alerts.records); got != 0 {
		t.Errorf("alerts = %d, want 0", got)
	}
	for _, id := range []int64{1, 2} {
		if s := sessions.byPublicID(id); !s.SessionActive {
			t.Errorf("session %d should remain active", id)
		}
	}
}

func TestReconcileRunSwallowsErrors(t *testing.T) {
	directory := &fakeDirectory{}
	sessions := &fakeAttendance{err: context.DeadlineExceeded}
	alerts := &fakeAlerts{}

	r := newTestReconciler(directory, sessions, alerts)
	r.Run(context.Background(), &model.AttendanceSession{PublicID: 9, EmployeeID: 100, WorkDate: "2026-03-02", DeviceID: "device-a"})

	funcErrors := alerts.ofType(model.AlertTypeFunctionError)
	if len(funcErrors) != 1 {
		t.Fatalf("function_error alerts = %d, want 1", len(funcErrors))
	}
	if funcErrors[0].Severity != model.SeverityCritical {
		t.Errorf("severity = %q, want %q", funcErrors[0].Severity, model.SeverityCritical)
	}
	if funcErrors[0].Function != "conflict_reconciler" {
		t.Errorf("function = %q, want conflict_reconciler", funcErrors[0].Function)
	}
}

func TestReconcileSkipsRedeliveredInactiveSession(t *testing.T) {
	directory := &fakeDirectory{employees: []model.Employee{
		{PublicID: 100, Name: "Grace Wanjiku", Role: model.RoleEmployee, IsActive: true},
	}}
	// Session 2 triggered the event but has since been superseded itself;
	// session 3 is the one that won. A redelivery of session 2's event must
	// not touch session 3.
	sessions := &fakeAttendance{sessions: []model.AttendanceSession{
		{PublicID: 2, EmployeeID: 100, WorkDate: "2026-03-02", SessionActive: false, DeviceID: "device-b"},
		{PublicID: 3, EmployeeID: 100, WorkDate: "2026-03-02", SessionActive: true, DeviceID: "device-c"},
	}}
	alerts := &fakeAlerts{}

	stale := model.AttendanceSession{PublicID: 2, EmployeeID: 100, WorkDate: "2026-03-02", SessionActive: true, DeviceID: "device-b"}
	r := newTestReconciler(directory, sessions, alerts)
	if err := r.ReconcileSession(context.Background(), &stale); err != nil {
		t.Fatalf("ReconcileSession: %v", err)
	}

	if got := alerts.ofType(model.AlertTypeDeviceConflict); len(got) != 0 {
		t.Fatalf("conflict alerts = %d, want 0 for a settled session", len(got))
	}
	if winner := sessions.byPublicID(3); !winner.SessionActive {
		t.Error("current winner must stay active")
	}
}
