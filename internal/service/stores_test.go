package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"OnDuty/internal/model"
	"OnDuty/pkg/snowflake"
)

func TestMain(m *testing.M) {
	if err := snowflake.Init(1, 1); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeDirectory struct {
	employees []model.Employee
	err       error
}

func (d *fakeDirectory) ActiveStaff(ctx context.Context) ([]model.Employee, error) {
	if d.err != nil {
		return nil, d.err
	}
	var out []model.Employee
	for _, e := range d.employees {
		if e.IsStaff() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (d *fakeDirectory) EmployeeByPublicID(ctx context.Context, publicID int64) (*model.Employee, error) {
	if d.err != nil {
		return nil, d.err
	}
	for i := range d.employees {
		if d.employees[i].PublicID == publicID {
			e := d.employees[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) EmployeeByPFNumber(ctx context.Context, pfNumber string) (*model.Employee, error) {
	if d.err != nil {
		return nil, d.err
	}
	for i := range d.employees {
		if d.employees[i].PFNumber == pfNumber {
			e := d.employees[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.employees, nil
}

type fakeAttendance struct {
	mu       sync.Mutex
	sessions []model.AttendanceSession
	err      error
}

func (s *fakeAttendance) CreateSession(ctx context.Context, session *model.AttendanceSession) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, *session)
	return nil
}

func (s *fakeAttendance) SessionByPublicID(ctx context.Context, publicID int64) (*model.AttendanceSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].PublicID == publicID {
			sess := s.sessions[i]
			return &sess, nil
		}
	}
	return nil, nil
}

func (s *fakeAttendance) ActiveSessions(ctx context.Context, employeeID int64, date string) ([]model.AttendanceSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AttendanceSession
	for _, sess := range s.sessions {
		if sess.EmployeeID == employeeID && sess.WorkDate == date && sess.SessionActive {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *fakeAttendance) EmployeeSessions(ctx context.Context, employeeID int64, date string) ([]model.AttendanceSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AttendanceSession
	for _, sess := range s.sessions {
		if sess.EmployeeID == employeeID && sess.WorkDate == date {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *fakeAttendance) SessionsForDate(ctx context.Context, date string) ([]model.AttendanceSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AttendanceSession
	for _, sess := range s.sessions {
		if sess.WorkDate == date {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *fakeAttendance) OpenSessions(ctx context.Context, date string) ([]model.AttendanceSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AttendanceSession
	for _, sess := range s.sessions {
		if sess.WorkDate == date && sess.SessionActive && sess.ClockInTime != "" && sess.ClockOutTime == nil {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *fakeAttendance) CloseSession(ctx context.Context, publicID int64, clockOutTime string, clockOutAt time.Time, totalHours float64) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].PublicID == publicID {
			out := clockOutTime
			at := clockOutAt
			s.sessions[i].ClockOutTime = &out
			s.sessions[i].ClockOutAt = &at
			s.sessions[i].TotalHours = totalHours
			s.sessions[i].SessionActive = false
			return nil
		}
	}
	return nil
}

func (s *fakeAttendance) Deactivate(ctx context.Context, publicID int64, reason, actor string, at time.Time) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].PublicID == publicID && s.sessions[i].SessionActive {
			s.sessions[i].SessionActive = false
			s.sessions[i].ReconciledReason = &reason
			s.sessions[i].ReconciledBy = &actor
			reconciledAt := at
			s.sessions[i].ReconciledAt = &reconciledAt
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeAttendance) byPublicID(publicID int64) *model.AttendanceSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].PublicID == publicID {
			return &s.sessions[i]
		}
	}
	return nil
}

type fakeAlerts struct {
	mu      sync.Mutex
	records []model.AlertRecord
	err     error
}

func (a *fakeAlerts) Append(ctx context.Context, record *model.AlertRecord) error {
	if a.err != nil {
		return a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, *record)
	return nil
}

// The fake counts by type only; the window is exercised against the real
// store's SQL, not here.
func (a *fakeAlerts) CountByTypeBetween(ctx context.Context, alertType string, from, to time.Time) (int64, error) {
	if a.err != nil {
		return 0, a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	var count int64
	for _, r := range a.records {
		if string(r.Type) == alertType {
			count++
		}
	}
	return count, nil
}

func (a *fakeAlerts) Recent(ctx context.Context, since time.Time, limit int) ([]model.AlertRecord, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.AlertRecord, len(a.records))
	copy(out, a.records)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *fakeAlerts) ofType(alertType model.AlertType) []model.AlertRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []model.AlertRecord
	for _, r := range a.records {
		if r.Type == alertType {
			out = append(out, r)
		}
	}
	return out
}

type fakeSummaries struct {
	mu   sync.Mutex
	rows []model.DailySummary
	err  error
}

func (s *fakeSummaries) Append(ctx context.Context, summary *model.DailySummary) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, *summary)
	return nil
}

func (s *fakeSummaries) LatestForDate(ctx context.Context, date string) (*model.DailySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.rows) - 1; i >= 0; i-- {
		if s.rows[i].Date == date {
			row := s.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (s *fakeSummaries) Recent(ctx context.Context, since time.Time, limit int) ([]model.DailySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.DailySummary, len(s.rows))
	copy(out, s.rows)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func strPtr(s string) *string {
	return &s
}
