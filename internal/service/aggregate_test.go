package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"OnDuty/internal/model"
)

func newTestAggregator(directory *fakeDirectory, sessions *fakeAttendance, alerts *fakeAlerts, summaries *fakeSummaries) *DailyAggregator {
	a := NewDailyAggregator(directory, sessions, alerts, summaries, time.UTC, 8)
	a.now = func() time.Time { return time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC) }
	return a
}

func seedAggregateFixture() (*fakeDirectory, *fakeAttendance) {
	directory := &fakeDirectory{}
	for i := 1; i <= 10; i++ {
		directory.employees = append(directory.employees, model.Employee{
			PublicID: int64(i),
			PFNumber: fmt.Sprintf("PF-%03d", i),
			Name:     fmt.Sprintf("Employee %d", i),
			Role:     model.RoleEmployee,
			IsActive: true,
		})
	}

	// 7 present, 2 of them late, 52.5 hours in total, all clocked out.
	sessions := &fakeAttendance{}
	clockOut := "15:30:00"
	for i := 1; i <= 7; i++ {
		status := model.StatusPresent
		isLate := i <= 2
		if isLate {
			status = model.StatusLate
		}
		sessions.sessions = append(sessions.sessions, model.AttendanceSession{
			PublicID:     int64(10 + i),
			EmployeeID:   int64(i),
			WorkDate:     "2026-03-02",
			ClockInTime:  "08:00:00",
			ClockOutTime: &clockOut,
			Status:       status,
			IsLate:       isLate,
			TotalHours:   7.5,
			DeviceID:     "d1",
		})
	}
	return directory, sessions
}

func TestDailyAggregateMath(t *testing.T) {
	directory, sessions := seedAggregateFixture()
	alerts := &fakeAlerts{}
	summaries := &fakeSummaries{}

	a := newTestAggregator(directory, sessions, alerts, summaries)
	summary, err := a.Run(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.TotalEmployees != 10 {
		t.Errorf("total employees = %d, want 10", summary.TotalEmployees)
	}
	if summary.PresentCount != 7 {
		t.Errorf("present = %d, want 7", summary.PresentCount)
	}
	if summary.LateCount != 2 {
		t.Errorf("late = %d, want 2", summary.LateCount)
	}
	if summary.AbsentCount != 3 {
		t.Errorf("absent = %d, want 3", summary.AbsentCount)
	}
	if summary.AttendanceRate != 70.0 {
		t.Errorf("attendance rate = %v, want 70.0", summary.AttendanceRate)
	}
	if summary.TotalHoursWorked != 52.5 {
		t.Errorf("total hours = %v, want 52.5", summary.TotalHoursWorked)
	}
	if summary.AvgHoursWorked != 7.5 {
		t.Errorf("avg hours = %v, want 7.5", summary.AvgHoursWorked)
	}
	if got := summary.Details["short_shift_count"]; got != 7 {
		t.Errorf("short shifts = %v, want 7 (7.5h worked against an 8h day)", got)
	}
}

func TestDailyAggregateZeroDenominators(t *testing.T) {
	directory := &fakeDirectory{}
	sessions := &fakeAttendance{}
	alerts := &fakeAlerts{}
	summaries := &fakeSummaries{}

	a := newTestAggregator(directory, sessions, alerts, summaries)
	summary, err := a.Run(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.AttendanceRate != 0 || summary.AvgHoursWorked != 0 {
		t.Errorf("rate=%v avg=%v, want both 0", summary.AttendanceRate, summary.AvgHoursWorked)
	}
	if summary.AbsentCount != 0 {
		t.Errorf("absent = %d, want 0", summary.AbsentCount)
	}
}

func TestDailyAggregateCountsConflicts(t *testing.T) {
	directory, sessions := seedAggregateFixture()
	alerts := &fakeAlerts{records: []model.AlertRecord{
		{PublicID: 1, Type: model.AlertTypeDeviceConflict, Severity: model.SeverityHigh},
		{PublicID: 2, Type: model.AlertTypeManual, Severity: model.SeverityInfo},
	}}
	summaries := &fakeSummaries{}

	a := newTestAggregator(directory, sessions, alerts, summaries)
	summary, err := a.Run(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.DeviceConflictCount != 1 {
		t.Errorf("device conflicts = %d, want 1", summary.DeviceConflictCount)
	}
}

func TestDailyAggregateAppendsOnEveryRun(t *testing.T) {
	directory, sessions := seedAggregateFixture()
	alerts := &fakeAlerts{}
	summaries := &fakeSummaries{}

	a := newTestAggregator(directory, sessions, alerts, summaries)
	first, err := a.Run(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := a.Run(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if len(summaries.rows) != 2 {
		t.Fatalf("summary rows = %d, want 2 (append-only, no merge)", len(summaries.rows))
	}
	if first.PublicID == second.PublicID {
		t.Error("re-run must mint a fresh record id")
	}
	if first.PresentCount != second.PresentCount ||
		first.AttendanceRate != second.AttendanceRate ||
		first.AvgHoursWorked != second.AvgHoursWorked {
		t.Errorf("re-run counters differ: first=%+v second=%+v", first, second)
	}
}

func TestStatsForDateServesPersistedSummaryForPastDays(t *testing.T) {
	directory, sessions := seedAggregateFixture()
	summaries := &fakeSummaries{rows: []model.DailySummary{
		{PublicID: 51, Date: "2026-03-01", PresentCount: 4, TotalEmployees: 10},
		{PublicID: 52, Date: "2026-03-01", PresentCount: 5, TotalEmployees: 10},
	}}

	a := newTestAggregator(directory, sessions, &fakeAlerts{}, summaries)
	stats, err := a.StatsForDate(context.Background(), "2026-03-01")
	if err != nil {
		t.Fatalf("StatsForDate: %v", err)
	}

	if stats.PublicID != 52 {
		t.Errorf("served summary id = %d, want 52 (newest appended row wins)", stats.PublicID)
	}
	if stats.PresentCount != 5 {
		t.Errorf("present = %d, want 5 from the persisted row", stats.PresentCount)
	}
}

func TestStatsForDateComputesTodayLive(t *testing.T) {
	directory, sessions := seedAggregateFixture()
	// A stale row for today must not shadow the live counters.
	summaries := &fakeSummaries{rows: []model.DailySummary{
		{PublicID: 51, Date: "2026-03-02", PresentCount: 1, TotalEmployees: 3},
	}}

	a := newTestAggregator(directory, sessions, &fakeAlerts{}, summaries)
	stats, err := a.StatsForDate(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("StatsForDate: %v", err)
	}

	if stats.PresentCount != 7 || stats.TotalEmployees != 10 {
		t.Errorf("today's stats = present %d of %d, want live 7 of 10", stats.PresentCount, stats.TotalEmployees)
	}
	if len(summaries.rows) != 1 {
		t.Errorf("summary rows = %d, want 1 (stats reads must not persist)", len(summaries.rows))
	}
}

func TestStatsForDateFallsBackToComputeWhenUnsummarized(t *testing.T) {
	directory, sessions := seedAggregateFixture()
	summaries := &fakeSummaries{}

	a := newTestAggregator(directory, sessions, &fakeAlerts{}, summaries)
	stats, err := a.StatsForDate(context.Background(), "2026-03-01")
	if err != nil {
		t.Fatalf("StatsForDate: %v", err)
	}

	// No persisted row and no sessions for that date: computed zeros, not an
	// error.
	if stats.PresentCount != 0 || stats.TotalEmployees != 10 {
		t.Errorf("fallback stats = present %d of %d, want computed 0 of 10", stats.PresentCount, stats.TotalEmployees)
	}
}
