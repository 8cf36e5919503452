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
	"OnDuty/utils"
)

// DailyAggregator reduces a day's attendance records into one summary row.
// Summaries are recomputed wholesale on every run and appended, never merged;
// the newest row for a date is the authoritative one.
type DailyAggregator struct {
	directory     repository.DirectoryStore
	sessions      repository.AttendanceStore
	alerts        repository.AlertLog
	summaries     repository.SummaryStore
	loc           *time.Location
	standardHours float64
	now           func() time.Time
}

func NewDailyAggregator(directory repository.DirectoryStore, sessions repository.AttendanceStore, alerts repository.AlertLog, summaries repository.SummaryStore, loc *time.Location, standardHours float64) *DailyAggregator {
	if loc == nil {
		loc = time.UTC
	}
	if standardHours <= 0 {
		standardHours = 8
	}
	return &DailyAggregator{
		directory:     directory,
		sessions:      sessions,
		alerts:        alerts,
		summaries:     summaries,
		loc:           loc,
		standardHours: standardHours,
		now:           time.Now,
	}
}

// Run aggregates the given date and appends the summary row. Unlike the
// reminder runs, any error aborts the aggregation and propagates to the
// caller so the trigger can be retried.
func (a *DailyAggregator) Run(ctx context.Context, date string) (*model.DailySummary, error) {
	summary, err := a.Compute(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := a.summaries.Append(ctx, summary); err != nil {
		return nil, fmt.Errorf("append daily summary: %w", err)
	}

	logger.Logger.Info("Daily summary generated",
		zap.String("date", date),
		zap.Int("total_employees", summary.TotalEmployees),
		zap.Int("present", summary.PresentCount),
		zap.Int("late", summary.LateCount),
		zap.Int("absent", summary.AbsentCount),
		zap.Float64("attendance_rate", summary.AttendanceRate),
		zap.Int("device_conflicts", summary.DeviceConflictCount),
	)
	return summary, nil
}

// StatsForDate answers the dashboard stats query. Past dates are served from
// the newest persisted summary when one exists; today's numbers are still
// moving, so today is always computed live, as is any date the aggregator
// never ran for.
func (a *DailyAggregator) StatsForDate(ctx context.Context, date string) (*model.DailySummary, error) {
	if date != a.now().In(a.loc).Format(utils.DateLayout) {
		persisted, err := a.summaries.LatestForDate(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("load summary for %s: %w", date, err)
		}
		if persisted != nil {
			return persisted, nil
		}
	}
	return a.Compute(ctx, date)
}

// Compute builds the summary without persisting it; the admin stats endpoint
// reads live numbers through this path.
func (a *DailyAggregator) Compute(ctx context.Context, date string) (*model.DailySummary, error) {
	staff, err := a.directory.ActiveStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active staff: %w", err)
	}
	records, err := a.sessions.SessionsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list sessions for %s: %w", date, err)
	}

	byID := make(map[int64]model.Employee, len(staff))
	for _, emp := range staff {
		byID[emp.PublicID] = emp
	}

	var present, late, stillClockedIn, shortShifts int
	var totalHours float64
	details := make([]model.AttendanceDetail, 0, len(records))

	for _, rec := range records {
		if rec.Status == model.StatusPresent || rec.Status == model.StatusLate {
			present++
		}
		if rec.IsLate {
			late++
		}
		if rec.SessionActive {
			stillClockedIn++
		}
		if rec.ClockOutTime != nil && rec.TotalHours < a.standardHours {
			shortShifts++
		}
		totalHours += rec.TotalHours

		name, pfNumber := "Unknown", ""
		if emp, ok := byID[rec.EmployeeID]; ok {
			name = emp.Name
			pfNumber = emp.PFNumber
		}
		clockOut := ""
		if rec.ClockOutTime != nil {
			clockOut = *rec.ClockOutTime
		}
		details = append(details, model.AttendanceDetail{
			Name:         name,
			PFNumber:     pfNumber,
			ClockInTime:  rec.ClockInTime,
			ClockOutTime: clockOut,
			TotalHours:   rec.TotalHours,
			IsLate:       rec.IsLate,
			LateMinutes:  rec.LateMinutes,
			DeviceName:   rec.DeviceName,
		})
	}

	absent := len(staff) - present
	if absent < 0 {
		absent = 0
	}

	rate := 0.0
	if len(staff) > 0 {
		rate = round1(float64(present) / float64(len(staff)) * 100)
	}
	avgHours := 0.0
	if present > 0 {
		avgHours = round1(totalHours / float64(present))
	}

	dayStart, err := time.ParseInLocation(utils.DateLayout, date, a.loc)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", date, err)
	}
	conflicts, err := a.alerts.CountByTypeBetween(ctx, string(model.AlertTypeDeviceConflict), dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("count conflict alerts: %w", err)
	}

	id, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("mint summary id: %w", err)
	}

	summary := &model.DailySummary{
		PublicID:            id,
		Date:                date,
		TotalEmployees:      len(staff),
		PresentCount:        present,
		LateCount:           late,
		AbsentCount:         absent,
		StillClockedInCount: stillClockedIn,
		AttendanceRate:      rate,
		TotalHoursWorked:    round2(totalHours),
		AvgHoursWorked:      avgHours,
		DeviceConflictCount: int(conflicts),
		Details:             model.JSONB{"attendance": details, "short_shift_count": shortShifts},
		GeneratedAt:         a.now(),
	}
	return summary, nil
}

// RecentSummaries lists summary rows generated in the last N days, newest
// first. Parameters are clamped, not rejected.
func (a *DailyAggregator) RecentSummaries(ctx context.Context, days, limit int) ([]model.DailySummary, error) {
	if days <= 0 {
		days = 7
	}
	if days > 90 {
		days = 90
	}
	if limit <= 0 {
		limit = 30
	}
	if limit > 365 {
		limit = 365
	}

	since := a.now().AddDate(0, 0, -days)
	return a.summaries.Recent(ctx, since, limit)
}
