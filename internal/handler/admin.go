package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"OnDuty/internal/service"
	"OnDuty/pkg/response"
)

// ListEmployees returns the full directory for the dashboard.
// GET /v1/admin/employees
func ListEmployees(ctx context.Context, c *app.RequestContext) {
	employees, err := service.Directory().List(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, employees, map[string]interface{}{
		"count": len(employees),
	})
}

// GetAttendance lists sessions for a date (today when omitted).
// GET /v1/admin/attendance?date=YYYY-MM-DD
func GetAttendance(ctx context.Context, c *app.RequestContext) {
	date := c.Query("date")

	sessions, err := service.Attendance().SessionsForDate(ctx, date)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	if date == "" {
		date = service.Attendance().Today()
	}
	response.SuccessWithMeta(ctx, c, sessions, map[string]interface{}{
		"date":  date,
		"count": len(sessions),
	})
}

// GetStats returns dashboard counters for a date: the persisted summary for
// finished days, a live computation for today. Nothing is persisted here.
// GET /v1/admin/stats?date=YYYY-MM-DD
func GetStats(ctx context.Context, c *app.RequestContext) {
	date := c.Query("date")
	if date == "" {
		date = service.Attendance().Today()
	}

	stats, err := service.Aggregator().StatsForDate(ctx, date)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, stats)
}

// GetSummaries lists persisted daily summaries, newest first.
// GET /v1/admin/summaries?days=&limit=
func GetSummaries(ctx context.Context, c *app.RequestContext) {
	days, _ := strconv.Atoi(c.Query("days"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	summaries, err := service.Aggregator().RecentSummaries(ctx, days, limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, summaries, map[string]interface{}{
		"count": len(summaries),
	})
}
