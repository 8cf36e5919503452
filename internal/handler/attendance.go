package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"OnDuty/internal/service"
	apperrors "OnDuty/pkg/errors"
	"OnDuty/pkg/response"
)

type clockInRequest struct {
	EmployeeID string `json:"employee_id" vd:"len($)>0"`
	DeviceID   string `json:"device_id" vd:"len($)>0"`
	DeviceName string `json:"device_name"`
}

// ClockIn opens a session for the employee on the calling device.
// POST /v1/attendance/clock-in
func ClockIn(ctx context.Context, c *app.RequestContext) {
	var req clockInRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	employeeID, err := strconv.ParseInt(req.EmployeeID, 10, 64)
	if err != nil {
		response.Error(ctx, c, apperrors.InvalidEmployeeID)
		return
	}

	session, err := service.Attendance().ClockIn(ctx, employeeID, req.DeviceID, req.DeviceName)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, session)
}

type clockOutRequest struct {
	EmployeeID string `json:"employee_id" vd:"len($)>0"`
}

// ClockOut closes the employee's open session for today.
// POST /v1/attendance/clock-out
func ClockOut(ctx context.Context, c *app.RequestContext) {
	var req clockOutRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	employeeID, err := strconv.ParseInt(req.EmployeeID, 10, 64)
	if err != nil {
		response.Error(ctx, c, apperrors.InvalidEmployeeID)
		return
	}

	session, err := service.Attendance().ClockOut(ctx, employeeID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, session)
}

// GetTodaySessions returns the employee's sessions for today.
// GET /v1/attendance/today?employee_id=
func GetTodaySessions(ctx context.Context, c *app.RequestContext) {
	employeeID, err := strconv.ParseInt(c.Query("employee_id"), 10, 64)
	if err != nil {
		response.Error(ctx, c, apperrors.InvalidEmployeeID)
		return
	}

	sessions, err := service.Attendance().SessionsToday(ctx, employeeID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, sessions, map[string]interface{}{
		"date":  service.Attendance().Today(),
		"count": len(sessions),
	})
}
