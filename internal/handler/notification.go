package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"OnDuty/internal/service"
	apperrors "OnDuty/pkg/errors"
	"OnDuty/pkg/response"
)

type sendNotificationRequest struct {
	Type       string `json:"type"`
	EmployeeID string `json:"employeeId"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

// SendNotification dispatches a one-off push to an employee. The response
// carries a plain success flag: the dashboard client keys off it directly.
// POST /v1/admin/notifications
func SendNotification(ctx context.Context, c *app.RequestContext) {
	var req sendNotificationRequest
	if err := c.BindAndValidate(&req); err != nil {
		c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	if req.Type == "" || req.EmployeeID == "" || req.Title == "" || req.Body == "" {
		c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "type, employeeId, title and body are required",
		})
		return
	}

	employeeID, err := strconv.ParseInt(req.EmployeeID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   apperrors.InvalidEmployeeID.Message,
		})
		return
	}

	err = service.Notifications().SendManual(ctx, service.ManualDispatch{
		Type:       req.Type,
		EmployeeID: employeeID,
		Title:      req.Title,
		Body:       req.Body,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// GetNotificationLogs returns alert-log entries from the last N days.
// GET /v1/admin/notifications/logs?days=&limit=
func GetNotificationLogs(ctx context.Context, c *app.RequestContext) {
	days, _ := strconv.Atoi(c.Query("days"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	logs, err := service.Notifications().RecentLogs(ctx, days, limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, logs, map[string]interface{}{
		"count": len(logs),
	})
}
