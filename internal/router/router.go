package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"OnDuty/internal/handler"
	"OnDuty/internal/middleware"
)

func Register(h *server.Hertz) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.TelemetryMiddleware())
	h.Use(middleware.CORSMiddleware())

	v1 := h.Group("/v1")

	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware())
	{
		auth.POST("/login", handler.Login)
		auth.POST("/refresh", handler.RefreshToken)
	}

	// Device-facing clock endpoints. Devices authenticate with their device
	// identifier in the payload, not with JWT; the per-employee rate limit
	// falls back to IP for them.
	attendance := v1.Group("/attendance")
	attendance.Use(middleware.ClockRateLimitMiddleware())
	{
		attendance.POST("/clock-in", handler.ClockIn)
		attendance.POST("/clock-out", handler.ClockOut)
		attendance.GET("/today", handler.GetTodaySessions)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.RequireAdmin())
	admin.Use(middleware.GeneralRateLimitMiddleware())
	{
		admin.GET("/employees", handler.ListEmployees)
		admin.GET("/attendance", handler.GetAttendance)
		admin.GET("/stats", handler.GetStats)
		admin.GET("/summaries", handler.GetSummaries)

		admin.POST("/notifications", handler.SendNotification)
		admin.GET("/notifications/logs", handler.GetNotificationLogs)
	}
}
