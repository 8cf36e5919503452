package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"OnDuty/config"
	"OnDuty/internal/service"
	apperrors "OnDuty/pkg/errors"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/response"
)

// RecoverConfig controls panic handling on the HTTP surface.
type RecoverConfig struct {
	EnableStackTrace bool
	// Production responses hide panic details unless this is set.
	ExposeDetails bool
	IsProduction  bool
}

var DefaultRecoverConfig = RecoverConfig{
	EnableStackTrace: true,
	ExposeDetails:    false,
}

func RecoverMiddleware() app.HandlerFunc {
	cfg := DefaultRecoverConfig
	cfg.IsProduction = config.Cfg.IsProduction()
	return RecoverMiddlewareWithConfig(cfg)
}

func RecoverMiddlewareWithConfig(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err, cfg)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}, cfg RecoverConfig) {
	var stack []byte
	if cfg.EnableStackTrace {
		stack = debug.Stack()
	}

	logger.Logger.Error("Panic recovered in HTTP handler",
		zap.Any("panic", err),
		zap.String("method", string(c.Method())),
		zap.String("path", string(c.Path())),
		zap.String("client_ip", c.ClientIP()),
		zap.ByteString("stack", stack),
	)
	service.ReportFunctionError(ctx, "http_"+string(c.Path()), fmt.Errorf("panic: %v", err))

	errDef := apperrors.Definition{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "Internal server error, please retry later",
	}

	if cfg.IsProduction && !cfg.ExposeDetails {
		response.Error(ctx, c, errDef)
		return
	}

	errDef.Message = fmt.Sprintf("Internal error: %v", err)
	details := map[string]interface{}{
		"panic":     fmt.Sprintf("%v", err),
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if cfg.EnableStackTrace {
		details["stack"] = string(stack)
	}
	response.ErrorWithDetails(ctx, c, errDef, details)
}
