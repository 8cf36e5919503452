package middleware

import (
	"go.uber.org/zap"

	"OnDuty/pkg/logger"
)

// Init wires the middlewares that need startup state. Must run after
// token.Init().
func Init() error {
	if err := initAuthMiddleware(); err != nil {
		logger.Logger.Error("Failed to initialize auth middleware", zap.Error(err))
		return err
	}

	if err := initTelemetryMetrics(); err != nil {
		logger.Logger.Error("Failed to initialize telemetry metrics", zap.Error(err))
		return err
	}

	logger.Logger.Info("All middlewares initialized successfully")
	return nil
}
