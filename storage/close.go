package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"OnDuty/pkg/logger"
	"OnDuty/storage/database"
	"OnDuty/storage/mq"
	"OnDuty/storage/redis"
)

// Close shuts connections down in dependency order: stop taking messages
// first (MQ), then the cache, then the database so final writes land.
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Logger.Info("Closing storage connections...")

	if err := mq.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close message queue", zap.Error(err))
	}

	if err := redis.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close Redis connection", zap.Error(err))
	}

	if err := database.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	logger.Logger.Info("All storage connections closed")
}
