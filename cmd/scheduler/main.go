package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"OnDuty/config"
	"OnDuty/internal/schedule"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/otel"
	"OnDuty/pkg/snowflake"
	"OnDuty/storage"
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	otelShutdown, err := otel.Init(ctx, config.Cfg.ServiceName+"-scheduler")
	if err != nil {
		logger.Logger.Warn("Telemetry export disabled", zap.Error(err))
		otelShutdown = func(context.Context) error { return nil }
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			logger.Logger.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", config.Cfg.ServiceName+"-scheduler"),
		zap.String("environment", config.Cfg.Environment),
	)

	go runPlanningLoop(ctx)

	<-ctx.Done()

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

// runPlanningLoop plans today's triggers immediately on startup, then once
// per day at 00:05 local time. The run tokens make the startup catch-up safe
// after a midday restart.
func runPlanningLoop(ctx context.Context) {
	s := schedule.GetScheduler()
	loc := config.Cfg.Location()

	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	if err := s.ScheduleDailyTriggers(runCtx); err != nil {
		logger.Logger.Error("Startup trigger planning failed", zap.Error(err))
	}
	cancel()

	for {
		now := time.Now().In(loc)
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 5, 0, 0, loc)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		delay := time.Until(next)
		logger.Logger.Info("Scheduled next trigger planning run",
			zap.Time("now", now),
			zap.Time("next_run", next),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			if err := s.ScheduleDailyTriggers(runCtx); err != nil {
				logger.Logger.Error("Trigger planning run failed", zap.Error(err))
			}
			cancel()
		}
	}
}
