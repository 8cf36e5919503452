package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"OnDuty/config"
)

var (
	client   *redis.Client
	initOnce sync.Once
	initErr  error
)

// Init connects on first call and pings to verify the address before any
// run token or lock is taken against it. Later calls return the first result.
func Init() error {
	initOnce.Do(func() {
		client = redis.NewClient(&redis.Options{
			Addr:         config.Cfg.RedisAddr,
			Password:     config.Cfg.RedisPassword,
			DB:           config.Cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			MinIdleConns: 5,
			MaxRetries:   3,
		})

		hook, hookErr := newTracingHook(config.Cfg.ServiceName, config.Cfg.RedisDB)
		if hookErr != nil {
			initErr = fmt.Errorf("redis telemetry hook: %w", hookErr)
			return
		}
		client.AddHook(hook)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if pingErr := client.Ping(ctx).Err(); pingErr != nil {
			initErr = fmt.Errorf("redis ping %s: %w", config.Cfg.RedisAddr, pingErr)
		}
	})

	return initErr
}

func Client() *redis.Client {
	if client == nil {
		panic("Redis client not initialized")
	}
	return client
}

func Close(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// Key joins parts under the configured key prefix, skipping empty segments.
func Key(parts ...string) string {
	prefix := config.Cfg.RedisPrefix
	if prefix == "" {
		prefix = "onduty"
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	for _, part := range parts {
		if part != "" {
			sb.WriteString(":")
			sb.WriteString(part)
		}
	}
	return sb.String()
}
