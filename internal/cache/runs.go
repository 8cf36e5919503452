package cache

import (
	"context"
	"fmt"
	"time"

	"OnDuty/internal/model"
	"OnDuty/storage/redis"
)

const (
	runTokenPrefix         = "run:token"
	messageProcessedPrefix = "message:processed"

	runTokenTTL = 24 * time.Hour

	// A fresh claim only covers the run in flight; MarkMessageProcessed
	// extends it to the full dedupe window once the run lands. A worker that
	// dies mid-run therefore frees the message instead of swallowing it.
	inFlightTTL  = 10 * time.Minute
	processedTTL = 48 * time.Hour
)

// TryAcquireRunToken atomically claims a (trigger kind, date) slot. Returns
// false when the slot is already claimed, which means a duplicate trigger
// firing should log and exit instead of re-sending notifications.
func TryAcquireRunToken(ctx context.Context, kind model.TriggerKind, date string) (bool, error) {
	key := redis.Key(runTokenPrefix, string(kind), date)
	ok, err := redis.Client().SetNX(ctx, key, "1", runTokenTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run token: %w", err)
	}
	return ok, nil
}

// ReleaseRunToken frees a claimed slot so the trigger can be retried, used
// when publishing the trigger message fails after the claim.
func ReleaseRunToken(ctx context.Context, kind model.TriggerKind, date string) error {
	key := redis.Key(runTokenPrefix, string(kind), date)
	return redis.Client().Del(ctx, key).Err()
}

// TryMarkMessageProcessing atomically marks a message id as in flight.
// Returns true on first sight, false for duplicate deliveries. The mark
// expires after inFlightTTL unless MarkMessageProcessed confirms it.
func TryMarkMessageProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = inFlightTTL
	}

	result, err := redis.Client().SetNX(ctx, key, "processing", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return result, nil
}

// UnmarkMessageProcessing clears the in-flight mark so a failed message can
// be retried on redelivery.
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	return redis.Client().Del(ctx, key).Err()
}

// MarkMessageProcessed stamps a message id as done and extends its mark to
// the dedupe window, so later redeliveries keep being dropped.
func MarkMessageProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}
	return redis.Client().Set(ctx, key, "completed", ttl).Err()
}
