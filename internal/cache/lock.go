package cache

import (
	"context"
	"fmt"
	"time"

	"OnDuty/storage/redis"
)

const lockPrefix = "lock"

// TryLock takes a SETNX lock. Used by the reconciler to serialize concurrent
// reconciliations of the same (employee, date).
func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullKey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullKey, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return result, nil
}

func Unlock(ctx context.Context, key string) error {
	fullKey := redis.Key(lockPrefix, key)
	return redis.Client().Del(ctx, fullKey).Err()
}

// ReconcileLockKey builds the per-(employee, date) reconciliation lock key.
func ReconcileLockKey(employeeID int64, date string) string {
	return fmt.Sprintf("reconcile:%d:%s", employeeID, date)
}
