package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"OnDuty/internal/model"
	"OnDuty/storage/redis"
)

const (
	employeePrefix = "employee:profile"

	// Profiles change rarely (HR provisioning); a short TTL keeps reminder
	// runs cheap without a cache-invalidation path.
	employeeTTL = 10 * time.Minute

	// Cached marker for "no such employee"; short TTL so provisioning a new
	// profile becomes visible quickly.
	emptyValueFlag = "__EMPTY__"
	emptyValueTTL  = 1 * time.Minute
)

var employeeBreaker = NewCircuitBreaker("employee_cache", 5, 30*time.Second)

// GetEmployee returns the cached profile. found=false means a cache miss;
// a cached empty marker returns (nil, true, nil) meaning "known absent".
func GetEmployee(ctx context.Context, publicID int64) (emp *model.Employee, found bool, err error) {
	key := redis.Key(employeePrefix, fmt.Sprintf("%d", publicID))

	var data string
	err = employeeBreaker.Call(ctx, func() error {
		var getErr error
		data, getErr = redis.Client().Get(ctx, key).Result()
		if getErr == goredis.Nil {
			return nil
		}
		return getErr
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read employee cache: %w", err)
	}

	if data == "" {
		return nil, false, nil
	}
	if data == emptyValueFlag {
		return nil, true, nil
	}

	var cached model.Employee
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached employee: %w", err)
	}
	return &cached, true, nil
}

// SetEmployee caches a profile, or the empty marker when emp is nil.
func SetEmployee(ctx context.Context, publicID int64, emp *model.Employee) error {
	key := redis.Key(employeePrefix, fmt.Sprintf("%d", publicID))

	return employeeBreaker.Call(ctx, func() error {
		if emp == nil {
			return redis.Client().Set(ctx, key, emptyValueFlag, emptyValueTTL).Err()
		}

		data, err := json.Marshal(emp)
		if err != nil {
			return fmt.Errorf("failed to marshal employee: %w", err)
		}
		return redis.Client().Set(ctx, key, data, employeeTTL).Err()
	})
}
