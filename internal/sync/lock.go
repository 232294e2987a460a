package sync

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "punchsync:lock:"

// RunLock serializes sync runs per source with a TTL-bounded redis SetNX.
// It only prevents wasted duplicate scans; the database unique indexes
// remain the correctness guard.
type RunLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRunLock(rdb *redis.Client, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RunLock{rdb: rdb, ttl: ttl}
}

func (l *RunLock) Acquire(ctx context.Context, sourceName string) (bool, error) {
	return l.rdb.SetNX(ctx, lockKeyPrefix+sourceName, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
}

func (l *RunLock) Release(ctx context.Context, sourceName string) error {
	return l.rdb.Del(ctx, lockKeyPrefix+sourceName).Err()
}
