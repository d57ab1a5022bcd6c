package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 25 * time.Hour

// Lock serializes maintenance cycles across worker instances.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// leaseStore defines the Redis operations RedisLock depends on.
type leaseStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock holds an exclusive lease via SETNX with a TTL. The TTL covers
// crashed holders: a lease that is never released expires on its own.
type RedisLock struct {
	store leaseStore
	key   string
	ttl   time.Duration
	owner string
}

// NewRedisLock constructs a Redis-backed lock on the given key.
func NewRedisLock(store leaseStore, key string, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("lease store required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

// Acquire tries to take the lease for the configured TTL.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

// Release frees the lease only while this instance still owns it.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	value, err := l.store.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != l.owner {
		return nil
	}
	if err := l.store.Del(ctx, l.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.owner = ""
	return nil
}
