package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeLeaseStore struct {
	values map[string]string
}

func newFakeLeaseStore() *fakeLeaseStore {
	return &fakeLeaseStore{values: make(map[string]string)}
}

func (f *fakeLeaseStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := f.values[key]; exists {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeLeaseStore) Get(ctx context.Context, key string) (string, error) {
	value, exists := f.values[key]
	if !exists {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeLeaseStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func TestRedisLockAcquireIsExclusive(t *testing.T) {
	store := newFakeLeaseStore()
	first, err := NewRedisLock(store, "maintenance:lock:test", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	second, err := NewRedisLock(store, "maintenance:lock:test", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}

	ok, err := first.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, got ok=%v err=%v", ok, err)
	}
	ok, err = second.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("expected second acquire to fail while the lease is held")
	}
}

func TestRedisLockReleaseOnlyByOwner(t *testing.T) {
	store := newFakeLeaseStore()
	owner, err := NewRedisLock(store, "maintenance:lock:test", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	bystander, err := NewRedisLock(store, "maintenance:lock:test", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}

	if ok, err := owner.Acquire(context.Background()); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	if err := bystander.Release(context.Background()); err != nil {
		t.Fatalf("bystander release: %v", err)
	}
	if _, exists := store.values["maintenance:lock:test"]; !exists {
		t.Fatal("bystander release must not drop the owner's lease")
	}

	if err := owner.Release(context.Background()); err != nil {
		t.Fatalf("owner release: %v", err)
	}
	if _, exists := store.values["maintenance:lock:test"]; exists {
		t.Fatal("expected lease removed after owner release")
	}
}

func TestRedisLockReleaseAfterExpiryIsNoop(t *testing.T) {
	store := newFakeLeaseStore()
	lock, err := NewRedisLock(store, "maintenance:lock:test", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	if ok, err := lock.Acquire(context.Background()); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	// Simulate TTL expiry between acquire and release.
	delete(store.values, "maintenance:lock:test")

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release after expiry: %v", err)
	}
}
