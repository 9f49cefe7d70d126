package sessions

import (
	"context"
	"errors"
	"testing"
)

func TestRedisLockerExclusive(t *testing.T) {
	kv := newFakeKV()
	locker, err := NewRedisLocker(kv, 0)
	if err != nil {
		t.Fatalf("new locker: %v", err)
	}
	ctx := context.Background()

	lease, err := locker.TryLock(ctx, "sess-1")
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if kv.ttls["pos:lock:sess-1"] != DefaultLockTTL {
		t.Fatalf("expected default ttl, got %v", kv.ttls["pos:lock:sess-1"])
	}
	if _, err := locker.TryLock(ctx, "sess-1"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, err := locker.TryLock(ctx, "sess-2"); err != nil {
		t.Fatalf("other session should lock: %v", err)
	}

	if err := lease.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok := kv.values["pos:lock:sess-1"]; ok {
		t.Fatal("expected lock key removed")
	}
	if _, err := locker.TryLock(ctx, "sess-1"); err != nil {
		t.Fatalf("relock after release: %v", err)
	}
}

func TestRedisLeaseKeepsForeignOwner(t *testing.T) {
	kv := newFakeKV()
	locker, _ := NewRedisLocker(kv, 0)
	ctx := context.Background()

	lease, err := locker.TryLock(ctx, "sess-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	kv.values["pos:lock:sess-1"] = "someone-else"

	if err := lease.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if kv.values["pos:lock:sess-1"] != "someone-else" {
		t.Fatal("release must not delete a lock owned by another holder")
	}
}

func TestRedisLockerSurfacesErrors(t *testing.T) {
	kv := newFakeKV()
	kv.err = errors.New("timeout")
	locker, _ := NewRedisLocker(kv, 0)
	_, err := locker.TryLock(context.Background(), "sess-1")
	if err == nil || errors.Is(err, ErrLocked) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestMemoryLocker(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	lease, err := locker.TryLock(ctx, "sess-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := locker.TryLock(ctx, "sess-1"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	_ = lease.Release(ctx)
	second, err := locker.TryLock(ctx, "sess-1")
	if err != nil {
		t.Fatalf("relock: %v", err)
	}
	// a stale lease must not free the new holder's lock
	_ = lease.Release(ctx)
	if _, err := locker.TryLock(ctx, "sess-1"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected lock still held, got %v", err)
	}
	_ = second.Release(ctx)
}

func TestTryLockRequiresName(t *testing.T) {
	if _, err := NewMemoryLocker().TryLock(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty name")
	}
}
