package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartwear/pos-backend/pkg/redis"
)

// DefaultLockTTL bounds how long a crashed holder can block a session.
const DefaultLockTTL = 30 * time.Second

// ErrLocked is returned by TryLock when another holder owns the key.
var ErrLocked = errors.New("lock is held")

// Lease releases a lock acquired through a Locker.
type Lease interface {
	Release(ctx context.Context) error
}

// Locker hands out exclusive, non-blocking leases.
type Locker interface {
	TryLock(ctx context.Context, name string) (Lease, error)
}

type lockKV interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(name string) string
}

// RedisLocker implements Locker with SETNX plus an owner token.
type RedisLocker struct {
	kv  lockKV
	ttl time.Duration
}

// NewRedisLocker constructs a Redis-backed locker.
func NewRedisLocker(kv lockKV, ttl time.Duration) (*RedisLocker, error) {
	if kv == nil {
		return nil, errors.New("redis client required for lock")
	}
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLocker{kv: kv, ttl: ttl}, nil
}

func (l *RedisLocker) TryLock(ctx context.Context, name string) (Lease, error) {
	if name == "" {
		return nil, errors.New("lock name is required")
	}
	key := l.kv.LockKey(name)
	owner := uuid.NewString()
	ok, err := l.kv.SetNX(ctx, key, owner, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &redisLease{kv: l.kv, key: key, owner: owner}, nil
}

type redisLease struct {
	kv    lockKV
	key   string
	owner string
}

// Release frees the lock only if the owner value still matches.
func (l *redisLease) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	value, err := l.kv.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			l.owner = ""
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != l.owner {
		l.owner = ""
		return nil
	}
	if err := l.kv.Del(ctx, l.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.owner = ""
	return nil
}

// MemoryLocker is an in-process Locker.
type MemoryLocker struct {
	mu     sync.Mutex
	owners map[string]string
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{owners: map[string]string{}}
}

func (l *MemoryLocker) TryLock(_ context.Context, name string) (Lease, error) {
	if name == "" {
		return nil, errors.New("lock name is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.owners[name]; held {
		return nil, ErrLocked
	}
	owner := uuid.NewString()
	l.owners[name] = owner
	return &memoryLease{locker: l, name: name, owner: owner}, nil
}

type memoryLease struct {
	locker *MemoryLocker
	name   string
	owner  string
}

func (m *memoryLease) Release(context.Context) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()
	if m.locker.owners[m.name] == m.owner {
		delete(m.locker.owners, m.name)
	}
	return nil
}
