// Package sessions stores terminal session state between requests and guards
// submissions with per-session locks.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/smartwear/pos-backend/internal/returns"
	"github.com/smartwear/pos-backend/internal/workbench"
	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
	"github.com/smartwear/pos-backend/pkg/redis"
)

// DefaultTTL bounds how long an idle session survives.
const DefaultTTL = 12 * time.Hour

// Record is everything a terminal session carries between requests.
type Record struct {
	ID         string          `json:"id"`
	TerminalID string          `json:"terminal_id"`
	Workbench  workbench.State `json:"workbench"`
	Returns    returns.State   `json:"returns"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	PendingSale   *Submission `json:"pending_sale,omitempty"`
	PendingRefund *Submission `json:"pending_refund,omitempty"`
}

// Submission reserves the id of a sale or refund until its state change
// commits. Fingerprint identifies the event content the id was minted for.
type Submission struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Store persists session records.
type Store interface {
	Load(ctx context.Context, id string) (Record, error)
	Save(ctx context.Context, rec Record) error
	Delete(ctx context.Context, id string) error
}

func notFound(id string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("session %q not found", id))
}

func encode(rec Record) ([]byte, error) {
	if rec.ID == "" {
		return nil, errors.New("session id is required")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return payload, nil
}

func decode(payload []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, fmt.Errorf("decode session: %w", err)
	}
	if rec.Returns.Selected == nil {
		rec.Returns.Selected = map[string]int{}
	}
	if rec.Workbench.Cart == nil {
		rec.Workbench.Cart = []workbench.CartLine{}
	}
	return rec, nil
}

type sessionKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SessionKey(sessionID string) string
}

// RedisStore keeps JSON encoded records under pos:session:<id>. Each save
// refreshes the TTL.
type RedisStore struct {
	kv  sessionKV
	ttl time.Duration
}

// NewRedisStore builds a redis backed store.
func NewRedisStore(kv sessionKV, ttl time.Duration) (*RedisStore, error) {
	if kv == nil {
		return nil, errors.New("redis client required for session store")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{kv: kv, ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (Record, error) {
	value, err := s.kv.Get(ctx, s.kv.SessionKey(id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, notFound(id)
		}
		return Record{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	return decode([]byte(value))
}

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	payload, err := encode(rec)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.kv.SessionKey(rec.ID), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.kv.Del(ctx, s.kv.SessionKey(id)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session")
	}
	return nil
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore keeps encoded records in process. Records are copied on the way
// in and out so callers never share state.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore builds an in-process store. A non-positive ttl keeps records
// until deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}, ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, id string) (Record, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok && !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return Record{}, notFound(id)
	}
	return decode(entry.payload)
}

func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	payload, err := encode(rec)
	if err != nil {
		return err
	}
	entry := memoryEntry{payload: payload}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[rec.ID] = entry
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len reports how many records are held, including expired ones not yet evicted.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
