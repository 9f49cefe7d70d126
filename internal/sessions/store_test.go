package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartwear/pos-backend/internal/returns"
	"github.com/smartwear/pos-backend/internal/workbench"
	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
	"github.com/smartwear/pos-backend/pkg/redis"
)

type fakeKV struct {
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	if f.err != nil {
		return f.err
	}
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeKV) SessionKey(id string) string { return "pos:session:" + id }
func (f *fakeKV) LockKey(name string) string  { return "pos:lock:" + name }

func sampleRecord() Record {
	wb := workbench.NewState()
	wb.Cart = append(wb.Cart, workbench.CartLine{
		LineID: "line-1", ProductID: 1, Name: "Premium Cotton T-Shirt",
		UnitPrice: decimal.RequireFromString("25.00"), Quantity: 2, Color: "White", Size: "M",
	})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return Record{
		ID:         "sess-1",
		TerminalID: "T1",
		Workbench:  wb,
		Returns:    returns.NewState(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func assertRoundTrip(t *testing.T, want, got Record) {
	t.Helper()
	if got.ID != want.ID || got.TerminalID != want.TerminalID {
		t.Fatalf("unexpected identity %+v", got)
	}
	if len(got.Workbench.Cart) != 1 || !got.Workbench.Cart[0].UnitPrice.Equal(want.Workbench.Cart[0].UnitPrice) {
		t.Fatalf("cart not restored: %+v", got.Workbench.Cart)
	}
	if got.Returns.Selected == nil {
		t.Fatal("expected non-nil selection map")
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("created_at mismatch: %v", got.CreatedAt)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	kv := newFakeKV()
	store, err := NewRedisStore(kv, time.Hour)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	rec := sampleRecord()

	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if kv.ttls["pos:session:sess-1"] != time.Hour {
		t.Fatalf("expected ttl to be applied, got %v", kv.ttls["pos:session:sess-1"])
	}
	got, err := store.Load(ctx, rec.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertRoundTrip(t, rec, got)

	if err := store.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, rec.ID); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestRedisStoreKeepsPendingSubmission(t *testing.T) {
	store, err := NewRedisStore(newFakeKV(), time.Hour)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	rec := sampleRecord()
	rec.PendingSale = &Submission{ID: "sale-1", Fingerprint: "abc", OccurredAt: rec.CreatedAt}

	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx, rec.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.PendingSale == nil || got.PendingSale.ID != "sale-1" || got.PendingSale.Fingerprint != "abc" {
		t.Fatalf("pending sale not restored: %+v", got.PendingSale)
	}
	if !got.PendingSale.OccurredAt.Equal(rec.CreatedAt) {
		t.Fatalf("occurred_at mismatch: %v", got.PendingSale.OccurredAt)
	}
	if got.PendingRefund != nil {
		t.Fatalf("expected no pending refund, got %+v", got.PendingRefund)
	}
}

func TestRedisStoreMapsBackendErrors(t *testing.T) {
	kv := newFakeKV()
	kv.err = errors.New("connection refused")
	store, _ := NewRedisStore(kv, 0)

	if _, err := store.Load(context.Background(), "sess-1"); !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if err := store.Save(context.Background(), sampleRecord()); !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestRedisStoreRequiresClient(t *testing.T) {
	if _, err := NewRedisStore(nil, 0); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestMemoryStoreRoundTripCopies(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	rec := sampleRecord()

	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec.Workbench.Cart[0].Quantity = 99

	got, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Workbench.Cart[0].Quantity != 2 {
		t.Fatalf("stored record aliased caller state: qty=%d", got.Workbench.Cart[0].Quantity)
	}
	assertRoundTrip(t, sampleRecord(), got)
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Save(ctx, sampleRecord()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Load(ctx, "sess-1"); err != nil {
		t.Fatalf("load before expiry: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := store.Load(ctx, "sess-1"); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired record evicted, len=%d", store.Len())
	}
}

func TestSaveRequiresID(t *testing.T) {
	rec := sampleRecord()
	rec.ID = ""
	if err := NewMemoryStore(0).Save(context.Background(), rec); err == nil {
		t.Fatal("expected error for missing id")
	}
}
