package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dayboard/dayboard/internal/model"
	"github.com/dayboard/dayboard/internal/store"
	"github.com/dayboard/dayboard/internal/store/memory"
)

// brokenStore fails every operation, simulating an unreachable tier.
type brokenStore struct{}

var errDown = errors.New("tier down")

func (brokenStore) Name() string                       { return "broken" }
func (brokenStore) Records() store.Records             { return brokenRecords{} }
func (brokenStore) Flags() store.Flags                 { return nil }
func (brokenStore) Archives() store.Archives           { return nil }
func (brokenStore) HealthPing(_ context.Context) error { return errDown }

type brokenRecords struct{}

func (brokenRecords) Get(context.Context, model.ContentKey) (*model.ContentRecord, error) {
	return nil, errDown
}
func (brokenRecords) Put(context.Context, *model.ContentRecord) error { return errDown }
func (brokenRecords) ListByDate(context.Context, string, model.Date) ([]*model.ContentRecord, error) {
	return nil, errDown
}

// wrappedMissStore reports misses as wrapped ErrNotFound, the way a driver
// adapter adding context would.
type wrappedMissStore struct{ *memory.Store }

func (s wrappedMissStore) Records() store.Records { return wrappedMissRecords{s.Store.Records()} }

type wrappedMissRecords struct{ store.Records }

func (r wrappedMissRecords) Get(ctx context.Context, key model.ContentKey) (*model.ContentRecord, error) {
	rec, err := r.Records.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("records get %s: %w", key, err)
	}
	return rec, nil
}

func testKey(t *testing.T) model.ContentKey {
	t.Helper()
	d, err := model.ParseDate("2024-06-02")
	if err != nil {
		t.Fatal(err)
	}
	return model.ContentKey{Scope: "u1", ContentType: model.ContentFoodPlan, Date: d}
}

func testRecord(t *testing.T) *model.ContentRecord {
	t.Helper()
	return &model.ContentRecord{
		Key:         testKey(t),
		Payload:     json.RawMessage(`{"meals":["oats"]}`),
		GeneratedAt: time.Now().UTC(),
		Source:      model.SourceGenerated,
	}
}

func TestTiered_Promotion(t *testing.T) {
	ctx := context.Background()
	t0 := memory.New()
	t1 := memory.New()
	c := NewTiered(zerolog.Nop(), t0, t1)

	rec := testRecord(t)
	// Seed only the slow tier.
	if err := t1.Records().Put(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := c.Get(ctx, rec.Key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Payload) != string(rec.Payload) {
		t.Fatalf("payload mismatch: %s", got.Payload)
	}

	// Hit must now be present in tier 0 with identical content.
	promoted, err := t0.Records().Get(ctx, rec.Key)
	if err != nil {
		t.Fatalf("tier 0 after promotion: %v", err)
	}
	if string(promoted.Payload) != string(rec.Payload) {
		t.Fatalf("promoted payload differs: %s", promoted.Payload)
	}
}

func TestTiered_FullMiss(t *testing.T) {
	c := NewTiered(zerolog.Nop(), memory.New(), memory.New())
	if _, err := c.Get(context.Background(), testKey(t)); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTiered_WrappedNotFoundIsMiss(t *testing.T) {
	// A driver that wraps ErrNotFound with context must still read as a
	// miss, not a tier failure.
	c := NewTiered(zerolog.Nop(), wrappedMissStore{memory.New()}, wrappedMissStore{memory.New()})
	if _, err := c.Get(context.Background(), testKey(t)); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTiered_MalformedPayloadIsMiss(t *testing.T) {
	ctx := context.Background()
	t0 := memory.New()
	t1 := memory.New()
	c := NewTiered(zerolog.Nop(), t0, t1)

	good := testRecord(t)
	bad := *good
	bad.Payload = json.RawMessage(`{"meals":`)

	// Corrupted copy in the fast tier, intact copy below it.
	if err := t0.Records().Put(ctx, &bad); err != nil {
		t.Fatal(err)
	}
	if err := t1.Records().Put(ctx, good); err != nil {
		t.Fatal(err)
	}

	got, err := c.Get(ctx, good.Key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Payload) != string(good.Payload) {
		t.Fatalf("did not fall through to intact record: %s", got.Payload)
	}
}

func TestTiered_DegradesPastBrokenTier(t *testing.T) {
	ctx := context.Background()
	t1 := memory.New()
	c := NewTiered(zerolog.Nop(), brokenStore{}, t1)

	rec := testRecord(t)
	if err := t1.Records().Put(ctx, rec); err != nil {
		t.Fatal(err)
	}
	got, err := c.Get(ctx, rec.Key)
	if err != nil {
		t.Fatalf("Get through broken tier: %v", err)
	}
	if string(got.Payload) != string(rec.Payload) {
		t.Fatalf("payload mismatch: %s", got.Payload)
	}
}

func TestTiered_AllTiersDown(t *testing.T) {
	c := NewTiered(zerolog.Nop(), brokenStore{}, brokenStore{})
	if _, err := c.Get(context.Background(), testKey(t)); !errors.Is(err, model.ErrCacheUnavailable) {
		t.Fatalf("expected ErrCacheUnavailable, got %v", err)
	}
}

func TestTiered_PutBestEffort(t *testing.T) {
	ctx := context.Background()
	t1 := memory.New()
	c := NewTiered(zerolog.Nop(), brokenStore{}, t1)

	rec := testRecord(t)
	if err := c.Put(ctx, rec); err != nil {
		t.Fatalf("Put with one broken tier: %v", err)
	}
	if _, err := t1.Records().Get(ctx, rec.Key); err != nil {
		t.Fatalf("healthy tier missed the write: %v", err)
	}

	all := NewTiered(zerolog.Nop(), brokenStore{})
	if err := all.Put(ctx, rec); err == nil {
		t.Fatal("Put with every tier down should error")
	}
}
