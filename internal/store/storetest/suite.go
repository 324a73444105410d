// Package storetest holds a compliance suite shared by store.Store
// implementations.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dayboard/dayboard/internal/model"
	"github.com/dayboard/dayboard/internal/store"
)

// Run exercises a store.Store implementation against the persistence
// contract. Implementations provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	scope := "u-" + uuid.New().String()
	date, _ := model.ParseDate("2024-06-02")
	key := model.ContentKey{Scope: scope, ContentType: model.ContentFoodPlan, Date: date}
	now := time.Now().UTC().Truncate(time.Second)

	// Miss before any write.
	if _, err := s.Records().Get(ctx, key); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get on empty store: err=%v", err)
	}

	// Put then Get returns the identical payload.
	rec := &model.ContentRecord{
		Key:         key,
		Payload:     json.RawMessage(`{"meals":["oats"]}`),
		GeneratedAt: now,
		Source:      model.SourceGenerated,
	}
	if err := s.Records().Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Records().Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after Put: %v", err)
	}
	if string(got.Payload) != string(rec.Payload) || got.Source != model.SourceGenerated {
		t.Fatalf("Get returned different record: %+v", got)
	}

	// Put is last-writer-wins for explicit regeneration.
	rec2 := &model.ContentRecord{Key: key, Payload: json.RawMessage(`{"meals":["rice"]}`), GeneratedAt: now, Source: model.SourceGenerated}
	if err := s.Records().Put(ctx, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	if got, err = s.Records().Get(ctx, key); err != nil || string(got.Payload) != string(rec2.Payload) {
		t.Fatalf("overwrite not visible: got=%+v err=%v", got, err)
	}

	// ListByDate sees records across content types.
	other := &model.ContentRecord{
		Key:         model.ContentKey{Scope: scope, ContentType: model.ContentPhysicsFact, Date: date},
		Payload:     json.RawMessage(`{"fact":"c is invariant"}`),
		GeneratedAt: now,
		Source:      model.SourceGenerated,
	}
	if err := s.Records().Put(ctx, other); err != nil {
		t.Fatalf("Put other type: %v", err)
	}
	lst, err := s.Records().ListByDate(ctx, scope, date)
	if err != nil || len(lst) != 2 {
		t.Fatalf("ListByDate: n=%d err=%v", len(lst), err)
	}

	// Flags: absent, set, present, idempotent set.
	if ok, err := s.Flags().Exists(ctx, scope, model.FlagWarmup, date); err != nil || ok {
		t.Fatalf("flag exists before set: ok=%v err=%v", ok, err)
	}
	fl := &model.GenerationFlag{Scope: scope, FlagType: model.FlagWarmup, Date: date, SetAt: now}
	if err := s.Flags().Set(ctx, fl); err != nil {
		t.Fatalf("flag set: %v", err)
	}
	if err := s.Flags().Set(ctx, fl); err != nil {
		t.Fatalf("flag re-set: %v", err)
	}
	if ok, err := s.Flags().Exists(ctx, scope, model.FlagWarmup, date); err != nil || !ok {
		t.Fatalf("flag exists after set: ok=%v err=%v", ok, err)
	}

	// Archives: terminal, first write wins.
	if _, err := s.Archives().Get(ctx, scope, date); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("archive get before put: err=%v", err)
	}
	ar := &model.ArchiveRecord{
		Scope:      scope,
		Date:       date,
		Snapshot:   map[model.ContentType]json.RawMessage{model.ContentFoodPlan: json.RawMessage(`{"meals":["rice"]}`)},
		ArchivedAt: now,
	}
	if err := s.Archives().Put(ctx, ar); err != nil {
		t.Fatalf("archive put: %v", err)
	}
	replay := &model.ArchiveRecord{Scope: scope, Date: date, Snapshot: map[model.ContentType]json.RawMessage{}, ArchivedAt: now.Add(time.Hour)}
	if err := s.Archives().Put(ctx, replay); err != nil {
		t.Fatalf("archive replay put: %v", err)
	}
	gotAr, err := s.Archives().Get(ctx, scope, date)
	if err != nil {
		t.Fatalf("archive get: %v", err)
	}
	if len(gotAr.Snapshot) != 1 {
		t.Fatalf("archive was overwritten by replay: %+v", gotAr)
	}

	// Health.
	if err := s.HealthPing(ctx); err != nil {
		t.Fatalf("HealthPing: %v", err)
	}
}
