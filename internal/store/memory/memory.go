// Package memory implements store.Store with in-process maps. It serves as
// the fastest cache tier for a single device and as the store double in
// tests. Safe for interleaved use via a single mutex.
package memory

import (
	"context"
	"sync"

	"github.com/dayboard/dayboard/internal/model"
	"github.com/dayboard/dayboard/internal/store"
)

type Store struct {
	mu       sync.Mutex
	records  map[string]model.ContentRecord
	flags    map[string]model.GenerationFlag
	archives map[string]model.ArchiveRecord
}

func New() *Store {
	return &Store{
		records:  make(map[string]model.ContentRecord),
		flags:    make(map[string]model.GenerationFlag),
		archives: make(map[string]model.ArchiveRecord),
	}
}

func (s *Store) Name() string                       { return "memory" }
func (s *Store) Records() store.Records             { return (*records)(s) }
func (s *Store) Flags() store.Flags                 { return (*flags)(s) }
func (s *Store) Archives() store.Archives           { return (*archives)(s) }
func (s *Store) HealthPing(_ context.Context) error { return nil }

func flagKey(scope, flagType string, date model.Date) string {
	return scope + "/" + flagType + "/" + date.String()
}

func archiveKey(scope string, date model.Date) string {
	return scope + "/" + date.String()
}

type records Store

func (r *records) Get(_ context.Context, key model.ContentKey) (*model.ContentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key.String()]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := rec
	return &out, nil
}

func (r *records) Put(_ context.Context, rec *model.ContentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Key.String()] = *rec
	return nil
}

func (r *records) ListByDate(_ context.Context, scope string, date model.Date) ([]*model.ContentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ContentRecord
	for _, rec := range r.records {
		if rec.Key.Scope == scope && rec.Key.Date == date {
			cp := rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

type flags Store

func (f *flags) Set(_ context.Context, fl *model.GenerationFlag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[flagKey(fl.Scope, fl.FlagType, fl.Date)] = *fl
	return nil
}

func (f *flags) Exists(_ context.Context, scope, flagType string, date model.Date) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.flags[flagKey(scope, flagType, date)]
	return ok, nil
}

type archives Store

func (a *archives) Put(_ context.Context, ar *model.ArchiveRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := archiveKey(ar.Scope, ar.Date)
	if _, exists := a.archives[k]; exists {
		return nil
	}
	a.archives[k] = *ar
	return nil
}

func (a *archives) Get(_ context.Context, scope string, date model.Date) (*model.ArchiveRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ar, ok := a.archives[archiveKey(scope, date)]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := ar
	return &out, nil
}
