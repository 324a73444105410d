package store

import (
	"context"

	"github.com/dayboard/dayboard/internal/model"
)

// Store exposes the persistence operations one cache tier provides.
// Implementations live under internal/store/<driver>/ (memory, sqlite,
// postgres). Records are append-mostly: written at most once per key under
// normal operation, which is what makes last-writer-wins safe.
type Store interface {
	// Name identifies the tier in logs ("memory", "sqlite", "postgres").
	Name() string
	Records() Records
	Flags() Flags
	Archives() Archives
	HealthPing(ctx context.Context) error
}

type Records interface {
	// Get returns model.ErrNotFound when no record exists for key.
	Get(ctx context.Context, key model.ContentKey) (*model.ContentRecord, error)
	// Put upserts, last-writer-wins. Used both for fresh generation and for
	// cache promotion; payloads for the same key are identical in content.
	Put(ctx context.Context, rec *model.ContentRecord) error
	// ListByDate returns every content type's record for (scope, date).
	ListByDate(ctx context.Context, scope string, date model.Date) ([]*model.ContentRecord, error)
}

type Flags interface {
	Set(ctx context.Context, f *model.GenerationFlag) error
	Exists(ctx context.Context, scope, flagType string, date model.Date) (bool, error)
}

type Archives interface {
	// Put is a no-op when an archive already exists for (scope, date);
	// archives are terminal.
	Put(ctx context.Context, a *model.ArchiveRecord) error
	// Get returns model.ErrNotFound when the date has not been archived.
	Get(ctx context.Context, scope string, date model.Date) (*model.ArchiveRecord, error)
}
