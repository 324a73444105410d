// Package sqlite implements store.Store on a local SQLite file. It is the
// durable single-device tier sitting between the in-memory tier and the
// shared Postgres tier.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/dayboard/dayboard/internal/model"
	"github.com/dayboard/dayboard/internal/store"
)

type Store struct{ db *sql.DB }

// New opens (or creates) the database file at path and ensures the schema.
func New(path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB wires an existing connection (used by tests and the factory).
func NewWithDB(db *sql.DB) (*Store, error) {
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Name() string             { return "sqlite" }
func (s *Store) Records() store.Records   { return &records{db: s.db} }
func (s *Store) Flags() store.Flags       { return &flags{db: s.db} }
func (s *Store) Archives() store.Archives { return &archives{db: s.db} }

func (s *Store) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close releases the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

type records struct{ db *sql.DB }

func (r *records) Get(ctx context.Context, key model.ContentKey) (*model.ContentRecord, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT Payload, GeneratedAt, Source
        FROM ContentRecords WHERE Scope = ? AND ContentType = ? AND DateKey = ?`,
		key.Scope, string(key.ContentType), key.Date.String())
	var payload string
	rec := model.ContentRecord{Key: key}
	var source string
	if err := row.Scan(&payload, &rec.GeneratedAt, &source); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	rec.Payload = json.RawMessage(payload)
	rec.Source = model.RecordSource(source)
	return &rec, nil
}

func (r *records) Put(ctx context.Context, rec *model.ContentRecord) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO ContentRecords (Scope, ContentType, DateKey, Payload, GeneratedAt, Source)
        VALUES (?,?,?,?,?,?)
        ON CONFLICT(Scope, ContentType, DateKey) DO UPDATE SET
            Payload = excluded.Payload,
            GeneratedAt = excluded.GeneratedAt,
            Source = excluded.Source`,
		rec.Key.Scope, string(rec.Key.ContentType), rec.Key.Date.String(),
		string(rec.Payload), rec.GeneratedAt, string(rec.Source))
	return err
}

func (r *records) ListByDate(ctx context.Context, scope string, date model.Date) ([]*model.ContentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT ContentType, Payload, GeneratedAt, Source
        FROM ContentRecords WHERE Scope = ? AND DateKey = ?`,
		scope, date.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.ContentRecord
	for rows.Next() {
		var ct, payload, source string
		rec := model.ContentRecord{Key: model.ContentKey{Scope: scope, Date: date}}
		if err := rows.Scan(&ct, &payload, &rec.GeneratedAt, &source); err != nil {
			return nil, err
		}
		rec.Key.ContentType = model.ContentType(ct)
		rec.Payload = json.RawMessage(payload)
		rec.Source = model.RecordSource(source)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

type flags struct{ db *sql.DB }

func (f *flags) Set(ctx context.Context, fl *model.GenerationFlag) error {
	_, err := f.db.ExecContext(ctx, `
        INSERT INTO GenerationFlags (Scope, FlagType, DateKey, SetAt)
        VALUES (?,?,?,?)
        ON CONFLICT(Scope, FlagType, DateKey) DO NOTHING`,
		fl.Scope, fl.FlagType, fl.Date.String(), fl.SetAt)
	return err
}

func (f *flags) Exists(ctx context.Context, scope, flagType string, date model.Date) (bool, error) {
	var one int
	err := f.db.QueryRowContext(ctx, `
        SELECT 1 FROM GenerationFlags WHERE Scope = ? AND FlagType = ? AND DateKey = ?`,
		scope, flagType, date.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type archives struct{ db *sql.DB }

func (a *archives) Put(ctx context.Context, ar *model.ArchiveRecord) error {
	snapshot, err := json.Marshal(ar.Snapshot)
	if err != nil {
		return err
	}
	// Archives are terminal; an existing row wins.
	_, err = a.db.ExecContext(ctx, `
        INSERT INTO Archives (Scope, DateKey, Snapshot, ArchivedAt)
        VALUES (?,?,?,?)
        ON CONFLICT(Scope, DateKey) DO NOTHING`,
		ar.Scope, ar.Date.String(), string(snapshot), ar.ArchivedAt)
	return err
}

func (a *archives) Get(ctx context.Context, scope string, date model.Date) (*model.ArchiveRecord, error) {
	row := a.db.QueryRowContext(ctx, `
        SELECT Snapshot, ArchivedAt FROM Archives WHERE Scope = ? AND DateKey = ?`,
		scope, date.String())
	var snapshot string
	out := model.ArchiveRecord{Scope: scope, Date: date}
	if err := row.Scan(&snapshot, &out.ArchivedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(snapshot), &out.Snapshot); err != nil {
		return nil, model.ErrMalformedRecord
	}
	return &out, nil
}
