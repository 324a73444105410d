// Package postgres implements store.Store on PostgreSQL via the pgx stdlib
// driver. It is the shared, authoritative tier: cross-device reads fall back
// to it, and the archival sweep writes its terminal records here.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dayboard/dayboard/internal/model"
	"github.com/dayboard/dayboard/internal/store"
	"github.com/dayboard/dayboard/internal/store/postgres/migrations"
)

// Open opens a PostgreSQL connection and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

type Store struct{ db *sql.DB }

func (s *Store) Name() string             { return "postgres" }
func (s *Store) Records() store.Records   { return &records{db: s.db} }
func (s *Store) Flags() store.Flags       { return &flags{db: s.db} }
func (s *Store) Archives() store.Archives { return &archives{db: s.db} }

func (s *Store) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

type records struct{ db *sql.DB }

func (r *records) Get(ctx context.Context, key model.ContentKey) (*model.ContentRecord, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT payload, generated_at, source
        FROM content_records WHERE scope=$1 AND content_type=$2 AND date_key=$3`,
		key.Scope, string(key.ContentType), key.Date.String())
	var payload []byte
	rec := model.ContentRecord{Key: key}
	var source string
	if err := row.Scan(&payload, &rec.GeneratedAt, &source); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	rec.Payload = payload
	rec.Source = model.RecordSource(source)
	return &rec, nil
}

func (r *records) Put(ctx context.Context, rec *model.ContentRecord) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO content_records (scope, content_type, date_key, payload, generated_at, source)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (scope, content_type, date_key) DO UPDATE SET
            payload = EXCLUDED.payload,
            generated_at = EXCLUDED.generated_at,
            source = EXCLUDED.source`,
		rec.Key.Scope, string(rec.Key.ContentType), rec.Key.Date.String(),
		[]byte(rec.Payload), rec.GeneratedAt, string(rec.Source))
	return err
}

func (r *records) ListByDate(ctx context.Context, scope string, date model.Date) ([]*model.ContentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT content_type, payload, generated_at, source
        FROM content_records WHERE scope=$1 AND date_key=$2`,
		scope, date.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.ContentRecord
	for rows.Next() {
		var ct, source string
		var payload []byte
		rec := model.ContentRecord{Key: model.ContentKey{Scope: scope, Date: date}}
		if err := rows.Scan(&ct, &payload, &rec.GeneratedAt, &source); err != nil {
			return nil, err
		}
		rec.Key.ContentType = model.ContentType(ct)
		rec.Payload = payload
		rec.Source = model.RecordSource(source)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

type flags struct{ db *sql.DB }

func (f *flags) Set(ctx context.Context, fl *model.GenerationFlag) error {
	_, err := f.db.ExecContext(ctx, `
        INSERT INTO generation_flags (scope, flag_type, date_key, set_at)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (scope, flag_type, date_key) DO NOTHING`,
		fl.Scope, fl.FlagType, fl.Date.String(), fl.SetAt)
	return err
}

func (f *flags) Exists(ctx context.Context, scope, flagType string, date model.Date) (bool, error) {
	var one int
	err := f.db.QueryRowContext(ctx, `
        SELECT 1 FROM generation_flags WHERE scope=$1 AND flag_type=$2 AND date_key=$3`,
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
	// Terminal record: first write wins, replays are no-ops.
	_, err = a.db.ExecContext(ctx, `
        INSERT INTO archives (scope, date_key, snapshot, archived_at)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (scope, date_key) DO NOTHING`,
		ar.Scope, ar.Date.String(), snapshot, ar.ArchivedAt)
	return err
}

func (a *archives) Get(ctx context.Context, scope string, date model.Date) (*model.ArchiveRecord, error) {
	row := a.db.QueryRowContext(ctx, `
        SELECT snapshot, archived_at FROM archives WHERE scope=$1 AND date_key=$2`,
		scope, date.String())
	var snapshot []byte
	out := model.ArchiveRecord{Scope: scope, Date: date}
	if err := row.Scan(&snapshot, &out.ArchivedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &out.Snapshot); err != nil {
		return nil, model.ErrMalformedRecord
	}
	return &out, nil
}
