package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) the local SQLite database at path and enables WAL
// journal mode for read-heavy workloads.
func Open(path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ensureSchema creates the tier's tables if they do not exist.
func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ContentRecords (
            Scope TEXT NOT NULL,
            ContentType TEXT NOT NULL,
            DateKey TEXT NOT NULL,
            Payload TEXT NOT NULL,
            GeneratedAt TIMESTAMP NOT NULL,
            Source TEXT NOT NULL,
            PRIMARY KEY(Scope, ContentType, DateKey)
        );`,
		`CREATE TABLE IF NOT EXISTS GenerationFlags (
            Scope TEXT NOT NULL,
            FlagType TEXT NOT NULL,
            DateKey TEXT NOT NULL,
            SetAt TIMESTAMP NOT NULL,
            PRIMARY KEY(Scope, FlagType, DateKey)
        );`,
		`CREATE TABLE IF NOT EXISTS Archives (
            Scope TEXT NOT NULL,
            DateKey TEXT NOT NULL,
            Snapshot TEXT NOT NULL,
            ArchivedAt TIMESTAMP NOT NULL,
            PRIMARY KEY(Scope, DateKey)
        );`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
