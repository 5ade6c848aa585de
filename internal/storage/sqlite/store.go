// Package sqlite stores alias tables in a SQLite database using the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"champhelper/internal/resolve"
	"champhelper/internal/storage"
)

// tableName is the SQL table holding one row per logical name.
const tableName = "alias_tables"

// Store implements storage.TableStore for SQLite.
//
// SQLite has no native timestamp type, so updated_at is stored as an
// RFC3339Nano string.
type Store struct {
	db   *sql.DB
	name string
}

func init() {
	storage.Register("sqlite", New)
}

// New opens the database at cfg.DSN and creates the table if needed.
func New(ctx context.Context, cfg storage.Config) (storage.TableStore, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, buildCreateSQL(tableName)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table %s: %w", tableName, err)
	}
	return &Store{db: db, name: cfg.NameOrDefault()}, nil
}

// Close implements storage.TableStore.
func (s *Store) Close() error { return s.db.Close() }

// Load implements storage.TableStore.
func (s *Store) Load(ctx context.Context, version string) (*resolve.AliasTable, error) {
	var stored any
	var payload []byte
	err := s.db.QueryRowContext(ctx, buildSelectSQL(tableName), s.name).Scan(&stored, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load %s: %w", s.name, err)
	}
	return storage.Match(stored, version, payload)
}

// Save implements storage.TableStore.
func (s *Store) Save(ctx context.Context, version string, t *resolve.AliasTable) error {
	payload, err := storage.EncodeTable(t)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, buildUpsertSQL(tableName), s.name, version, string(payload), now); err != nil {
		return fmt.Errorf("sqlite: save %s: %w", s.name, err)
	}
	return nil
}

func sqlIdent(id string) string {
	// SQLite supports "quoted identifiers"
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func buildCreateSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	"name" TEXT PRIMARY KEY,
	"version" TEXT NOT NULL,
	"payload" TEXT NOT NULL,
	"updated_at" TEXT NOT NULL
)`, sqlIdent(table))
}

func buildSelectSQL(table string) string {
	return fmt.Sprintf(`SELECT "version", "payload" FROM %s WHERE "name" = ?`, sqlIdent(table))
}

// buildUpsertSQL uses INSERT ... ON CONFLICT, available since SQLite 3.24.
func buildUpsertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s ("name", "version", "payload", "updated_at") VALUES (?, ?, ?, ?)
ON CONFLICT("name") DO UPDATE SET "version" = excluded."version", "payload" = excluded."payload", "updated_at" = excluded."updated_at"`,
		sqlIdent(table))
}
