// Package postgres stores alias tables in Postgres through a pgx connection
// pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"champhelper/internal/resolve"
	"champhelper/internal/storage"
)

// DefaultTable is the SQL table holding one row per logical name.
const DefaultTable = "public.champ_alias_tables"

func init() {
	storage.Register("postgres", New)
}

// conn is the subset of *pgxpool.Pool the store uses.
type conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store implements storage.TableStore for Postgres.
//
// The payload column is text rather than jsonb: jsonb reorders object keys
// and table order is part of the stored value.
type Store struct {
	pool  conn
	table string
	name  string
	now   func() time.Time
}

// New creates a pool for cfg.DSN and ensures the table exists.
func New(ctx context.Context, cfg storage.Config) (storage.TableStore, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	s, err := newStore(ctx, pool, DefaultTable, cfg.NameOrDefault())
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func newStore(ctx context.Context, c conn, table, name string) (*Store, error) {
	s := &Store{pool: c, table: table, name: name, now: time.Now}
	if schemaSQL := buildSchemaSQL(table); schemaSQL != "" {
		if _, err := c.Exec(ctx, schemaSQL); err != nil {
			return nil, fmt.Errorf("postgres: create schema: %w", err)
		}
	}
	if _, err := c.Exec(ctx, buildCreateSQL(table)); err != nil {
		return nil, fmt.Errorf("postgres: create table %s: %w", table, err)
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Load implements storage.TableStore.
func (s *Store) Load(ctx context.Context, version string) (*resolve.AliasTable, error) {
	var stored, payload string
	err := s.pool.QueryRow(ctx, buildSelectSQL(s.table), s.name).Scan(&stored, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: load %s: %w", s.name, err)
	}
	return storage.Match(stored, version, []byte(payload))
}

// Save implements storage.TableStore.
func (s *Store) Save(ctx context.Context, version string, t *resolve.AliasTable) error {
	payload, err := storage.EncodeTable(t)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, buildUpsertSQL(s.table), s.name, version, string(payload), s.now().UTC()); err != nil {
		return fmt.Errorf("postgres: save %s: %w", s.name, err)
	}
	return nil
}

// pgIdent quotes a single identifier.
func pgIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// pgQualified quotes a possibly schema-qualified name ("public.t").
func pgQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// buildSchemaSQL returns CREATE SCHEMA for a schema-qualified table, or ""
// for an unqualified one.
func buildSchemaSQL(table string) string {
	schema, _, ok := strings.Cut(table, ".")
	if !ok || schema == "" {
		return ""
	}
	return "CREATE SCHEMA IF NOT EXISTS " + pgIdent(schema)
}

func buildCreateSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name text PRIMARY KEY,
	version text NOT NULL,
	payload text NOT NULL,
	updated_at timestamptz NOT NULL
)`, pgQualified(table))
}

func buildSelectSQL(table string) string {
	return fmt.Sprintf(`SELECT version, payload FROM %s WHERE name = $1`, pgQualified(table))
}

func buildUpsertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (name, version, payload, updated_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (name) DO UPDATE SET version = EXCLUDED.version, payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		pgQualified(table))
}
