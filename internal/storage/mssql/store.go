// Package mssql stores alias tables in Microsoft SQL Server.
//
// This package does not import a driver. The "sqlserver" database/sql driver
// must be registered elsewhere; storage/all does so.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"champhelper/internal/resolve"
	"champhelper/internal/storage"
)

// DefaultTable is the SQL table holding one row per logical name.
const DefaultTable = "dbo.champ_alias_tables"

func init() {
	storage.Register("mssql", New)
}

// Store implements storage.TableStore for SQL Server.
type Store struct {
	db    dbConn
	table string
	name  string
	now   func() time.Time
}

// New opens cfg.DSN with the "sqlserver" driver, validates connectivity and
// ensures the table exists.
func New(ctx context.Context, cfg storage.Config) (storage.TableStore, error) {
	raw, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := raw.PingContext(ctx); err != nil {
		_ = raw.Close()
		return nil, err
	}
	s, err := newStore(ctx, &sqlDB{db: raw}, DefaultTable, cfg.NameOrDefault())
	if err != nil {
		_ = raw.Close()
		return nil, err
	}
	return s, nil
}

func newStore(ctx context.Context, db dbConn, table, name string) (*Store, error) {
	if _, err := db.ExecContext(ctx, buildCreateSQL(table)); err != nil {
		return nil, fmt.Errorf("mssql: create table %s: %w", table, err)
	}
	return &Store{db: db, table: table, name: name, now: time.Now}, nil
}

// Close releases database resources held by this store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load implements storage.TableStore.
func (s *Store) Load(ctx context.Context, version string) (*resolve.AliasTable, error) {
	var stored, payload string
	err := s.db.QueryRowContext(ctx, buildSelectSQL(s.table), s.name).Scan(&stored, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("mssql: load %s: %w", s.name, err)
	}
	return storage.Match(stored, version, []byte(payload))
}

// Save implements storage.TableStore with a single MERGE statement.
func (s *Store) Save(ctx context.Context, version string, t *resolve.AliasTable) error {
	payload, err := storage.EncodeTable(t)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, buildMergeSQL(s.table), s.name, version, string(payload), s.now().UTC()); err != nil {
		return fmt.Errorf("mssql: save %s: %w", s.name, err)
	}
	return nil
}

// buildCreateSQL wraps CREATE TABLE in an OBJECT_ID guard, since SQL Server
// has no CREATE TABLE IF NOT EXISTS.
func buildCreateSQL(table string) string {
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL BEGIN CREATE TABLE %s ("+
			"[name] NVARCHAR(200) NOT NULL PRIMARY KEY, "+
			"[version] NVARCHAR(64) NOT NULL, "+
			"[payload] NVARCHAR(MAX) NOT NULL, "+
			"[updated_at] DATETIME2 NOT NULL); END;",
		strings.ReplaceAll(table, "'", "''"),
		mssqlTableIdent(table),
	)
}

func buildSelectSQL(table string) string {
	return fmt.Sprintf("SELECT [version], [payload] FROM %s WHERE [name] = @p1", mssqlTableIdent(table))
}

// buildMergeSQL upserts one row. HOLDLOCK serializes concurrent writers for
// the same name.
func buildMergeSQL(table string) string {
	return fmt.Sprintf(
		"MERGE %s WITH (HOLDLOCK) AS t "+
			"USING (SELECT @p1 AS [name], @p2 AS [version], @p3 AS [payload], @p4 AS [updated_at]) AS s "+
			"ON t.[name] = s.[name] "+
			"WHEN MATCHED THEN UPDATE SET t.[version] = s.[version], t.[payload] = s.[payload], t.[updated_at] = s.[updated_at] "+
			"WHEN NOT MATCHED THEN INSERT ([name], [version], [payload], [updated_at]) "+
			"VALUES (s.[name], s.[version], s.[payload], s.[updated_at]);",
		mssqlTableIdent(table),
	)
}

// mssqlIdent returns a bracket-quoted identifier, escaping ']' as ']]'.
func mssqlIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// mssqlTableIdent returns a bracket-quoted identifier for schema-qualified names.
//
// Example:
//
//	"dbo.imports" -> [dbo].[imports]
func mssqlTableIdent(name string) string {
	parts := strings.Split(name, ".")
	for i := range parts {
		parts[i] = mssqlIdent(strings.TrimSpace(parts[i]))
	}
	return strings.Join(parts, ".")
}

// dbConn is a small interface over *sql.DB used for testability.
type dbConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) rowScanner
	Close() error
}

// rowScanner is a narrow adapter over *sql.Row.Scan.
type rowScanner interface {
	Scan(dest ...any) error
}

// sqlDB wraps *sql.DB to implement dbConn.
type sqlDB struct {
	db *sql.DB
}

func (s *sqlDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

func (s *sqlDB) QueryRowContext(ctx context.Context, query string, args ...any) rowScanner {
	return s.db.QueryRowContext(ctx, query, args...)
}

func (s *sqlDB) Close() error { return s.db.Close() }
