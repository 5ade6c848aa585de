package mssql

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"champhelper/internal/resolve"
	"champhelper/internal/storage"
)

type fakeDB struct {
	execs []string
	row   []string // version, payload; nil means no row
}

type fakeRow struct {
	vals []string
}

func (r fakeRow) Scan(dest ...any) error {
	if r.vals == nil {
		return sql.ErrNoRows
	}
	for i, d := range dest {
		*(d.(*string)) = r.vals[i]
	}
	return nil
}

func (f *fakeDB) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.execs = append(f.execs, query)
	if strings.HasPrefix(query, "MERGE") {
		f.row = []string{args[1].(string), args[2].(string)}
	}
	return nil, nil
}

func (f *fakeDB) QueryRowContext(context.Context, string, ...any) rowScanner {
	return fakeRow{vals: f.row}
}

func (f *fakeDB) Close() error { return nil }

func TestStore_WithFakeDB(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := &fakeDB{}
	s, err := newStore(ctx, db, DefaultTable, storage.DefaultName)
	if err != nil {
		t.Fatalf("newStore: %v", err)
	}
	if len(db.execs) != 1 || !strings.HasPrefix(db.execs[0], "IF OBJECT_ID(N'dbo.champ_alias_tables', N'U') IS NULL") {
		t.Fatalf("unexpected DDL: %q", db.execs)
	}

	if _, err := s.Load(ctx, "15.9.1"); err != storage.ErrCacheMiss {
		t.Fatalf("Load empty: err=%v, want ErrCacheMiss", err)
	}

	table := resolve.TableOf([]resolve.AliasEntry{{Slug: "ahri", Name: "Ahri", Aliases: []string{"Fox"}}})
	if err := s.Save(ctx, "15.9.1", table); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, "15.9.1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("Len=%d", got.Len())
	}
	if _, err := s.Load(ctx, "15.10.1"); err != storage.ErrCacheMiss {
		t.Fatalf("Load other version: err=%v, want ErrCacheMiss", err)
	}
}

func TestBuildSQL(t *testing.T) {
	t.Parallel()

	if got := mssqlTableIdent("dbo.weird]name"); got != "[dbo].[weird]]name]" {
		t.Fatalf("mssqlTableIdent=%s", got)
	}
	merge := buildMergeSQL(DefaultTable)
	for _, want := range []string{"MERGE [dbo].[champ_alias_tables] WITH (HOLDLOCK)", "@p4", "WHEN NOT MATCHED THEN INSERT"} {
		if !strings.Contains(merge, want) {
			t.Fatalf("merge sql missing %q: %s", want, merge)
		}
	}
	if !strings.HasSuffix(merge, ";") {
		t.Fatalf("MERGE must be terminated: %s", merge)
	}
	if got := buildSelectSQL("t"); got != "SELECT [version], [payload] FROM [t] WHERE [name] = @p1" {
		t.Fatalf("select sql: %s", got)
	}
}
