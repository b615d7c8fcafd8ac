package storage

import (
	"context"
	"path/filepath"
	"testing"

	"ledgerview/internal/sources"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsCreateDefaultTables(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"GrandLivre", "bilan", "CompteDeResultat", "PlanComptable"} {
		tbl, err := s.ReadTable(ctx, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(tbl.Columns) == 0 || len(tbl.Rows) != 0 {
			t.Fatalf("%s: expected empty table with columns, got %+v", name, tbl)
		}
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil || v1 != v2 || v2 != 2 {
		t.Fatalf("expected stable version 2, got %d then %d (%v)", v1, v2, err)
	}
}

func TestImportReplacesContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ledger := sources.Table{
		Columns: []string{"compte", "date", "debit", "credit", "texte"},
		Rows: [][]string{
			{"1000", "2025-01-01", "100", "", "Opening"},
			{"1020", "2025-01-02", "", "30", `Quote "x"`},
		},
	}
	if err := s.Import(ctx, "GrandLivre", ledger); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := s.Import(ctx, "GrandLivre", ledger); err != nil {
		t.Fatalf("second import: %v", err)
	}

	tbl, err := s.ReadTable(ctx, "GrandLivre")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("import must replace rows, got %d", len(tbl.Rows))
	}
	if tbl.Rows[1][4] != `Quote "x"` || tbl.Rows[0][3] != "" {
		t.Fatalf("unexpected rows: %q", tbl.Rows)
	}
	if n, err := s.ImportCount(ctx, "GrandLivre"); err != nil || n != 2 {
		t.Fatalf("expected 2 recorded imports, got %d (%v)", n, err)
	}
}

func TestImportAddsYearColumns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	err := s.Import(ctx, "bilan", sources.Table{
		Columns: []string{"Account Number", "Account Name", "2024", "2025"},
		Rows:    [][]string{{"1000", "Cash", "10", "20"}},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	st, err := sources.FromTables(s, sources.DefaultSchema()).BalanceSheet(ctx)
	if err != nil {
		t.Fatalf("balance sheet: %v", err)
	}
	if !st.HasColumn("2024") || st.Rows[0].Value("2024") != "10" || st.Rows[0].Value("2025") != "20" {
		t.Fatalf("unexpected statement: %+v", st)
	}
}

func TestImportCreatesCustomTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.Import(ctx, `odd "name"`, sources.Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}}); err != nil {
		t.Fatalf("import: %v", err)
	}
	tbl, err := s.ReadTable(ctx, `odd "name"`)
	if err != nil || len(tbl.Rows) != 1 || tbl.Rows[0][0] != "1" {
		t.Fatalf("unexpected table: %+v %v", tbl, err)
	}
}

func TestReadTableMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ReadTable(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for missing table")
	}
}
