package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"ledgerview/internal/core"
	"ledgerview/internal/export"
	"ledgerview/internal/ledger"
	"ledgerview/internal/report"
	"ledgerview/internal/storage"
)

func TestFilterFlags(t *testing.T) {
	ff := filterFlags{category: " cash ", accounts: "1000, 1020,,", from: "2025-01-01"}
	f, err := ff.filter()
	if err != nil {
		t.Fatalf("filter() error = %v", err)
	}
	if f.Category != "cash" || len(f.Accounts) != 2 || f.Accounts[1] != "1020" {
		t.Fatalf("unexpected filter %+v", f)
	}
	if f.Range.Start != core.NewDate(2025, 1, 1) || f.Range.End.Valid() {
		t.Fatalf("unexpected range %+v", f.Range)
	}

	for _, bad := range []filterFlags{{from: "01.01.2025"}, {to: "2025-13-01"}} {
		if _, err := bad.filter(); err == nil {
			t.Errorf("expected error for %+v", bad)
		}
	}
}

func TestAccountsMarkdown(t *testing.T) {
	found := []core.Account{
		{Number: "2000", Name: "Payables"},
		{Number: "1000", Name: "Cash | petty"},
	}
	md := accountsMarkdown(found, 5)
	for _, want := range []string{"2 of 5 accounts", "## 1 Assets", "## 2 Liabilities", `| 1000 | Cash \| petty |`} {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in:\n%s", want, md)
		}
	}
	if strings.Index(md, "Assets") > strings.Index(md, "Liabilities") {
		t.Error("classes should be listed in class order")
	}
}

func TestRatiosMarkdown(t *testing.T) {
	ratios := []report.Ratio{{Name: "Current ratio", Value: decimal.RequireFromString("2.5"), Unit: "x", Status: report.StatusGood}}
	md := ratiosMarkdown("2025", "USD", decimal.RequireFromString("-400"), ratios)
	for _, want := range []string{"# Financial ratios 2025", "| Current ratio | 2.50x | good |"} {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in:\n%s", want, md)
		}
	}
	if md := ratiosMarkdown("2025", "USD", decimal.Zero, nil); !strings.Contains(md, "Not enough data") {
		t.Errorf("expected empty message, got:\n%s", md)
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	f := ledger.Filter{Category: "cash", Range: ledger.DateRange{Start: core.NewDate(2025, 1, 1)}}
	if got, want := outputPath(dir, f), filepath.Join(dir, "ledger_cash_2025-01-01_to_open.csv"); got != want {
		t.Errorf("outputPath(dir) = %q, want %q", got, want)
	}
	file := filepath.Join(dir, "out.csv")
	if got := outputPath(file, f); got != file {
		t.Errorf("outputPath(file) = %q, want %q", got, file)
	}
}

func TestWriteExportFile(t *testing.T) {
	tables := core.Tables{Ledger: []core.LedgerRow{
		{Account: "1000", Date: "2025-01-01", Debit: "100", Narrative: "Opening"},
		{Account: "1000", Date: "2025-01-05", Credit: "40", Narrative: "Supplier"},
	}}
	view := ledger.Run(tables, ledger.Filter{Accounts: []string{"1000"}}).View
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := writeExportFile(path, view); err != nil {
		t.Fatalf("writeExportFile() error = %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(string(raw)), "\n"); len(lines) != 3 {
		t.Fatalf("got %d CSV lines, want 3:\n%s", len(lines), raw)
	}
}

func TestWriteExportFileRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	err := writeExportFile(path, ledger.View{})
	if !errors.Is(err, export.ErrNoData) {
		t.Fatalf("writeExportFile() error = %v, want ErrNoData", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file after a failed export, stat error = %v", err)
	}
}

func TestImportDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("GrandLivre.csv", "compte;date;debit;credit;texte\n1000;2025-01-01;100;;Opening\n1000;2025-01-05;;40;Supplier\n")
	write("PlanComptable.csv", "Numéro de compte,Nom de compte\n1000,Cash\n")

	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	n, err := importDir(context.Background(), dir, dbPath)
	if err != nil {
		t.Fatalf("importDir() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d tables, want 2", n)
	}

	db, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	tbl, err := db.ReadTable(context.Background(), "GrandLivre")
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(tbl.Rows))
	}
	if count, err := db.ImportCount(context.Background(), "PlanComptable"); err != nil || count != 1 {
		t.Fatalf("ImportCount() = %d, %v", count, err)
	}

	if _, err := importDir(context.Background(), t.TempDir(), dbPath); err == nil {
		t.Fatal("expected error for a directory without CSV files")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "b", "c"); got != "b" {
		t.Errorf("firstNonEmpty() = %q, want b", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Errorf("firstNonEmpty() = %q, want empty", got)
	}
}
