// Package storage is the SQLite data source: a local copy of the four
// relations, created by embedded migrations and filled by CSV import.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ledgerview/internal/core"
	"ledgerview/internal/sources"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ sources.TableReader = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready", "path", dbPath, "version", version)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the connection, for readiness probes.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ReadTable returns every row of the named table with cells rendered as text.
func (s *SQLiteStore) ReadTable(ctx context.Context, name string) (sources.Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		return sources.Table{}, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return sources.Table{}, fmt.Errorf("columns %s: %w", name, err)
	}
	t := sources.Table{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return sources.Table{}, fmt.Errorf("scan %s: %w", name, err)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = core.CellString(v)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return sources.Table{}, fmt.Errorf("iterate %s: %w", name, err)
	}
	return t, nil
}

// Import replaces the content of the named table with t inside one
// transaction. The table is created when missing and columns absent from it
// are added as TEXT.
func (s *SQLiteStore) Import(ctx context.Context, name string, t sources.Table) (err error) {
	if len(t.Columns) == 0 {
		return fmt.Errorf("import %s: no columns", name)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = ensureTable(ctx, tx, name, t.Columns); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(name)); err != nil {
		return fmt.Errorf("clear %s: %w", name, err)
	}

	quoted := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		quoted[i] = quoteIdent(c)
		marks[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(quoted, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", name, err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	for _, r := range t.Rows {
		for i := range args {
			args[i] = nil
			if i < len(r) && r[i] != "" {
				args[i] = r[i]
			}
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s: %w", name, err)
		}
	}

	if _, err = tx.ExecContext(ctx, "INSERT INTO ledgerview_imports (table_name, row_count) VALUES (?, ?)", name, len(t.Rows)); err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Table imported into SQLite", "table", name, "rows", len(t.Rows))
	return nil
}

// ImportCount returns how many imports were recorded for a table.
func (s *SQLiteStore) ImportCount(ctx context.Context, name string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ledgerview_imports WHERE table_name = ?", name).Scan(&n)
	return n, err
}

func ensureTable(ctx context.Context, tx *sql.Tx, name string, columns []string) error {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c) + " TEXT"
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(name), strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	existing, err := tableColumns(ctx, tx, name)
	if err != nil {
		return err
	}
	for _, c := range columns {
		if _, ok := existing[strings.ToLower(c)]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT", quoteIdent(name), quoteIdent(c))); err != nil {
			return fmt.Errorf("add column %s.%s: %w", name, c, err)
		}
	}
	return nil
}

func tableColumns(ctx context.Context, tx *sql.Tx, name string) (map[string]struct{}, error) {
	rows, err := tx.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", name)
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", name, err)
	}
	defer rows.Close()
	out := map[string]struct{}{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out[strings.ToLower(c)] = struct{}{}
	}
	return out, rows.Err()
}

// quoteIdent quotes an SQL identifier, doubling embedded quotes.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
