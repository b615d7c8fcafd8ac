// Package sources defines the read ports of the dashboard and the mapping
// from raw tabular results to domain rows.
package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledgerview/internal/core"
)

// ErrMissingColumn is returned when a result set lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Ports for data sources.
type (
	LedgerReader interface {
		GeneralLedger(ctx context.Context) ([]core.LedgerRow, error)
	}

	StatementReader interface {
		BalanceSheet(ctx context.Context) (core.Statement, error)
		IncomeStatement(ctx context.Context) (core.Statement, error)
	}

	AccountReader interface {
		Accounts(ctx context.Context) ([]core.Account, error)
	}

	// Source is the union of the four read queries.
	Source interface {
		LedgerReader
		StatementReader
		AccountReader
	}

	// TableReader returns every row of a named relation as text cells.
	TableReader interface {
		ReadTable(ctx context.Context, name string) (Table, error)
	}
)

// Table is a raw result set. Every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of column, matched case-insensitively after
// trimming, or -1.
func (t Table) Index(column string) int {
	want := strings.TrimSpace(column)
	for i, c := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(c), want) {
			return i
		}
	}
	return -1
}

func (t Table) cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// Schema names the relations and columns read from a source.
type Schema struct {
	LedgerTable    string
	BalanceTable   string
	IncomeTable    string
	AccountsTable  string
	LedgerAccount  string
	LedgerDate     string
	LedgerDebit    string
	LedgerCredit   string
	LedgerText     string
	AccountNumber  string
	AccountName    string
	StatementNum   string
	StatementLabel string
}

// DefaultSchema matches the accounting export the dashboard was built for.
func DefaultSchema() Schema {
	return Schema{
		LedgerTable:    "GrandLivre",
		BalanceTable:   "bilan",
		IncomeTable:    "CompteDeResultat",
		AccountsTable:  "PlanComptable",
		LedgerAccount:  "compte",
		LedgerDate:     "date",
		LedgerDebit:    "debit",
		LedgerCredit:   "credit",
		LedgerText:     "texte",
		AccountNumber:  "Numéro de compte",
		AccountName:    "Nom de compte",
		StatementNum:   "Account Number",
		StatementLabel: "Account Name",
	}
}

func require(t Table, table string, columns ...string) ([]int, error) {
	idx := make([]int, len(columns))
	var errs []error
	for i, c := range columns {
		idx[i] = t.Index(c)
		if idx[i] < 0 {
			errs = append(errs, fmt.Errorf("%s.%s: %w", table, c, ErrMissingColumn))
		}
	}
	return idx, errors.Join(errs...)
}

// LedgerRows maps a general-ledger result set. The narrative column is optional.
func (s Schema) LedgerRows(t Table) ([]core.LedgerRow, error) {
	idx, err := require(t, s.LedgerTable, s.LedgerAccount, s.LedgerDate, s.LedgerDebit, s.LedgerCredit)
	if err != nil {
		return nil, err
	}
	text := t.Index(s.LedgerText)
	out := make([]core.LedgerRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, core.LedgerRow{
			Account:   t.cell(r, idx[0]),
			Date:      t.cell(r, idx[1]),
			Debit:     t.cell(r, idx[2]),
			Credit:    t.cell(r, idx[3]),
			Narrative: t.cell(r, text),
		})
	}
	return out, nil
}

// Accounts maps a chart-of-accounts result set.
func (s Schema) Accounts(t Table) ([]core.Account, error) {
	idx, err := require(t, s.AccountsTable, s.AccountNumber, s.AccountName)
	if err != nil {
		return nil, err
	}
	out := make([]core.Account, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, core.Account{Number: t.cell(r, idx[0]), Name: t.cell(r, idx[1])})
	}
	return out, nil
}

// Statement maps a balance-sheet or income-statement result set. Every
// column other than number and name is kept as a value column.
func (s Schema) Statement(table string, t Table) (core.Statement, error) {
	idx, err := require(t, table, s.StatementNum, s.StatementLabel)
	if err != nil {
		return core.Statement{}, err
	}
	var st core.Statement
	var valueCols []int
	for i, c := range t.Columns {
		if i == idx[0] || i == idx[1] {
			continue
		}
		st.Columns = append(st.Columns, c)
		valueCols = append(valueCols, i)
	}
	for _, r := range t.Rows {
		row := core.StatementRow{
			AccountNumber: t.cell(r, idx[0]),
			AccountName:   t.cell(r, idx[1]),
			Values:        make(map[string]string, len(valueCols)),
		}
		for _, i := range valueCols {
			row.Values[t.Columns[i]] = t.cell(r, i)
		}
		st.Rows = append(st.Rows, row)
	}
	return st, nil
}

// FromTables adapts a TableReader into a Source using schema.
func FromTables(r TableReader, schema Schema) Source {
	return &tableSource{r: r, schema: schema}
}

type tableSource struct {
	r      TableReader
	schema Schema
}

func (s *tableSource) read(ctx context.Context, name string) (Table, error) {
	t, err := s.r.ReadTable(ctx, name)
	if err != nil {
		return Table{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return t, nil
}

func (s *tableSource) GeneralLedger(ctx context.Context) ([]core.LedgerRow, error) {
	t, err := s.read(ctx, s.schema.LedgerTable)
	if err != nil {
		return nil, err
	}
	return s.schema.LedgerRows(t)
}

func (s *tableSource) BalanceSheet(ctx context.Context) (core.Statement, error) {
	t, err := s.read(ctx, s.schema.BalanceTable)
	if err != nil {
		return core.Statement{}, err
	}
	return s.schema.Statement(s.schema.BalanceTable, t)
}

func (s *tableSource) IncomeStatement(ctx context.Context) (core.Statement, error) {
	t, err := s.read(ctx, s.schema.IncomeTable)
	if err != nil {
		return core.Statement{}, err
	}
	return s.schema.Statement(s.schema.IncomeTable, t)
}

func (s *tableSource) Accounts(ctx context.Context) ([]core.Account, error) {
	t, err := s.read(ctx, s.schema.AccountsTable)
	if err != nil {
		return nil, err
	}
	return s.schema.Accounts(t)
}
