// Package export writes the filtered ledger view as a CSV download.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"ledgerview/internal/core"
	"ledgerview/internal/ledger"
	"ledgerview/internal/report"
)

// ErrNoData is returned when the view to export has no entries.
var ErrNoData = errors.New("no data")

// Header is the fixed column layout of an export.
var Header = []string{"date", "account_id", "account_name", "narrative", "debit", "credit", "running_balance"}

// WriteCSV writes the header and one line per entry of v.
func WriteCSV(w io.Writer, v ledger.View) error {
	if v.Empty() {
		return ErrNoData
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range report.Details(v) {
		rec := []string{
			r.Date,
			r.AccountID,
			r.AccountName,
			r.Narrative,
			r.Debit.String(),
			r.Credit.String(),
			r.Balance.String(),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses an export back into detail rows.
func ReadCSV(r io.Reader) ([]report.DetailRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}
	for i, h := range Header {
		if records[0][i] != h {
			return nil, fmt.Errorf("unexpected column %d: %q, want %q", i, records[0][i], h)
		}
	}

	rows := make([]report.DetailRow, 0, len(records)-1)
	for n, rec := range records[1:] {
		var amounts [3]decimal.Decimal
		for i, s := range rec[4:] {
			a, err := decimal.NewFromString(s)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %w", n+2, Header[4+i], err)
			}
			amounts[i] = a
		}
		rows = append(rows, report.DetailRow{
			Date:        rec[0],
			AccountID:   rec[1],
			AccountName: rec[2],
			Narrative:   rec[3],
			Debit:       amounts[0],
			Credit:      amounts[1],
			Balance:     amounts[2],
		})
	}
	return rows, nil
}

// Filename is the deterministic download name for a filter. Open range
// bounds are written as "open".
func Filename(f ledger.Filter) string {
	key := ledger.LookupCategory(f.Category).Key
	if f.HasSelection() {
		key = "selection"
	}
	return fmt.Sprintf("ledger_%s_%s_to_%s.csv", key, bound(f.Range.Start), bound(f.Range.End))
}

func bound(d core.Date) string {
	if !d.Valid() {
		return "open"
	}
	return d.String()
}
