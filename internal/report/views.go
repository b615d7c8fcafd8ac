// Package report builds presentation models from a filtered ledger view and
// the statement tables: chart series, the variation summary, detail rows,
// statement extracts and ratios. It holds no business rules beyond
// aggregation; rendering lives in the http and cmd packages.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"ledgerview/internal/core"
	"ledgerview/internal/ledger"
)

// Point is one running-balance observation.
type Point struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// Series is the running balance of one account over time.
type Series struct {
	AccountID   string  `json:"account_id"`
	AccountName string  `json:"account_name"`
	Points      []Point `json:"points"`
}

// Chart returns one series per account in view order. Undated entries have
// no position on a time axis and are skipped.
func Chart(v ledger.View) []Series {
	var out []Series
	for _, e := range v.Entries {
		if !e.Date.Valid() {
			continue
		}
		if n := len(out); n == 0 || out[n-1].AccountID != e.AccountID {
			out = append(out, Series{AccountID: e.AccountID, AccountName: e.AccountName})
		}
		s := &out[len(out)-1]
		s.Points = append(s.Points, Point{Date: e.Date.String(), Balance: e.Balance})
	}
	return out
}

// SummaryRow is the start/end/variation line for one account.
type SummaryRow struct {
	AccountID   string          `json:"account_id"`
	AccountName string          `json:"account_name"`
	Start       decimal.Decimal `json:"start"`
	End         decimal.Decimal `json:"end"`
	Variation   decimal.Decimal `json:"variation"`
}

// Summary returns, per account, the first and last running balance seen in
// the view and their difference, largest absolute variation first.
func Summary(v ledger.View) []SummaryRow {
	var out []SummaryRow
	for _, e := range v.Entries {
		bal := e.Balance.Round(2)
		if n := len(out); n == 0 || out[n-1].AccountID != e.AccountID {
			out = append(out, SummaryRow{AccountID: e.AccountID, AccountName: e.AccountName, Start: bal})
		}
		out[len(out)-1].End = bal
	}
	for i := range out {
		out[i].Variation = out[i].End.Sub(out[i].Start)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Variation.Abs().GreaterThan(out[j].Variation.Abs())
	})
	return out
}

// DetailRow is one line of the detail table.
type DetailRow struct {
	Date        string          `json:"date"`
	AccountID   string          `json:"account_id"`
	AccountName string          `json:"account_name"`
	Narrative   string          `json:"narrative"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// Details flattens the view for tabular display.
func Details(v ledger.View) []DetailRow {
	out := make([]DetailRow, 0, len(v.Entries))
	for _, e := range v.Entries {
		out = append(out, DetailRow{
			Date:        e.Date.String(),
			AccountID:   e.AccountID,
			AccountName: e.AccountName,
			Narrative:   e.Narrative,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Balance:     e.Balance,
		})
	}
	return out
}

// StatementLine is an extract of one statement row for a single year.
type StatementLine struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Value         string `json:"value"`
}

// Extract returns number, name and the raw value of the year column for
// every row, verbatim.
func Extract(s core.Statement, year string) []StatementLine {
	out := make([]StatementLine, 0, len(s.Rows))
	for _, r := range s.Rows {
		out = append(out, StatementLine{
			AccountNumber: r.AccountNumber,
			AccountName:   r.AccountName,
			Value:         r.Value(year),
		})
	}
	return out
}

// NetIncome sums the year column of the income statement. Cells that are
// not numbers count as zero.
func NetIncome(s core.Statement, year string) decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.Rows {
		total = total.Add(core.ParseAmount(r.Value(year)))
	}
	return total
}
