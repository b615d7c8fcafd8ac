package report

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"ledgerview/internal/core"
	"ledgerview/internal/ledger"
)

// Slice is one account's share inside a class.
type Slice struct {
	AccountID   string          `json:"account_id"`
	AccountName string          `json:"account_name"`
	Value       decimal.Decimal `json:"value"`
}

// ClassBreakdown is the pie-chart data for one account class.
type ClassBreakdown struct {
	Class  core.AccountClass `json:"class"`
	Slices []Slice           `json:"slices"`
	Total  decimal.Decimal   `json:"total"`
}

// HasData reports whether any slice is non-zero.
func (c ClassBreakdown) HasData() bool {
	return len(c.Slices) > 0
}

// Breakdown sums |debit - credit| per account within r, grouped by class.
// Only positive values are kept, largest first. Every known class is
// returned so empty ones can be shown as such.
func Breakdown(book *ledger.Book, r ledger.DateRange) []ClassBreakdown {
	type acc struct {
		name          string
		debit, credit decimal.Decimal
	}
	perClass := map[string]map[string]*acc{}
	for _, e := range book.Entries {
		if !r.Contains(e.Date) {
			continue
		}
		c, ok := core.ClassOf(e.AccountID)
		if !ok {
			continue
		}
		if perClass[c.Digit] == nil {
			perClass[c.Digit] = map[string]*acc{}
		}
		a := perClass[c.Digit][e.AccountID]
		if a == nil {
			a = &acc{name: e.AccountName}
			perClass[c.Digit][e.AccountID] = a
		}
		a.debit = a.debit.Add(e.Debit)
		a.credit = a.credit.Add(e.Credit)
	}

	var out []ClassBreakdown
	for _, c := range core.AccountClasses() {
		cb := ClassBreakdown{Class: c, Total: decimal.Zero}
		for id, a := range perClass[c.Digit] {
			v := a.debit.Sub(a.credit).Abs()
			if !v.IsPositive() {
				continue
			}
			cb.Slices = append(cb.Slices, Slice{AccountID: id, AccountName: a.name, Value: v})
			cb.Total = cb.Total.Add(v)
		}
		sort.Slice(cb.Slices, func(i, j int) bool {
			if !cb.Slices[i].Value.Equal(cb.Slices[j].Value) {
				return cb.Slices[i].Value.GreaterThan(cb.Slices[j].Value)
			}
			return core.CompareAccountIDs(cb.Slices[i].AccountID, cb.Slices[j].AccountID) < 0
		})
		out = append(out, cb)
	}
	return out
}

// YearlyRow is the net movement of one account per calendar year.
type YearlyRow struct {
	AccountID   string                     `json:"account_id"`
	AccountName string                     `json:"account_name"`
	ByYear      map[string]decimal.Decimal `json:"by_year"`
}

// Comparison holds the yearly net movement of the selected accounts.
type Comparison struct {
	Years []string    `json:"years"`
	Rows  []YearlyRow `json:"rows"`
}

// Compare aggregates net movement per account and year for the entries of v.
// Undated entries have no year and are skipped.
func Compare(v ledger.View) Comparison {
	years := map[int]struct{}{}
	var rows []YearlyRow
	for _, e := range v.Entries {
		if !e.Date.Valid() {
			continue
		}
		y := e.Date.Year()
		years[y] = struct{}{}
		if n := len(rows); n == 0 || rows[n-1].AccountID != e.AccountID {
			rows = append(rows, YearlyRow{AccountID: e.AccountID, AccountName: e.AccountName, ByYear: map[string]decimal.Decimal{}})
		}
		key := strconv.Itoa(y)
		r := &rows[len(rows)-1]
		r.ByYear[key] = r.ByYear[key].Add(e.Net)
	}
	sorted := make([]int, 0, len(years))
	for y := range years {
		sorted = append(sorted, y)
	}
	sort.Ints(sorted)
	c := Comparison{Rows: rows}
	for _, y := range sorted {
		c.Years = append(c.Years, strconv.Itoa(y))
	}
	return c
}
