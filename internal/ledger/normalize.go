// Package ledger turns raw general-ledger rows into enriched entries with a
// running balance per account, and filters them for presentation.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"ledgerview/internal/core"
)

// Entry is a normalized ledger line.
type Entry struct {
	Seq         int // position in the source result set
	AccountID   string
	AccountName string
	Date        core.Date
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Net         decimal.Decimal
	Balance     decimal.Decimal
	Narrative   string
}

// Book is the normalized ledger: entries ordered by account, then date,
// then load order, each carrying its running balance.
type Book struct {
	Entries   []Entry
	Directory *core.Directory
}

// Normalize coerces every raw row, joins account names, orders the entries
// and computes the running balance per account. Rows are never dropped.
//
// Undated entries sort after the dated entries of their account and are
// part of that account's running balance.
func Normalize(rows []core.LedgerRow, accounts []core.Account) *Book {
	dir := core.NewDirectory(accounts)
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		debit := core.ParseAmount(r.Debit)
		credit := core.ParseAmount(r.Credit)
		id := core.NormalizeAccountID(r.Account)
		entries[i] = Entry{
			Seq:         i,
			AccountID:   id,
			AccountName: dir.Name(id),
			Date:        core.ParseDate(r.Date),
			Debit:       debit,
			Credit:      credit,
			Net:         debit.Sub(credit),
			Narrative:   r.Narrative,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})

	balance := decimal.Zero
	for i := range entries {
		if i == 0 || entries[i].AccountID != entries[i-1].AccountID {
			balance = decimal.Zero
		}
		balance = balance.Add(entries[i].Net)
		entries[i].Balance = balance
	}

	return &Book{Entries: entries, Directory: dir}
}

func entryLess(a, b Entry) bool {
	if c := core.CompareAccountIDs(a.AccountID, b.AccountID); c != 0 {
		return c < 0
	}
	av, bv := a.Date.Valid(), b.Date.Valid()
	if av != bv {
		return av
	}
	if av && !a.Date.Equal(b.Date.Time) {
		return a.Date.Time.Before(b.Date.Time)
	}
	return a.Seq < b.Seq
}

// Span returns the earliest and latest dates in the book. ok is false when
// no entry is dated.
func (b *Book) Span() (first, last core.Date, ok bool) {
	for _, e := range b.Entries {
		if !e.Date.Valid() {
			continue
		}
		if !ok || e.Date.Time.Before(first.Time) {
			first = e.Date
		}
		if !ok || e.Date.Time.After(last.Time) {
			last = e.Date
		}
		ok = true
	}
	return first, last, ok
}

// AccountOption is an account that appears in the ledger, for selection lists.
type AccountOption struct {
	ID   string
	Name string
}

// Accounts lists the distinct ledger accounts in book order.
func (b *Book) Accounts() []AccountOption {
	var out []AccountOption
	for i, e := range b.Entries {
		if i > 0 && b.Entries[i-1].AccountID == e.AccountID {
			continue
		}
		out = append(out, AccountOption{ID: e.AccountID, Name: e.AccountName})
	}
	return out
}
