package ledger

import (
	"strings"

	"ledgerview/internal/core"
)

// DateRange is an inclusive calendar range. A zero bound is open.
type DateRange struct {
	Start core.Date
	End   core.Date
}

// Open reports whether neither bound is set.
func (r DateRange) Open() bool {
	return !r.Start.Valid() && !r.End.Valid()
}

// Contains reports whether d lies within the range, bounds included.
// A bounded range never contains an undated entry.
func (r DateRange) Contains(d core.Date) bool {
	if r.Open() {
		return true
	}
	if !d.Valid() {
		return false
	}
	if r.Start.Valid() && d.Time.Before(r.Start.Time) {
		return false
	}
	if r.End.Valid() && d.Time.After(r.End.Time) {
		return false
	}
	return true
}

// Filter selects entries by category or explicit accounts, and by date.
type Filter struct {
	Category string
	Accounts []string
	Range    DateRange
}

// Predicate resolves the filter into a match function. A non-empty account
// list replaces the category rule instead of narrowing it.
func (f Filter) Predicate() func(Entry) bool {
	accountMatch := f.accountPredicate()
	return func(e Entry) bool {
		return accountMatch(e.AccountID) && f.Range.Contains(e.Date)
	}
}

func (f Filter) accountPredicate() func(string) bool {
	if selected := f.selectedAccounts(); len(selected) > 0 {
		return func(id string) bool {
			_, ok := selected[id]
			return ok
		}
	}
	return LookupCategory(f.Category).Matches
}

func (f Filter) selectedAccounts() map[string]struct{} {
	var set map[string]struct{}
	for _, a := range f.Accounts {
		a = core.NormalizeAccountID(a)
		if a == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(f.Accounts))
		}
		set[a] = struct{}{}
	}
	return set
}

// HasSelection reports whether explicit accounts override the category.
func (f Filter) HasSelection() bool {
	return len(f.selectedAccounts()) > 0
}

// Label describes the active account rule.
func (f Filter) Label() string {
	if f.HasSelection() {
		return "Selection: " + strings.Join(f.Accounts, ", ")
	}
	return LookupCategory(f.Category).Label
}

// View is the filtered, ordered subset of a book.
type View struct {
	Entries []Entry
	Filter  Filter
}

// Empty reports that no entry matched. This is a valid outcome that the
// presentation layer shows as "no data".
func (v View) Empty() bool {
	return len(v.Entries) == 0
}

// Apply returns the entries matching f, keeping book order and running balances.
func (b *Book) Apply(f Filter) View {
	match := f.Predicate()
	var out []Entry
	for _, e := range b.Entries {
		if match(e) {
			out = append(out, e)
		}
	}
	return View{Entries: out, Filter: f}
}
