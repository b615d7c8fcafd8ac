package ledger

import "ledgerview/internal/core"

// Result is the output of one pipeline run.
type Result struct {
	Book *Book
	View View
}

// Run normalizes the raw tables and applies the filter. Missing range bounds
// default to the first and last ledger dates, so the default view covers the
// whole dated ledger.
func Run(tables core.Tables, f Filter) Result {
	book := Normalize(tables.Ledger, tables.Accounts)
	if first, last, ok := book.Span(); ok {
		if !f.Range.Start.Valid() {
			f.Range.Start = first
		}
		if !f.Range.End.Valid() {
			f.Range.End = last
		}
	}
	return Result{Book: book, View: book.Apply(f)}
}
