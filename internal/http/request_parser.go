// Package http serves the ledger dashboard.
//
// This file parses the dashboard query string into a ledger filter.
package http

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"ledgerview/internal/core"
	"ledgerview/internal/ledger"
)

// ErrInvalidDate is returned for a range bound that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// ParseFilter reads category, account (repeatable or comma separated),
// start and end. Empty bounds stay open.
func ParseFilter(q url.Values) (ledger.Filter, error) {
	f := ledger.Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Accounts: parseAccounts(q["account"]),
	}

	var err error
	if f.Range.Start, err = parseBound(q.Get("start"), "start"); err != nil {
		return ledger.Filter{}, err
	}
	if f.Range.End, err = parseBound(q.Get("end"), "end"); err != nil {
		return ledger.Filter{}, err
	}
	return f, nil
}

func parseAccounts(values []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, v := range values {
		for _, a := range strings.Split(v, ",") {
			a = core.NormalizeAccountID(sanitizeInput(a))
			if a == "" {
				continue
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

func parseBound(raw, name string) (core.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return core.Date{}, nil
	}
	d, ok := core.ParseDateStrict(raw)
	if !ok {
		return core.Date{}, fmt.Errorf("%w for %s: %q", ErrInvalidDate, name, raw)
	}
	return d, nil
}

// FilterQuery encodes f back into a query string, for links that must keep
// the current selection.
func FilterQuery(f ledger.Filter) string {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	for _, a := range f.Accounts {
		q.Add("account", a)
	}
	if f.Range.Start.Valid() {
		q.Set("start", f.Range.Start.String())
	}
	if f.Range.End.Valid() {
		q.Set("end", f.Range.End.String())
	}
	return q.Encode()
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
