package http

import (
	"net/http"

	"ledgerview/internal/core"
)

type accountsPage struct {
	Title  string
	Query  string
	Total  int
	Found  int
	Groups []core.ClassGroup
}

// handleAccounts renders the chart of accounts, optionally filtered by a
// search term. htmx requests get only the result list.
func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	tables, ok := s.tables(w, r)
	if !ok {
		return
	}
	q := sanitizeInput(r.URL.Query().Get("q"))
	dir := core.NewDirectory(tables.Accounts)
	found := dir.Search(q)

	page := accountsPage{
		Title:  "Chart of accounts",
		Query:  q,
		Total:  len(dir.Accounts()),
		Found:  len(found),
		Groups: core.GroupByClass(found),
	}

	name := "accounts.html"
	if isHTMX(r) {
		name = "account_list"
	}
	s.render(w, r, name, page)
}
