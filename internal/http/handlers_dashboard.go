package http

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"ledgerview/internal/core"
	"ledgerview/internal/ledger"
	"ledgerview/internal/log"
	"ledgerview/internal/report"
)

// run parses the filter, loads the snapshot and runs the pipeline. ok is
// false when an error response was already written.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (core.Tables, ledger.Result, bool) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			BadRequestError(err.Error()).Write(w)
		} else {
			BadRequestError("invalid filter").Write(w)
		}
		return core.Tables{}, ledger.Result{}, false
	}
	tables, ok := s.tables(w, r)
	if !ok {
		return core.Tables{}, ledger.Result{}, false
	}
	res := ledger.Run(tables, f)

	log.FromContext(r.Context()).DebugContext(r.Context(), "Filter applied",
		log.NewFields().
			WithOperation(log.OpFilter).
			WithFilter(ledger.LookupCategory(f.Category).Key, f.Accounts,
				res.View.Filter.Range.Start.String(), res.View.Filter.Range.End.String()).
			WithEntries(len(res.View.Entries)).
			ToSlice()...)
	return tables, res, true
}

type dashboardPage struct {
	Title      string
	Year       string
	Categories []ledger.Category
	Accounts   []ledger.AccountOption
	Selected   map[string]bool
	Filter     ledger.Filter
	Category   string
	Query      template.URL
	LoadedAt   time.Time
	Empty      bool
	Entries    int
	Summary    []report.SummaryRow
	Details    []report.DetailRow
	Balance    []report.StatementLine
	NetIncome  decimal.Decimal
	Ratios     []report.Ratio
	Comparison report.Comparison
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tables, res, ok := s.run(w, r)
	if !ok {
		return
	}
	f := res.View.Filter

	selected := make(map[string]bool, len(f.Accounts))
	for _, a := range f.Accounts {
		selected[a] = true
	}

	page := dashboardPage{
		Title:      "Ledger dashboard",
		Year:       s.year,
		Categories: ledger.Categories(),
		Accounts:   res.Book.Accounts(),
		Selected:   selected,
		Filter:     f,
		Category:   ledger.LookupCategory(f.Category).Key,
		Query:      template.URL(FilterQuery(f)),
		LoadedAt:   tables.LoadedAt,
		Empty:      res.View.Empty(),
		Entries:    len(res.View.Entries),
		Summary:    report.Summary(res.View),
		Details:    report.Details(res.View),
		Balance:    report.Extract(tables.BalanceSheet, s.year),
		NetIncome:  report.NetIncome(tables.IncomeStatement, s.year),
		Ratios:     report.Ratios(tables, res.Book, s.year),
		Comparison: report.Compare(res.View),
	}
	s.render(w, r, "index.html", page)
}

type chartResponse struct {
	Label  string          `json:"label"`
	Start  string          `json:"start"`
	End    string          `json:"end"`
	Empty  bool            `json:"empty"`
	Series []report.Series `json:"series"`
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.run(w, r)
	if !ok {
		return
	}
	f := res.View.Filter
	series := report.Chart(res.View)
	if series == nil {
		series = []report.Series{}
	}
	NewResponse().JSON(chartResponse{
		Label:  f.Label(),
		Start:  f.Range.Start.String(),
		End:    f.Range.End.String(),
		Empty:  res.View.Empty(),
		Series: series,
	}).Write(w)
}

type summaryResponse struct {
	Empty bool                `json:"empty"`
	Rows  []report.SummaryRow `json:"rows"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.run(w, r)
	if !ok {
		return
	}
	rows := report.Summary(res.View)
	if rows == nil {
		rows = []report.SummaryRow{}
	}
	NewResponse().JSON(summaryResponse{Empty: res.View.Empty(), Rows: rows}).Write(w)
}

type ratiosResponse struct {
	Year      string          `json:"year"`
	NetIncome decimal.Decimal `json:"net_income"`
	Ratios    []report.Ratio  `json:"ratios"`
}

func (s *Server) handleRatios(w http.ResponseWriter, r *http.Request) {
	tables, ok := s.tables(w, r)
	if !ok {
		return
	}
	book := ledger.Normalize(tables.Ledger, tables.Accounts)
	ratios := report.Ratios(tables, book, s.year)
	if ratios == nil {
		ratios = []report.Ratio{}
	}
	NewResponse().JSON(ratiosResponse{
		Year:      s.year,
		NetIncome: report.NetIncome(tables.IncomeStatement, s.year),
		Ratios:    ratios,
	}).Write(w)
}

type breakdownResponse struct {
	Start   string                  `json:"start"`
	End     string                  `json:"end"`
	Classes []report.ClassBreakdown `json:"classes"`
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.run(w, r)
	if !ok {
		return
	}
	rng := res.View.Filter.Range
	NewResponse().JSON(breakdownResponse{
		Start:   rng.Start.String(),
		End:     rng.End.String(),
		Classes: report.Breakdown(res.Book, rng),
	}).Write(w)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.run(w, r)
	if !ok {
		return
	}
	NewResponse().JSON(report.Compare(res.View)).Write(w)
}
