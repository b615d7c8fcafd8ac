package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledgerview/internal/core"
	"ledgerview/internal/log"
	"ledgerview/internal/report"
)

type fakeSnapshot struct {
	tables     core.Tables
	err        error
	refreshErr error
	refreshes  int
}

func (f *fakeSnapshot) Get(ctx context.Context) (core.Tables, error) {
	return f.tables, f.err
}

func (f *fakeSnapshot) Refresh(ctx context.Context) (core.Tables, error) {
	f.refreshes++
	if f.refreshErr != nil {
		return core.Tables{}, f.refreshErr
	}
	return f.tables, nil
}

func sampleTables() core.Tables {
	return core.Tables{
		Ledger: []core.LedgerRow{
			{Account: "1000", Date: "2025-01-01", Debit: "100", Narrative: "Opening"},
			{Account: "1000", Date: "2025-01-05", Credit: "40", Narrative: "Supplier"},
			{Account: "1020", Date: "2025-01-02", Debit: "250"},
			{Account: "4000", Date: "2025-01-03", Debit: "40"},
		},
		Accounts: []core.Account{
			{Number: "1000", Name: "Cash"},
			{Number: "1020", Name: "Bank"},
			{Number: "4000", Name: "Materials"},
		},
		BalanceSheet: core.Statement{Columns: []string{"2025"}, Rows: []core.StatementRow{
			{AccountNumber: "1000", AccountName: "Cash", Values: map[string]string{"2025": "300"}},
			{AccountNumber: "2000", AccountName: "Payables", Values: map[string]string{"2025": "-200"}},
		}},
		IncomeStatement: core.Statement{Columns: []string{"2025"}, Rows: []core.StatementRow{
			{AccountNumber: "3000", AccountName: "Sales", Values: map[string]string{"2025": "-1000"}},
			{AccountNumber: "4000", AccountName: "Materials", Values: map[string]string{"2025": "600"}},
		}},
		LoadedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
}

func newTestServer(t *testing.T, snap Snapshot, ready func(context.Context) error) *Server {
	t.Helper()
	srv := NewServer(":0", snap, Options{
		Year:     "2025",
		Currency: "USD",
		Ready:    ready,
		Logger:   log.New(log.Config{Output: io.Discard}),
	})
	if srv.templates == nil {
		t.Fatal("templates failed to parse")
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(srv *Server, method, target string, header map[string]string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, nil)

	if rr := do(srv, http.MethodGet, "/healthz", nil); rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rr.Code, rr.Body.String())
	}
	if rr := do(srv, http.MethodGet, "/readyz", nil); rr.Code != http.StatusOK || rr.Body.String() != "ready" {
		t.Fatalf("readyz = %d %q", rr.Code, rr.Body.String())
	}

	down := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, func(context.Context) error {
		return errors.New("connection refused")
	})
	if rr := do(down, http.MethodGet, "/readyz", nil); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing source = %d, want 503", rr.Code)
	}

	noData := newTestServer(t, &fakeSnapshot{err: errors.New("load failed")}, nil)
	if rr := do(noData, http.MethodGet, "/readyz", nil); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz without snapshot = %d, want 503", rr.Code)
	}
}

func TestIndexRendersDashboard(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, nil)

	rr := do(srv, http.MethodGet, "/?category=cash", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status = %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{
		"Ledger dashboard",
		"Cash (10xx)",
		`value="2025-01-01"`,
		`value="2025-01-05"`,
		"$100.00",
		"$60.00",
		"Opening",
		`href="/export.csv?category=cash`,
		"Current ratio",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
	if strings.Contains(body, "<td>4000</td>") {
		t.Error("expense accounts must not appear in the cash view")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}
}

func TestIndexEmptyView(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, nil)

	rr := do(srv, http.MethodGet, "/?category=closing", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("empty view status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No data for the selected filters.") {
		t.Fatal("expected no data message")
	}
}

func TestInvalidDateIsBadRequest(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, nil)

	for _, target := range []string{"/?start=yesterday", "/api/chart?end=2025-02-30", "/export.csv?start=1.1.2025"} {
		if rr := do(srv, http.MethodGet, target, nil); rr.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", target, rr.Code)
		}
	}
}

func TestSnapshotFailureIsUnavailable(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{err: errors.New("source down")}, nil)

	for _, target := range []string{"/", "/api/summary", "/api/ratios", "/export.csv", "/accounts", "/report"} {
		if rr := do(srv, http.MethodGet, target, nil); rr.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", target, rr.Code)
		}
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, nil)

	rr := do(srv, http.MethodGet, "/export.csv?category=cash", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != "text/csv; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	want := `attachment; filename="ledger_cash_2025-01-01_to_2025-01-05.csv"`
	if got := rr.Header().Get("Content-Disposition"); got != want {
		t.Errorf("Content-Disposition = %q, want %q", got, want)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if lines[0] != "date,account_id,account_name,narrative,debit,credit,running_balance" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if len(lines) != 4 {
		t.Errorf("expected 3 cash entries, got %d lines", len(lines))
	}
}

func TestExportEmptyIsNotFound(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, nil)

	rr := do(srv, http.MethodGet, "/export.csv?account=9999", nil)
	if rr.Code != http.StatusNotFound || rr.Body.String() != "no data" {
		t.Fatalf("empty export = %d %q, want 404 no data", rr.Code, rr.Body.String())
	}
}

func TestChartAPI(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, nil)

	rr := do(srv, http.MethodGet, "/api/chart?account=1000", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("chart status = %d", rr.Code)
	}
	var resp chartResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Empty || resp.Label != "Selection: 1000" || len(resp.Series) != 1 {
		t.Fatalf("unexpected chart response %+v", resp)
	}
	if pts := resp.Series[0].Points; len(pts) != 2 || pts[1].Balance.String() != "60" {
		t.Fatalf("unexpected points %+v", pts)
	}

	rr = do(srv, http.MethodGet, "/api/chart?category=closing", nil)
	if !strings.Contains(rr.Body.String(), `"empty":true`) || !strings.Contains(rr.Body.String(), `"series":[]`) {
		t.Fatalf("empty chart should be explicit: %s", rr.Body.String())
	}
}

func TestSummaryAndRatiosAPI(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, nil)

	var summary summaryResponse
	rr := do(srv, http.MethodGet, "/api/summary", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(summary.Rows) != 3 || summary.Rows[0].AccountID != "1000" || !summary.Rows[0].Variation.Equal(decimal.NewFromInt(-40)) {
		t.Fatalf("unexpected summary %+v", summary.Rows)
	}

	var ratios ratiosResponse
	rr = do(srv, http.MethodGet, "/api/ratios", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &ratios); err != nil {
		t.Fatalf("decode ratios: %v", err)
	}
	if ratios.Year != "2025" || ratios.NetIncome.String() != "-400" || len(ratios.Ratios) == 0 {
		t.Fatalf("unexpected ratios %+v", ratios)
	}
}

func TestBreakdownAndCompareAPI(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, nil)

	var breakdown breakdownResponse
	rr := do(srv, http.MethodGet, "/api/breakdown", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &breakdown); err != nil {
		t.Fatalf("decode breakdown: %v", err)
	}
	if len(breakdown.Classes) != 9 || len(breakdown.Classes[3].Slices) != 1 {
		t.Fatalf("unexpected breakdown %+v", breakdown)
	}

	var cmp report.Comparison
	rr = do(srv, http.MethodGet, "/api/compare?category=cash", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &cmp); err != nil {
		t.Fatalf("decode compare: %v", err)
	}
	if len(cmp.Years) != 1 || cmp.Years[0] != "2025" || len(cmp.Rows) != 2 {
		t.Fatalf("unexpected comparison %+v", cmp)
	}
}

func TestAccountsPage(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, nil)

	rr := do(srv, http.MethodGet, "/accounts?q=bank", nil)
	body := rr.Body.String()
	if rr.Code != http.StatusOK || !strings.Contains(body, "Bank") || strings.Contains(body, "Materials") {
		t.Fatalf("unexpected accounts page %d: %s", rr.Code, body)
	}
	if !strings.Contains(body, "1 · Assets") || !strings.Contains(body, "1 of 3 accounts") {
		t.Errorf("accounts should be grouped by class: %s", body)
	}

	rr = do(srv, http.MethodGet, "/accounts?q=zzz", map[string]string{"HX-Request": "true"})
	body = rr.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("htmx request should get the partial only")
	}
	if !strings.Contains(body, "No account matches.") {
		t.Errorf("expected no match message: %s", body)
	}
}

func TestReport(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, nil)

	rr := do(srv, http.MethodGet, "/report?category=cash", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("report status = %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "<h1>Ledger report</h1>") || !strings.Contains(body, "<table>") {
		t.Fatalf("report should be rendered to HTML: %s", body)
	}

	rr = do(srv, http.MethodGet, "/report?category=cash&format=md", nil)
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/markdown") || !strings.Contains(rr.Body.String(), "# Ledger report") {
		t.Fatalf("expected markdown source, got %q", rr.Body.String())
	}
}

func TestRefresh(t *testing.T) {
	snap := &fakeSnapshot{tables: sampleTables()}
	srv := newTestServer(t, snap, nil)

	rr := do(srv, http.MethodPost, "/refresh", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "ledger:refreshed") {
		t.Error("refresh should trigger ledger:refreshed")
	}
	var resp refreshResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp.Entries != 4 || resp.Accounts != 3 {
		t.Fatalf("unexpected refresh response %+v, %v", resp, err)
	}

	rr = do(srv, http.MethodPost, "/refresh", map[string]string{"HX-Request": "true"})
	if !strings.Contains(rr.Body.String(), "Data reloaded at 2025-06-01T08:00:00Z") {
		t.Errorf("htmx refresh should return a notice: %s", rr.Body.String())
	}

	if rr := do(srv, http.MethodGet, "/refresh", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /refresh = %d, want 405", rr.Code)
	}

	snap.refreshErr = errors.New("source down")
	if rr := do(srv, http.MethodPost, "/refresh", nil); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("failed refresh = %d, want 503", rr.Code)
	}
	if snap.refreshes != 3 {
		t.Errorf("refreshes = %d, want 3", snap.refreshes)
	}
}

func TestRefreshIsRateLimited(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, nil)

	var last int
	for i := 0; i < 10; i++ {
		last = do(srv, http.MethodPost, "/refresh", nil).Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("status after burst = %d, want 429", last)
	}
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, &fakeSnapshot{tables: sampleTables()}, nil)

	rr := do(srv, http.MethodGet, "/static/app.js", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("static status = %d", rr.Code)
	}
	if rr.Header().Get("Cache-Control") == "" {
		t.Error("static assets should be cacheable")
	}
}
