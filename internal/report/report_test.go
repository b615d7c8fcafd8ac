package report

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"ledgerview/internal/core"
	"ledgerview/internal/ledger"
)

func row(account, date, debit, credit string) core.LedgerRow {
	return core.LedgerRow{Account: account, Date: date, Debit: debit, Credit: credit}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleView() ledger.View {
	book := ledger.Normalize([]core.LedgerRow{
		row("1000", "2025-01-01", "100", ""),
		row("1000", "2025-01-02", "", "30"),
		row("1000", "2025-01-03", "50", ""),
		row("2000", "2025-01-01", "", "500"),
		row("3000", "2025-01-05", "10", ""),
		row("3000", "2025-02-05", "100", ""),
		row("3000", "", "1", ""),
	}, []core.Account{{Number: "1000", Name: "Cash"}})
	return book.Apply(ledger.Filter{})
}

func TestChartSkipsUndated(t *testing.T) {
	series := Chart(sampleView())
	if len(series) != 3 {
		t.Fatalf("expected one series per account, got %d", len(series))
	}
	if series[0].AccountName != "Cash" || len(series[0].Points) != 3 {
		t.Fatalf("unexpected first series: %+v", series[0])
	}
	if len(series[2].Points) != 2 {
		t.Fatalf("undated entries must not be plotted, got %d points", len(series[2].Points))
	}
	if series[0].Points[2].Date != "2025-01-03" || !series[0].Points[2].Balance.Equal(d("120")) {
		t.Fatalf("unexpected last point: %+v", series[0].Points[2])
	}
}

func TestSummaryOrderedByVariation(t *testing.T) {
	rows := Summary(sampleView())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	want := []struct {
		id         string
		start, end string
		variation  string
	}{
		{"3000", "10", "111", "101"},
		{"1000", "100", "120", "20"},
		{"2000", "-500", "-500", "0"},
	}
	for i, w := range want {
		r := rows[i]
		if r.AccountID != w.id || !r.Start.Equal(d(w.start)) || !r.End.Equal(d(w.end)) || !r.Variation.Equal(d(w.variation)) {
			t.Fatalf("row %d: expected %+v, got %+v", i, w, r)
		}
	}
}

func TestSummaryEmptyView(t *testing.T) {
	if rows := Summary(ledger.View{}); len(rows) != 0 {
		t.Fatalf("expected no rows, got %v", rows)
	}
}

func TestDetailsKeepViewOrder(t *testing.T) {
	rows := Details(sampleView())
	if len(rows) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(rows))
	}
	if rows[6].Date != "" || !rows[6].Balance.Equal(d("111")) {
		t.Fatalf("undated row should come last, got %+v", rows[6])
	}
}

func statements() core.Tables {
	return core.Tables{
		BalanceSheet: core.Statement{Columns: []string{"2025"}, Rows: []core.StatementRow{
			{AccountNumber: "1000", AccountName: "Cash", Values: map[string]string{"2025": "300"}},
			{AccountNumber: "1100", AccountName: "Receivables", Values: map[string]string{"2025": "200"}},
			{AccountNumber: "2000", AccountName: "Payables", Values: map[string]string{"2025": "-200"}},
			{AccountNumber: "2800", AccountName: "Equity", Values: map[string]string{"2025": "-400"}},
		}},
		IncomeStatement: core.Statement{Columns: []string{"2025"}, Rows: []core.StatementRow{
			{AccountNumber: "3000", AccountName: "Sales", Values: map[string]string{"2025": "-1000"}},
			{AccountNumber: "4000", AccountName: "Materials", Values: map[string]string{"2025": "600"}},
			{AccountNumber: "", AccountName: "Note", Values: map[string]string{"2025": "n/a"}},
		}},
	}
}

func TestNetIncome(t *testing.T) {
	tables := statements()
	if got := NetIncome(tables.IncomeStatement, "2025"); !got.Equal(d("-400")) {
		t.Fatalf("expected -400, got %s", got)
	}
	if got := NetIncome(tables.IncomeStatement, "2024"); !got.IsZero() {
		t.Fatalf("missing column should sum to zero, got %s", got)
	}
}

func TestExtractKeepsRawValues(t *testing.T) {
	lines := Extract(statements().BalanceSheet, "2025")
	if len(lines) != 4 || lines[2].Value != "-200" || lines[2].AccountName != "Payables" {
		t.Fatalf("unexpected extract: %+v", lines)
	}
}

func TestRatios(t *testing.T) {
	ratios := Ratios(statements(), nil, "2025")
	want := []struct {
		name   string
		value  string
		status Status
	}{
		{"Current ratio", "2.5", StatusGood},
		{"Quick ratio", "2.5", StatusGood},
		{"Cash ratio", "1.5", StatusGood},
		{"Net margin", "40", StatusGood},
		{"ROA", "80", StatusGood},
		{"ROE", "100", StatusGood},
		{"EBITDA margin", "40", StatusGood},
		{"Equity ratio", "80", StatusBad},
	}
	if len(ratios) != len(want) {
		t.Fatalf("expected %d ratios, got %+v", len(want), ratios)
	}
	for i, w := range want {
		r := ratios[i]
		if r.Name != w.name || !r.Value.Equal(d(w.value)) || r.Status != w.status {
			t.Fatalf("ratio %d: expected %+v, got %+v", i, w, r)
		}
	}
}

func TestRatiosSkipZeroDenominators(t *testing.T) {
	tables := statements()
	tables.BalanceSheet.Rows = tables.BalanceSheet.Rows[:2]
	for _, r := range Ratios(tables, nil, "2025") {
		if r.Category == Liquidity {
			t.Fatalf("liquidity ratios need short-term debt, got %s", r.Name)
		}
	}
	if got := Ratios(core.Tables{}, nil, "2025"); len(got) != 0 {
		t.Fatalf("expected no ratios without data, got %+v", got)
	}
}

func TestBalancesFallBackToLedger(t *testing.T) {
	book := ledger.Normalize([]core.LedgerRow{
		row("1000", "2025-01-01", "100", ""),
		row("1020", "2025-01-01", "", "40"),
	}, nil)
	b := NewBalances(core.Tables{}, book, "2025")
	if got := b.Of("10"); !got.Equal(d("60")) {
		t.Fatalf("expected ledger net movement 60, got %s", got)
	}
}

func TestBreakdown(t *testing.T) {
	book := ledger.Normalize([]core.LedgerRow{
		row("4000", "2025-01-10", "30", ""),
		row("4100", "2025-01-11", "", "50"),
		row("4200", "2025-01-12", "10", "10"),
		row("4000", "2024-12-31", "999", ""),
		row("1000", "2025-01-01", "5", ""),
	}, nil)
	r := ledger.DateRange{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 12, 31)}
	classes := Breakdown(book, r)
	if len(classes) != 9 {
		t.Fatalf("expected every class, got %d", len(classes))
	}
	costs := classes[3]
	if costs.Class.Digit != "4" || len(costs.Slices) != 2 {
		t.Fatalf("unexpected class 4 breakdown: %+v", costs)
	}
	if costs.Slices[0].AccountID != "4100" || !costs.Slices[0].Value.Equal(d("50")) {
		t.Fatalf("expected largest slice first, got %+v", costs.Slices[0])
	}
	if !costs.Total.Equal(d("80")) {
		t.Fatalf("expected total 80, got %s", costs.Total)
	}
	if classes[8].HasData() {
		t.Fatalf("closing class should be empty")
	}
}

func TestCompare(t *testing.T) {
	book := ledger.Normalize([]core.LedgerRow{
		row("1000", "2024-06-01", "10", ""),
		row("1000", "2025-06-01", "20", ""),
		row("1000", "2025-07-01", "", "5"),
		row("2000", "2025-01-01", "", "7"),
		row("2000", "", "", "100"),
	}, nil)
	c := Compare(book.Apply(ledger.Filter{}))
	if len(c.Years) != 2 || c.Years[0] != "2024" || c.Years[1] != "2025" {
		t.Fatalf("unexpected years: %v", c.Years)
	}
	if len(c.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(c.Rows))
	}
	if !c.Rows[0].ByYear["2025"].Equal(d("15")) || !c.Rows[0].ByYear["2024"].Equal(d("10")) {
		t.Fatalf("unexpected 1000 row: %+v", c.Rows[0])
	}
	if !c.Rows[1].ByYear["2025"].Equal(d("-7")) {
		t.Fatalf("undated entries must not count, got %+v", c.Rows[1])
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		v    string
		code string
		want string
	}{
		{"1234.5", "USD", "$1,234.50"},
		{"0", "USD", "$0.00"},
		{"12.345", "", "12.35"},
		{"7", "XYZ", "7.00 XYZ"},
	}
	for _, tc := range cases {
		if got := FormatMoney(d(tc.v), tc.code); got != tc.want {
			t.Errorf("FormatMoney(%s, %q) = %q, want %q", tc.v, tc.code, got, tc.want)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	tables := statements()
	tables.Ledger = []core.LedgerRow{
		row("1000", "2025-01-01", "100", ""),
		row("1000", "2025-01-05", "", "40"),
	}
	res := ledger.Run(tables, ledger.Filter{Category: "cash"})
	out, err := RenderMarkdown(Build(tables, res, "2025", "USD"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"# Ledger report",
		"Cash (10xx)",
		"2025-01-01 to 2025-01-05",
		"| 1000 |",
		"| $100.00 | $60.00 |",
		"| Current ratio | 2.50x | good |",
		"| 2800 | Equity | -400 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in report:\n%s", want, out)
		}
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	res := ledger.Run(core.Tables{}, ledger.Filter{})
	out, err := RenderMarkdown(Build(core.Tables{}, res, "2025", "USD"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "No data for the selected filters.") {
		t.Fatalf("expected no data message, got:\n%s", out)
	}
}
