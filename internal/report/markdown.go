package report

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"ledgerview/internal/core"
	"ledgerview/internal/ledger"
)

//go:embed templates/*.md
var templates embed.FS

// Document is everything the markdown report shows for one filter.
type Document struct {
	Title     string
	Currency  string
	Year      string
	Filter    ledger.Filter
	Summary   []SummaryRow
	Ratios    []Ratio
	NetIncome decimal.Decimal
	Balance   []StatementLine
	Classes   []ClassBreakdown
}

// Build assembles a Document from a pipeline result.
func Build(tables core.Tables, res ledger.Result, year, currency string) *Document {
	return &Document{
		Title:     "Ledger report",
		Currency:  currency,
		Year:      year,
		Filter:    res.View.Filter,
		Summary:   Summary(res.View),
		Ratios:    Ratios(tables, res.Book, year),
		NetIncome: NetIncome(tables.IncomeStatement, year),
		Balance:   Extract(tables.BalanceSheet, year),
		Classes:   Breakdown(res.Book, res.View.Filter.Range),
	}
}

// RenderMarkdown renders the document as GitHub flavoured markdown.
func RenderMarkdown(d *Document) (string, error) {
	partials := map[string]string{
		"summary": "summary.md",
		"ratios":  "ratios.md",
		"classes": "classes.md",
		"balance": "balance.md",
	}
	return renderTemplate("report", "report.md", partials, d)
}

func funcs(currency string) template.FuncMap {
	return template.FuncMap{
		"money": func(v decimal.Decimal) string { return FormatMoney(v, currency) },
		"ratio": FormatRatio,
		"cell":  escapeCell,
		"date": func(d core.Date) string {
			if !d.Valid() {
				return "open"
			}
			return d.String()
		},
	}
}

// renderTemplate parses a main template plus named partials and executes it.
func renderTemplate(name, mainFile string, partials map[string]string, d *Document) (string, error) {
	main, err := templates.ReadFile("templates/" + mainFile)
	if err != nil {
		return "", fmt.Errorf("reading template %q: %w", mainFile, err)
	}
	tmpl, err := template.New(name).Funcs(funcs(d.Currency)).Parse(string(main))
	if err != nil {
		return "", fmt.Errorf("parsing template %q: %w", mainFile, err)
	}
	for alias, file := range partials {
		content, err := templates.ReadFile("templates/" + file)
		if err != nil {
			return "", fmt.Errorf("reading partial %q: %w", file, err)
		}
		if _, err := tmpl.New(alias).Parse(string(content)); err != nil {
			return "", fmt.Errorf("parsing partial %q: %w", file, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, name, d); err != nil {
		return "", fmt.Errorf("executing template %q: %w", name, err)
	}
	return b.String(), nil
}

// escapeCell keeps free text from breaking a markdown table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
