package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"ledgerview/internal/ledger"
	"ledgerview/internal/report"
)

type ratiosCmd struct {
	year string
}

func (*ratiosCmd) Name() string     { return "ratios" }
func (*ratiosCmd) Synopsis() string { return "display the financial ratios of a year" }
func (*ratiosCmd) Usage() string {
	return `ledgerctl ratios [-y <year>]

  Displays net income and the liquidity, profitability and structure ratios.
`
}

func (c *ratiosCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.year, "y", "", "Reporting year. Defaults to REPORTING_YEAR")
}

func (c *ratiosCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, tables, err := loadTables(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	year := c.year
	if year == "" {
		year = cfg.ReportingYear
	}
	book := ledger.Normalize(tables.Ledger, tables.Accounts)
	printMarkdown(ratiosMarkdown(year, cfg.Currency,
		report.NetIncome(tables.IncomeStatement, year),
		report.Ratios(tables, book, year)))
	return subcommands.ExitSuccess
}

func ratiosMarkdown(year, currency string, netIncome decimal.Decimal, ratios []report.Ratio) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Financial ratios %s\n\n", year)
	fmt.Fprintf(&b, "Net income: **%s**\n\n", report.FormatMoney(netIncome, currency))
	if len(ratios) == 0 {
		b.WriteString("Not enough data to compute ratios.\n")
		return b.String()
	}
	b.WriteString("| Ratio | Value | Status | Meaning |\n|---|---:|---|---|\n")
	for _, r := range ratios {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", r.Name, report.FormatRatio(r), r.Status, r.Interpretation)
	}
	return b.String()
}
