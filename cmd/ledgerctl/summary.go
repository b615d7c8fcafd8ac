package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"ledgerview/internal/ledger"
	"ledgerview/internal/report"
)

type summaryCmd struct {
	filter filterFlags
	year   string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the ledger report for a filter" }
func (*summaryCmd) Usage() string {
	return `ledgerctl summary [-c <category>] [-a <accounts>] [-from <date>] [-to <date>] [-y <year>]

  Displays the variation per account, the financial ratios and the balance
  sheet for the selected accounts and dates.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	c.filter.register(f)
	f.StringVar(&c.year, "y", "", "Reporting year. Defaults to REPORTING_YEAR")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter, err := c.filter.filter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg, tables, err := loadTables(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	year := c.year
	if year == "" {
		year = cfg.ReportingYear
	}

	res := ledger.Run(tables, filter)
	md, err := report.RenderMarkdown(report.Build(tables, res, year, cfg.Currency))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
