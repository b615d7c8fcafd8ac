package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"ledgerview/internal/core"
)

type accountsCmd struct {
	query string
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list the chart of accounts" }
func (*accountsCmd) Usage() string {
	return `ledgerctl accounts [-q <term>]

  Lists the chart of accounts grouped by class. -q keeps the accounts whose
  number or name contains the term.
`
}

func (c *accountsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "Search term")
}

func (c *accountsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, tables, err := loadTables(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading accounts: %v\n", err)
		return subcommands.ExitFailure
	}
	dir := core.NewDirectory(tables.Accounts)
	printMarkdown(accountsMarkdown(dir.Search(c.query), len(dir.Accounts())))
	return subcommands.ExitSuccess
}

func accountsMarkdown(found []core.Account, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Chart of accounts\n\n%d of %d accounts\n", len(found), total)
	for _, g := range core.GroupByClass(found) {
		title := g.Class.Label
		if g.Class.Digit != "" {
			title = g.Class.Digit + " " + title
		}
		fmt.Fprintf(&b, "\n## %s\n\n| Number | Name |\n|---|---|\n", title)
		for _, a := range g.Accounts {
			fmt.Fprintf(&b, "| %s | %s |\n", a.Number, strings.ReplaceAll(a.Name, "|", `\|`))
		}
	}
	return b.String()
}
