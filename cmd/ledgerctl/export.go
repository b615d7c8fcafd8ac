package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"ledgerview/internal/export"
	"ledgerview/internal/ledger"
)

type exportCmd struct {
	filter filterFlags
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the filtered ledger as CSV" }
func (*exportCmd) Usage() string {
	return `ledgerctl export [-c <category>] [-a <accounts>] [-from <date>] [-to <date>] [-o <file|dir>]

  Writes the filtered entries with their running balance as CSV. Without -o
  the CSV goes to stdout. When -o is a directory the file is named after the
  filter.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.filter.register(f)
	f.StringVar(&c.output, "o", "", "Output file or directory")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter, err := c.filter.filter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	_, tables, err := loadTables(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	view := ledger.Run(tables, filter).View
	if view.Empty() {
		fmt.Fprintln(os.Stderr, "No data for the selected filters.")
		return subcommands.ExitFailure
	}

	if c.output == "" {
		if err := export.WriteCSV(os.Stdout, view); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	path := outputPath(c.output, view.Filter)
	if err := writeExportFile(path, view); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", path, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", len(view.Entries), path)
	return subcommands.ExitSuccess
}

// writeExportFile writes the view as CSV to path. A failed write leaves no
// partial file behind.
func writeExportFile(path string, view ledger.View) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	if err := export.WriteCSV(file, view); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// outputPath appends the export file name when out is an existing directory.
func outputPath(out string, f ledger.Filter) string {
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, export.Filename(f))
	}
	return out
}
