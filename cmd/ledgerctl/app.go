package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"ledgerview/internal/backend"
	"ledgerview/internal/cli"
	"ledgerview/internal/config"
	"ledgerview/internal/core"
	"ledgerview/internal/ledger"
	"ledgerview/internal/loader"
	"ledgerview/internal/log"
)

var rawOutput = flag.Bool("raw", false, "Print markdown source instead of rendering it for the terminal")

// loadConfig reads .env and the environment. Logs go to stderr so they never
// mix with command output.
func loadConfig() (*config.Config, *log.Logger, error) {
	cli.LoadEnvFile()
	cfg := config.Load()
	lvl, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Level:     lvl,
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    os.Stderr,
	})
	log.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// loadTables opens the configured backend and loads one snapshot.
func loadTables(ctx context.Context) (*config.Config, core.Tables, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, core.Tables{}, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backend.FromAppConfig(cfg))
	if err != nil {
		return nil, core.Tables{}, err
	}
	defer res.Close()

	tables, err := loader.New(res.Backend).Load(ctx)
	if err != nil {
		return nil, core.Tables{}, err
	}
	return cfg, tables, nil
}

// filterFlags are the dashboard filter controls as command line flags.
type filterFlags struct {
	category string
	accounts string
	from     string
	to       string
}

func (ff *filterFlags) register(f *flag.FlagSet) {
	f.StringVar(&ff.category, "c", ledger.CategoryAll, "Account category (all, cash, banks, receivables, payables, expenses, revenue, closing)")
	f.StringVar(&ff.accounts, "a", "", "Comma separated account numbers. Overrides -c")
	f.StringVar(&ff.from, "from", "", "First date, YYYY-MM-DD. Defaults to the first ledger entry")
	f.StringVar(&ff.to, "to", "", "Last date, YYYY-MM-DD. Defaults to the last ledger entry")
}

func (ff *filterFlags) filter() (ledger.Filter, error) {
	f := ledger.Filter{Category: strings.TrimSpace(ff.category)}
	for _, a := range strings.Split(ff.accounts, ",") {
		if a = core.NormalizeAccountID(a); a != "" {
			f.Accounts = append(f.Accounts, a)
		}
	}
	var ok bool
	if ff.from != "" {
		if f.Range.Start, ok = core.ParseDateStrict(ff.from); !ok {
			return ledger.Filter{}, fmt.Errorf("invalid -from date %q, want YYYY-MM-DD", ff.from)
		}
	}
	if ff.to != "" {
		if f.Range.End, ok = core.ParseDateStrict(ff.to); !ok {
			return ledger.Filter{}, fmt.Errorf("invalid -to date %q, want YYYY-MM-DD", ff.to)
		}
	}
	return f, nil
}

// printMarkdown renders md for the terminal, or prints it as is with -raw or
// when rendering fails.
func printMarkdown(md string) {
	if *rawOutput {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
