// Package loader issues the four source queries and assembles one snapshot
// of raw tables.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ledgerview/internal/core"
	"ledgerview/internal/sources"
)

// ErrLoad wraps every load failure so callers can tell source errors apart.
var ErrLoad = errors.New("load failed")

type Loader struct {
	src sources.Source
	now func() time.Time
}

func New(src sources.Source) *Loader {
	return &Loader{src: src, now: time.Now}
}

// Load runs the four queries concurrently. The first failure cancels the
// others and no partial tables are returned.
func (l *Loader) Load(ctx context.Context) (core.Tables, error) {
	start := l.now()
	var t core.Tables

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := l.src.GeneralLedger(gctx)
		if err != nil {
			return fmt.Errorf("general ledger: %w", err)
		}
		t.Ledger = rows
		return nil
	})
	g.Go(func() error {
		st, err := l.src.BalanceSheet(gctx)
		if err != nil {
			return fmt.Errorf("balance sheet: %w", err)
		}
		t.BalanceSheet = st
		return nil
	})
	g.Go(func() error {
		st, err := l.src.IncomeStatement(gctx)
		if err != nil {
			return fmt.Errorf("income statement: %w", err)
		}
		t.IncomeStatement = st
		return nil
	})
	g.Go(func() error {
		accts, err := l.src.Accounts(gctx)
		if err != nil {
			return fmt.Errorf("chart of accounts: %w", err)
		}
		t.Accounts = accts
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "Source load failed", "error", err)
		return core.Tables{}, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	t.LoadedAt = l.now()
	ledger, balance, income, accounts := t.Counts()
	slog.InfoContext(ctx, "Source tables loaded",
		"ledger_rows", ledger,
		"balance_rows", balance,
		"income_rows", income,
		"accounts", accounts,
		"duration_ms", t.LoadedAt.Sub(start).Milliseconds())
	return t, nil
}
