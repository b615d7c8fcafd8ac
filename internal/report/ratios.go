package report

import (
	"github.com/shopspring/decimal"

	"ledgerview/internal/core"
	"ledgerview/internal/ledger"
)

// RatioCategory groups ratios on the dashboard.
type RatioCategory string

const (
	Liquidity     RatioCategory = "liquidity"
	Profitability RatioCategory = "profitability"
	Structure     RatioCategory = "structure"
)

// Status is the traffic-light assessment of a ratio.
type Status string

const (
	StatusGood    Status = "good"
	StatusNeutral Status = "neutral"
	StatusBad     Status = "bad"
)

// Ratio is one computed financial ratio.
type Ratio struct {
	Name           string          `json:"name"`
	Value          decimal.Decimal `json:"value"`
	Unit           string          `json:"unit"` // "x" or "%"
	Status         Status          `json:"status"`
	Category       RatioCategory   `json:"category"`
	Interpretation string          `json:"interpretation"`
}

// Balances answers "what is the balance of every account matching these
// prefixes" for one reporting year.
type Balances struct {
	year    string
	balance core.Statement
	income  core.Statement
	book    *ledger.Book
}

// NewBalances prefers the statement year columns and falls back to ledger
// net movement when the statements carry nothing for a prefix set.
func NewBalances(tables core.Tables, book *ledger.Book, year string) *Balances {
	return &Balances{year: year, balance: tables.BalanceSheet, income: tables.IncomeStatement, book: book}
}

// Of returns the balance (debit positive) of accounts matching any prefix.
func (b *Balances) Of(prefixes ...string) decimal.Decimal {
	total := decimal.Zero
	for _, s := range []core.Statement{b.balance, b.income} {
		for _, r := range s.Rows {
			if core.MatchesPrefix(core.NormalizeAccountID(r.AccountNumber), prefixes) {
				total = total.Add(core.ParseAmount(r.Value(b.year)))
			}
		}
	}
	if !total.IsZero() || b.book == nil {
		return total
	}
	for _, e := range b.book.Entries {
		if core.MatchesPrefix(e.AccountID, prefixes) {
			total = total.Add(e.Net)
		}
	}
	return total
}

var hundred = decimal.NewFromInt(100)

// Ratios computes the liquidity, profitability and structure ratios.
// Ratios whose denominator is zero are left out.
func Ratios(tables core.Tables, book *ledger.Book, year string) []Ratio {
	b := NewBalances(tables, book, year)

	cash := b.Of("10")
	receivables := b.Of("11")
	inventory := b.Of("12")
	otherCurrent := b.Of("13")
	current := cash.Add(receivables).Add(inventory).Add(otherCurrent)
	shortTermDebt := b.Of("20", "21", "22", "23")
	equity := b.Of("28", "29")
	totalAssets := b.Of("1")

	// Revenue is credit, so negative in debit-minus-credit terms.
	revenue := b.Of("3").Abs()
	netProfit := NetIncome(tables.IncomeStatement, year).Neg()
	directCosts := b.Of("4")
	personnel := b.Of("5")
	otherCosts := b.Of("6", "7")
	ebitda := revenue.Sub(directCosts).Sub(personnel).Sub(otherCosts)

	var out []Ratio
	add := func(r Ratio) { out = append(out, r) }

	if !shortTermDebt.IsZero() {
		v := current.Div(shortTermDebt).Abs()
		add(Ratio{Name: "Current ratio", Value: v, Unit: "x", Category: Liquidity,
			Status:         grade(v, dec("1.5"), dec("1")),
			Interpretation: "Ability to cover short-term debt (> 1.5)"})

		v = current.Sub(inventory).Div(shortTermDebt).Abs()
		add(Ratio{Name: "Quick ratio", Value: v, Unit: "x", Category: Liquidity,
			Status:         gradeInclusive(v, dec("1"), dec("0.8")),
			Interpretation: "Liquidity without inventory (>= 1)"})

		v = cash.Div(shortTermDebt).Abs()
		add(Ratio{Name: "Cash ratio", Value: v, Unit: "x", Category: Liquidity,
			Status:         grade(v, dec("0.2"), dec("0.1")),
			Interpretation: "Available cash against short-term debt (> 0.2)"})
	}

	if !revenue.IsZero() {
		v := netProfit.Div(revenue).Mul(hundred)
		add(Ratio{Name: "Net margin", Value: v, Unit: "%", Category: Profitability,
			Status:         grade(v, dec("10"), dec("5")),
			Interpretation: "Share of revenue turned into profit (> 10%)"})
	}
	if !totalAssets.IsZero() {
		v := netProfit.Div(totalAssets).Mul(hundred)
		add(Ratio{Name: "ROA", Value: v, Unit: "%", Category: Profitability,
			Status:         grade(v, dec("5"), dec("2")),
			Interpretation: "Return on assets (> 5%)"})
	}
	if !equity.IsZero() {
		v := netProfit.Div(equity.Abs()).Mul(hundred)
		add(Ratio{Name: "ROE", Value: v, Unit: "%", Category: Profitability,
			Status:         grade(v, dec("10"), dec("5")),
			Interpretation: "Return on equity (> 10%)"})
	}
	if !revenue.IsZero() {
		v := ebitda.Div(revenue).Mul(hundred)
		add(Ratio{Name: "EBITDA margin", Value: v, Unit: "%", Category: Profitability,
			Status:         grade(v, dec("15"), dec("10")),
			Interpretation: "Operating profitability (> 15%)"})
	}

	if !totalAssets.IsZero() {
		v := equity.Div(totalAssets).Abs()
		status := StatusBad
		if v.GreaterThanOrEqual(dec("0.3")) && v.LessThanOrEqual(dec("0.6")) {
			status = StatusGood
		}
		add(Ratio{Name: "Equity ratio", Value: v.Mul(hundred), Unit: "%", Category: Structure,
			Status:         status,
			Interpretation: "Financial independence (30-60%)"})
	}

	for i := range out {
		out[i].Value = out[i].Value.Round(2)
	}
	return out
}

// grade is good above good, bad below bad, neutral in between.
func grade(v, good, bad decimal.Decimal) Status {
	switch {
	case v.GreaterThan(good):
		return StatusGood
	case v.LessThan(bad):
		return StatusBad
	}
	return StatusNeutral
}

func gradeInclusive(v, good, bad decimal.Decimal) Status {
	switch {
	case v.GreaterThanOrEqual(good):
		return StatusGood
	case v.LessThan(bad):
		return StatusBad
	}
	return StatusNeutral
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
