package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders v in the given ISO currency with its grapheme and
// thousands separators. Unknown codes fall back to two decimals and the code.
func FormatMoney(v decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		s := v.StringFixed(2)
		if code == "" {
			return s
		}
		return s + " " + code
	}
	minor := v.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatRatio renders a ratio value with its unit.
func FormatRatio(r Ratio) string {
	if r.Unit == "%" {
		return r.Value.StringFixed(1) + "%"
	}
	return r.Value.StringFixed(2) + "x"
}
