package http

import (
	"html/template"

	"github.com/shopspring/decimal"

	"ledgerview/internal/core"
	"ledgerview/internal/report"
)

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(v decimal.Decimal) string { return report.FormatMoney(v, s.currency) },
		"ratio": report.FormatRatio,
		"date": func(d core.Date) string {
			if !d.Valid() {
				return ""
			}
			return d.String()
		},
		"negative": func(v decimal.Decimal) bool { return v.IsNegative() },
		"yearValue": func(row report.YearlyRow, year string) decimal.Decimal {
			return row.ByYear[year]
		},
	}
}
