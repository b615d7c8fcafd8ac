package core

import (
	"strings"
	"time"
)

// UnknownAccountName is shown for ledger accounts missing from the chart of accounts.
const UnknownAccountName = "Unknown account"

type (
	// LedgerRow is one general-ledger line as read from the source.
	// Cells are kept as text; coercion happens in the ledger package.
	LedgerRow struct {
		Account   string `json:"account"`
		Date      string `json:"date"`
		Debit     string `json:"debit"`
		Credit    string `json:"credit"`
		Narrative string `json:"narrative"`
	}

	// Account is a chart-of-accounts entry.
	Account struct {
		Number string `json:"number"`
		Name   string `json:"name"`
	}

	// StatementRow is a balance-sheet or income-statement line. Values holds
	// every other column keyed by its header, typically one per year.
	StatementRow struct {
		AccountNumber string            `json:"account_number"`
		AccountName   string            `json:"account_name"`
		Values        map[string]string `json:"values"`
	}

	// Statement is a pass-through table displayed verbatim.
	Statement struct {
		Columns []string       `json:"columns"`
		Rows    []StatementRow `json:"rows"`
	}

	// Tables groups the four result sets produced by one load.
	Tables struct {
		Ledger          []LedgerRow `json:"ledger"`
		BalanceSheet    Statement   `json:"balance_sheet"`
		IncomeStatement Statement   `json:"income_statement"`
		Accounts        []Account   `json:"accounts"`
		LoadedAt        time.Time   `json:"loaded_at"`
	}
)

// Value returns the raw cell for column, or "" when absent.
func (r StatementRow) Value(column string) string {
	if r.Values == nil {
		return ""
	}
	return r.Values[column]
}

// HasColumn reports whether the statement carries the given column.
func (s Statement) HasColumn(column string) bool {
	for _, c := range s.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Empty reports whether the statement has no rows.
func (s Statement) Empty() bool {
	return len(s.Rows) == 0
}

// Counts returns the row count of each table, for logging.
func (t Tables) Counts() (ledger, balance, income, accounts int) {
	return len(t.Ledger), len(t.BalanceSheet.Rows), len(t.IncomeStatement.Rows), len(t.Accounts)
}

// MatchesPrefix reports whether the account number starts with any of the prefixes.
// An empty prefix list matches every account.
func MatchesPrefix(account string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(account, p) {
			return true
		}
	}
	return false
}
