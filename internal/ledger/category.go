package ledger

import "ledgerview/internal/core"

// Category is a named account grouping matched by number prefix.
type Category struct {
	Key      string
	Label    string
	Prefixes []string // empty matches every account
}

// Matches reports whether the account belongs to the category.
func (c Category) Matches(account string) bool {
	return core.MatchesPrefix(account, c.Prefixes)
}

// CategoryAll is the default category.
const CategoryAll = "all"

var categories = []Category{
	{Key: CategoryAll, Label: "All accounts"},
	{Key: "cash", Label: "Cash (10xx)", Prefixes: []string{"10"}},
	{Key: "banks", Label: "Banks (102x)", Prefixes: []string{"102"}},
	{Key: "receivables", Label: "Receivables (11xx)", Prefixes: []string{"11"}},
	{Key: "payables", Label: "Payables (20xx)", Prefixes: []string{"20"}},
	{Key: "expenses", Label: "Expenses (4-6xxx)", Prefixes: []string{"4", "5", "6"}},
	{Key: "revenue", Label: "Revenue (3xxx)", Prefixes: []string{"3"}},
	{Key: "closing", Label: "Closing (9xxx)", Prefixes: []string{"9"}},
}

// Categories returns the fixed category list, default first.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// LookupCategory resolves a key; unknown or empty keys resolve to the default.
func LookupCategory(key string) Category {
	for _, c := range categories {
		if c.Key == key {
			return c
		}
	}
	return categories[0]
}
