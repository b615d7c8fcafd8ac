package core

import (
	"sort"
	"strings"
)

// AccountClass is the first digit of an account number in the Swiss SME chart.
type AccountClass struct {
	Digit string
	Label string
}

var accountClasses = []AccountClass{
	{"1", "Assets"},
	{"2", "Liabilities"},
	{"3", "Revenue"},
	{"4", "Direct costs"},
	{"5", "Personnel costs"},
	{"6", "Other operating costs"},
	{"7", "Ancillary results"},
	{"8", "Extraordinary results"},
	{"9", "Closing"},
}

// AccountClasses returns the known classes in digit order.
func AccountClasses() []AccountClass {
	return append([]AccountClass(nil), accountClasses...)
}

// ClassOf returns the class of an account number; ok is false when the
// number does not start with a known class digit.
func ClassOf(account string) (AccountClass, bool) {
	if account == "" {
		return AccountClass{}, false
	}
	for _, c := range accountClasses {
		if account[:1] == c.Digit {
			return c, true
		}
	}
	return AccountClass{}, false
}

// Directory is the chart-of-accounts lookup. The first entry for a number wins.
type Directory struct {
	names    map[string]string
	accounts []Account
}

// NewDirectory builds a lookup from chart-of-accounts rows.
func NewDirectory(accounts []Account) *Directory {
	d := &Directory{names: make(map[string]string, len(accounts))}
	for _, a := range accounts {
		num := NormalizeAccountID(a.Number)
		if num == "" {
			continue
		}
		if _, dup := d.names[num]; dup {
			continue
		}
		name := strings.TrimSpace(a.Name)
		d.names[num] = name
		d.accounts = append(d.accounts, Account{Number: num, Name: name})
	}
	sort.SliceStable(d.accounts, func(i, j int) bool {
		return CompareAccountIDs(d.accounts[i].Number, d.accounts[j].Number) < 0
	})
	return d
}

// Name returns the account name, or UnknownAccountName when missing.
func (d *Directory) Name(account string) string {
	if name, ok := d.Lookup(account); ok {
		return name
	}
	return UnknownAccountName
}

// Lookup returns the account name and whether the account is known.
func (d *Directory) Lookup(account string) (string, bool) {
	if d == nil {
		return "", false
	}
	name, ok := d.names[account]
	return name, ok
}

// Accounts returns every account ordered by number.
func (d *Directory) Accounts() []Account {
	if d == nil {
		return nil
	}
	return append([]Account(nil), d.accounts...)
}

// Search returns accounts whose number or name contains term, case-insensitively.
// An empty term returns every account.
func (d *Directory) Search(term string) []Account {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return d.Accounts()
	}
	var out []Account
	for _, a := range d.Accounts() {
		if strings.Contains(strings.ToLower(a.Number), term) || strings.Contains(strings.ToLower(a.Name), term) {
			out = append(out, a)
		}
	}
	return out
}

// ClassGroup is a set of accounts sharing a class.
type ClassGroup struct {
	Class    AccountClass
	Accounts []Account
}

// GroupByClass groups accounts by class in class order. Accounts outside
// the known classes land in a trailing "Other" group.
func GroupByClass(accounts []Account) []ClassGroup {
	byDigit := map[string][]Account{}
	var other []Account
	for _, a := range accounts {
		c, ok := ClassOf(a.Number)
		if !ok {
			other = append(other, a)
			continue
		}
		byDigit[c.Digit] = append(byDigit[c.Digit], a)
	}
	var groups []ClassGroup
	for _, c := range accountClasses {
		if list := byDigit[c.Digit]; len(list) > 0 {
			groups = append(groups, ClassGroup{Class: c, Accounts: list})
		}
	}
	if len(other) > 0 {
		groups = append(groups, ClassGroup{Class: AccountClass{Label: "Other"}, Accounts: other})
	}
	return groups
}
