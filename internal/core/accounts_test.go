package core

import "testing"

func TestDirectoryLookup(t *testing.T) {
	d := NewDirectory([]Account{
		{Number: "1020", Name: "Bank"},
		{Number: "1000.0", Name: "Cash"},
		{Number: "1020", Name: "Duplicate"},
		{Number: "", Name: "Blank"},
	})

	if got := d.Name("1020"); got != "Bank" {
		t.Fatalf("expected first entry to win, got %q", got)
	}
	if got := d.Name("1000"); got != "Cash" {
		t.Fatalf("expected normalized number lookup, got %q", got)
	}
	if got := d.Name("4000"); got != UnknownAccountName {
		t.Fatalf("expected sentinel, got %q", got)
	}
	accounts := d.Accounts()
	if len(accounts) != 2 || accounts[0].Number != "1000" {
		t.Fatalf("unexpected accounts: %v", accounts)
	}

	var nilDir *Directory
	if got := nilDir.Name("1000"); got != UnknownAccountName {
		t.Fatalf("nil directory should resolve to sentinel, got %q", got)
	}
}

func TestDirectorySearch(t *testing.T) {
	d := NewDirectory([]Account{
		{Number: "1020", Name: "Bank UBS"},
		{Number: "3200", Name: "Sales"},
		{Number: "1100", Name: "Receivables"},
	})
	if got := d.Search("ubs"); len(got) != 1 || got[0].Number != "1020" {
		t.Fatalf("unexpected search result: %v", got)
	}
	if got := d.Search("32"); len(got) != 1 || got[0].Name != "Sales" {
		t.Fatalf("unexpected search result: %v", got)
	}
	if got := d.Search(""); len(got) != 3 {
		t.Fatalf("empty term should return all, got %v", got)
	}
}

func TestGroupByClass(t *testing.T) {
	groups := GroupByClass([]Account{
		{Number: "3200", Name: "Sales"},
		{Number: "1020", Name: "Bank"},
		{Number: "X9", Name: "Odd"},
		{Number: "1000", Name: "Cash"},
	})
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Class.Digit != "1" || len(groups[0].Accounts) != 2 {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].Class.Label != "Revenue" {
		t.Fatalf("unexpected second group: %+v", groups[1])
	}
	if groups[2].Class.Label != "Other" {
		t.Fatalf("unexpected trailing group: %+v", groups[2])
	}
}
