package core

import (
	"strings"
	"time"
)

// Date is a calendar date. The zero value is the undated marker used for
// cells that could not be parsed.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Valid reports whether the date was parsed.
func (d Date) Valid() bool {
	return !d.IsZero()
}

// String formats the date as YYYY-MM-DD, or "" when undated.
func (d Date) String() string {
	if !d.Valid() {
		return ""
	}
	return d.Format(time.DateOnly)
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006",
	"02.01.2006 15:04:05",
	"02/01/2006",
	"2006/01/02",
}

// ParseDate parses a raw cell into a calendar date, keeping only the day.
// Unparsable values yield the undated marker.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day())
		}
	}
	return Date{}
}

// ParseDateStrict parses a YYYY-MM-DD date, returning ok=false on any error.
// Used for user-supplied filter bounds where strictness is wanted.
func ParseDateStrict(s string) (Date, bool) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, false
	}
	return NewDate(t.Year(), int(t.Month()), t.Day()), true
}
