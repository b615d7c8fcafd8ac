package http

import (
	"errors"
	"net/url"
	"reflect"
	"testing"

	"ledgerview/internal/core"
	"ledgerview/internal/ledger"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    ledger.Filter
		wantErr bool
	}{
		{
			name:  "empty query",
			query: "",
			want:  ledger.Filter{},
		},
		{
			name:  "category and range",
			query: "category=cash&start=2025-01-01&end=2025-03-31",
			want: ledger.Filter{
				Category: "cash",
				Range:    ledger.DateRange{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 3, 31)},
			},
		},
		{
			name:  "repeated and comma separated accounts",
			query: "account=1020&account=1000,%201100&account=1020.0",
			want:  ledger.Filter{Accounts: []string{"1020", "1000", "1100"}},
		},
		{
			name:    "bad start date",
			query:   "start=01.01.2025",
			wantErr: true,
		},
		{
			name:    "bad end date",
			query:   "end=2025-13-01",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			got, err := ParseFilter(q)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Fatalf("ParseFilter() error = %v, want ErrInvalidDate", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFilter() unexpected error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFilterQueryRoundTrip(t *testing.T) {
	f := ledger.Filter{
		Category: "banks",
		Accounts: []string{"1020", "1021"},
		Range:    ledger.DateRange{Start: core.NewDate(2025, 2, 1)},
	}
	q, err := url.ParseQuery(FilterQuery(f))
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	got, err := ParseFilter(q)
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	if !reflect.DeepEqual(got, f) {
		t.Errorf("round trip = %+v, want %+v", got, f)
	}
	if q.Has("end") {
		t.Error("open bound should not be encoded")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  10\x0020\t "); got != "1020" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}
