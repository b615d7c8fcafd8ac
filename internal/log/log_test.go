package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestNewJSONLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf}).WithComponent(ComponentLoader)

	logger.Info("tables loaded", FieldEntries, 3)
	logger.Debug("hidden")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != ComponentLoader {
		t.Errorf("component = %v, want %s", entry[FieldComponent], ComponentLoader)
	}
	if entry[FieldEntries] != float64(3) {
		t.Errorf("entries = %v, want 3", entry[FieldEntries])
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithFilter("cash", nil, "2025-01-01", "").
		WithError(errors.New("boom")).
		WithError(nil).
		WithRequestID("")

	if f[FieldRangeEnd] != "open" || f[FieldRangeStart] != "2025-01-01" {
		t.Errorf("unexpected range fields: %v", f)
	}
	if _, ok := f[FieldAccounts]; ok {
		t.Error("accounts should be omitted when empty")
	}
	if _, ok := f[FieldRequestID]; ok {
		t.Error("empty request id should be omitted")
	}
	if f[FieldError] != "boom" {
		t.Errorf("error = %v, want boom", f[FieldError])
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Errorf("ToSlice() should hold key value pairs")
	}
}

func TestMiddlewareLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Output: &buf})

	var fromCtx *Logger
	h := middleware.RequestID(Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = FromContext(r.Context())
		http.Error(w, "no data", http.StatusNotFound)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export.csv?category=cash", nil))

	if fromCtx == nil || fromCtx.Component() != ComponentHTTP {
		t.Fatalf("handler should see the request logger, got %+v", fromCtx)
	}
	out := buf.String()
	for _, want := range []string{"level=WARN", "status_code=404", "path=/export.csv", "request_id="} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if l := FromContext(context.Background()); l.Component() != "unknown" {
		t.Errorf("component = %s, want unknown", l.Component())
	}
	l := New(DefaultConfig())
	if got := FromContext(WithContext(context.Background(), l)); got != l {
		t.Error("expected stored logger")
	}
}
