// Package sheets reads the four relations from tabs of a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"ledgerview/internal/core"
	"ledgerview/internal/sources"
)

// Config selects the spreadsheet and its credentials. A service account is
// used unless OAuthTokenFile is set. Inline JSON takes precedence over files.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string

	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenFile  string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ sources.TableReader = (*Client)(nil)

// New creates a read-only Sheets client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	id := strings.TrimSpace(cfg.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	var auth goption.ClientOption
	if strings.TrimSpace(cfg.OAuthTokenFile) != "" {
		opt, err := oauthOption(ctx, cfg)
		if err != nil {
			return nil, err
		}
		auth = opt
	} else {
		creds, err := credentials(cfg)
		if err != nil {
			return nil, err
		}
		auth = goption.WithCredentialsJSON(creds)
	}
	svc, err := gsheet.NewService(ctx, auth,
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", id)
	return &Client{svc: svc, spreadsheetID: id}, nil
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
}

// ReadTable reads a whole tab. Numbers come back unformatted, dates as the
// sheet displays them.
func (c *Client) ReadTable(ctx context.Context, name string) (sources.Table, error) {
	if c.svc == nil {
		return sources.Table{}, errors.New("sheets service not initialized")
	}
	rng := "'" + strings.ReplaceAll(name, "'", "''") + "'"
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return sources.Table{}, fmt.Errorf("get %s: %w", rng, err)
	}
	return parseValues(resp.Values), nil
}

// Close is a no-op; the service holds no pooled resources of its own.
func (c *Client) Close() error { return nil }

// parseValues turns a values matrix into a table. The first row is the
// header; trailing empty cells that the API omits are restored as "".
func parseValues(values [][]interface{}) sources.Table {
	if len(values) == 0 {
		return sources.Table{}
	}
	t := sources.Table{Columns: toStrings(values[0])}
	for _, raw := range values[1:] {
		cells := toStrings(raw)
		if blank(cells) {
			continue
		}
		row := make([]string, len(t.Columns))
		copy(row, cells)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(core.CellString(v))
	}
	return out
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
