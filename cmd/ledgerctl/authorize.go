package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/oauth2"

	"ledgerview/internal/cli"
	"ledgerview/internal/config"
	"ledgerview/internal/sources/sheets"
)

type authorizeCmd struct {
	tokenFile string
	port      string
	timeout   time.Duration
}

func (*authorizeCmd) Name() string     { return "authorize" }
func (*authorizeCmd) Synopsis() string { return "grant read access to the spreadsheet with a Google account" }
func (*authorizeCmd) Usage() string {
	return `ledgerctl authorize [-t <token file>] [-p <port>]

  Runs the OAuth consent flow for GOOGLE_OAUTH_CLIENT_FILE or
  GOOGLE_OAUTH_CLIENT_JSON and saves the token used by the sheets backend
  when GOOGLE_OAUTH_TOKEN_FILE is set. The OAuth client must allow the
  redirect URI http://localhost:<port>/callback.
`
}

func (c *authorizeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tokenFile, "t", "", "Token file to write. Defaults to GOOGLE_OAUTH_TOKEN_FILE or token.json")
	f.StringVar(&c.port, "p", "", "Local callback port. Defaults to OAUTH_REDIRECT_PORT")
	f.DurationVar(&c.timeout, "timeout", 5*time.Minute, "How long to wait for the consent")
}

func (c *authorizeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cli.LoadEnvFile()
	cfg := config.Load()

	tokenFile := firstNonEmpty(c.tokenFile, cfg.GoogleOAuthTokenFile, "token.json")
	port := firstNonEmpty(c.port, cfg.OAuthRedirectPort, "8085")

	client, err := sheets.ClientJSON(cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	oauthCfg, err := sheets.OAuthConfig(client, "http://localhost:"+port+"/callback")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tok, err := authorize(ctx, oauthCfg, ":"+port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := sheets.SaveToken(tokenFile, tok); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Saved token to %s\n", tokenFile)
	return subcommands.ExitSuccess
}

// authorize prints the consent URL and waits on addr for the redirect
// carrying the authorization code.
func authorize(ctx context.Context, cfg *oauth2.Config, addr string) (*oauth2.Token, error) {
	codes := make(chan string, 1)
	failures := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if msg := r.URL.Query().Get("error"); msg != "" {
			http.Error(w, "OAuth error: "+msg, http.StatusBadRequest)
			select {
			case failures <- fmt.Errorf("consent refused: %s", msg):
			default:
			}
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		select {
		case codes <- r.URL.Query().Get("code"):
		default:
		}
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failures <- err
		}
	}()
	defer srv.Close()

	fmt.Printf("Open this URL to authorize:\n%s\n", cfg.AuthCodeURL("ledgerctl", oauth2.AccessTypeOffline))

	select {
	case code := <-codes:
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("token exchange: %w", err)
		}
		return tok, nil
	case err := <-failures:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization not completed: %w", ctx.Err())
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
