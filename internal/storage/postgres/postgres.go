// Package postgres reads the four relations from a PostgreSQL database.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerview/internal/core"
	"ledgerview/internal/sources"
)

// Config holds the connection settings. Zero values get sensible defaults.
type Config struct {
	URL        string
	MaxRetries int
	RetryDelay time.Duration
	MaxConns   int32
}

type Store struct {
	pool *pgxpool.Pool
}

var _ sources.TableReader = (*Store)(nil)

// DSN builds a connection URL from discrete settings.
func DSN(host, port, user, password, dbname, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + dbname,
		RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
	}
	return u.String()
}

// Connect opens a pool and pings it, retrying with exponential backoff.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 4
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	delay := cfg.RetryDelay
	for i := 1; i <= cfg.MaxRetries; i++ {
		slog.InfoContext(ctx, "Connecting to PostgreSQL", "attempt", i, "max_attempts", cfg.MaxRetries)

		var pool *pgxpool.Pool
		pool, err = ping(ctx, poolCfg)
		if err == nil {
			slog.InfoContext(ctx, "Connected to PostgreSQL", "host", poolCfg.ConnConfig.Host, "database", poolCfg.ConnConfig.Database)
			return &Store{pool: pool}, nil
		}
		slog.WarnContext(ctx, "PostgreSQL connection failed", "attempt", i, "error", err)

		if i < cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return nil, fmt.Errorf("connect to database after %d attempts: %w", cfg.MaxRetries, err)
}

func ping(ctx context.Context, cfg *pgxpool.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	return pool, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Ping checks a pooled connection, for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("pool not initialized")
	}
	return s.pool.Ping(ctx)
}

// ReadTable runs SELECT * on the named relation. The name is quoted, so it
// is case sensitive like the relation itself.
func (s *Store) ReadTable(ctx context.Context, name string) (sources.Table, error) {
	rows, err := s.pool.Query(ctx, selectAll(name))
	if err != nil {
		return sources.Table{}, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	var t sources.Table
	for _, fd := range rows.FieldDescriptions() {
		t.Columns = append(t.Columns, fd.Name)
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return sources.Table{}, fmt.Errorf("scan %s: %w", name, err)
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = core.CellString(v)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return sources.Table{}, fmt.Errorf("iterate %s: %w", name, err)
	}
	return t, nil
}

func selectAll(name string) string {
	return "SELECT * FROM " + pgx.Identifier{name}.Sanitize()
}
