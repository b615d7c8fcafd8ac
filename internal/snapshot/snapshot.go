// Package snapshot memoizes loaded tables for a fixed time to live. The
// cache is owned by the caller; refreshes are coalesced so concurrent
// requests trigger at most one source load.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"ledgerview/internal/core"
)

// DefaultTTL matches how long the dashboard may show stale source data.
const DefaultTTL = 10 * time.Minute

const key = "tables"

// loadTimeout bounds a shared load, which no longer follows any single
// caller's context.
const loadTimeout = time.Minute

// Loader produces a fresh set of tables.
type Loader interface {
	Load(ctx context.Context) (core.Tables, error)
}

// Store keeps a snapshot between requests.
type Store interface {
	Get(ctx context.Context, key string) (core.Tables, bool, error)
	Set(ctx context.Context, key string, t core.Tables, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Cache struct {
	loader Loader
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

func New(loader Loader, store Store, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{loader: loader, store: store, ttl: ttl, logger: logger}
}

// TTL returns how long a snapshot is reused.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the cached snapshot or loads a new one. Store failures are
// logged and treated as a miss so a flaky cache never hides the source.
func (c *Cache) Get(ctx context.Context) (core.Tables, error) {
	t, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "Snapshot store read failed", "error", err)
	}
	if ok {
		return t, nil
	}
	return c.load(ctx)
}

// Refresh drops the cached snapshot and loads a new one.
func (c *Cache) Refresh(ctx context.Context) (core.Tables, error) {
	if err := c.Invalidate(ctx); err != nil {
		return core.Tables{}, err
	}
	return c.load(ctx)
}

// Invalidate drops the cached snapshot; the next Get reloads.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.group.Forget(key)
	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidate snapshot: %w", err)
	}
	c.logger.InfoContext(ctx, "Snapshot invalidated")
	return nil
}

// load runs one source load for all concurrent callers. The load is
// detached from the caller that started it, so a disconnecting client
// does not fail the others; each caller still stops waiting when its own
// context ends.
func (c *Cache) load(ctx context.Context) (core.Tables, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		t, err := c.loader.Load(lctx)
		if err != nil {
			return core.Tables{}, err
		}
		if err := c.store.Set(lctx, key, t, c.ttl); err != nil {
			c.logger.WarnContext(lctx, "Snapshot store write failed", "error", err)
		}
		return t, nil
	})

	select {
	case <-ctx.Done():
		return core.Tables{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return core.Tables{}, res.Err
		}
		if res.Shared {
			c.logger.DebugContext(ctx, "Snapshot load shared with concurrent caller")
		}
		return res.Val.(core.Tables), nil
	}
}
