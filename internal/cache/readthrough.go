package cache

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultLoadTimeout bounds a shared load once it no longer follows any caller.
const DefaultLoadTimeout = 30 * time.Second

// ReadThrough serves planner lookups from a Store and collapses concurrent
// loads of the same key. Store failures are logged and treated as misses.
//
// A shared load is detached from the cancellation of the caller that started
// it, so one abandoned request never fails the others waiting on the same key.
type ReadThrough struct {
	store       Store
	group       singleflight.Group
	logger      *slog.Logger
	LoadTimeout time.Duration
}

// NewReadThrough wraps store.
func NewReadThrough(store Store, logger *slog.Logger) *ReadThrough {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadThrough{store: store, logger: logger, LoadTimeout: DefaultLoadTimeout}
}

// GetOrLoad returns the cached value for key or stores the result of load.
// Errors from load are returned as is and never cached.
func (c *ReadThrough) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) (string, error)) (string, error) {
	value, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
	} else if found {
		return value, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout())
		defer cancel()

		loaded, err := load(loadCtx)
		if err != nil {
			return "", err
		}
		stored, err := c.store.SetNX(loadCtx, key, loaded, ttl)
		if err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
			return loaded, nil
		}
		return stored, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *ReadThrough) loadTimeout() time.Duration {
	if c.LoadTimeout > 0 {
		return c.LoadTimeout
	}
	return DefaultLoadTimeout
}
