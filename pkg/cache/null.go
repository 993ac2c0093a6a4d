package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. Every Get misses, so the pipeline lays out and
// renders each tree from scratch. Reason records why caching is off, for
// the caller to log.
type NullCache struct {
	Reason string
}

// NewNullCache returns a NullCache with no reason attached.
func NewNullCache() Cache {
	return &NullCache{}
}

// Disabled returns a NullCache that remembers why caching is off.
func Disabled(reason string) Cache {
	return &NullCache{Reason: reason}
}

// DisabledReason reports whether c is a NullCache and, if so, why.
func DisabledReason(c Cache) (string, bool) {
	nc, ok := c.(*NullCache)
	if !ok {
		return "", false
	}
	return nc.Reason, true
}

func (c *NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (c *NullCache) Delete(context.Context, string) error { return nil }

func (c *NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
