package cache

import (
	"context"
	"time"
)

// Noop stands in when no redis endpoint is configured. Every lookup is
// a miss, so callers fall through to the store.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, error)               { return "", nil }
func (Noop) Set(context.Context, string, string, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error                  { return nil }
