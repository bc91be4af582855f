package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/avolkov/linesync/internal/platform/cache"
	"github.com/avolkov/linesync/internal/reconcile"
)

// Fixtures from the same league kick off in shared windows, so the same
// historical events query repeats across candidates within one run.
const eventCacheTTL = 10 * time.Minute

// cachedEventSource memoizes event lookups for the duration of a run.
type cachedEventSource struct {
	source reconcile.EventSource
	store  *cache.Store
}

func NewCachedEventSource(source reconcile.EventSource) reconcile.EventSource {
	return &cachedEventSource{
		source: source,
		store:  cache.NewStore(eventCacheTTL),
	}
}

func (c *cachedEventSource) Events(ctx context.Context, sportKey string, snapshotAt, from, to time.Time) ([]reconcile.Candidate, error) {
	key := fmt.Sprintf("events:%s:%d:%d:%d", sportKey, snapshotAt.Unix(), from.Unix(), to.Unix())
	value, err := c.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return c.source.Events(ctx, sportKey, snapshotAt, from, to)
	})
	if err != nil {
		return nil, err
	}

	candidates, ok := value.([]reconcile.Candidate)
	if !ok {
		return nil, fmt.Errorf("unexpected cache entry for %s", sportKey)
	}
	return candidates, nil
}
