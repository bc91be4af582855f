package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/avolkov/linesync/internal/reconcile"
)

type countingEventSource struct {
	calls int
}

func (s *countingEventSource) Events(ctx context.Context, sportKey string, snapshotAt, from, to time.Time) ([]reconcile.Candidate, error) {
	s.calls++
	return []reconcile.Candidate{{EventID: "ev-" + sportKey}}, nil
}

func TestCachedEventSourceMemoizesIdenticalQueries(t *testing.T) {
	t.Parallel()

	inner := &countingEventSource{}
	source := NewCachedEventSource(inner)

	at := time.Date(2024, 8, 17, 15, 0, 0, 0, time.UTC)
	from := at.Add(-12 * time.Hour)
	to := at.Add(12 * time.Hour)

	for i := 0; i < 3; i++ {
		got, err := source.Events(context.Background(), "soccer_epl", at, from, to)
		if err != nil {
			t.Fatalf("events: %v", err)
		}
		if len(got) != 1 || got[0].EventID != "ev-soccer_epl" {
			t.Fatalf("unexpected candidates: %+v", got)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected a single upstream call, got %d", inner.calls)
	}

	if _, err := source.Events(context.Background(), "soccer_epl", at.Add(time.Hour), from, to); err != nil {
		t.Fatalf("events: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected distinct snapshot to miss the cache, got %d calls", inner.calls)
	}
}
