package teamrating

import "context"

type Repository interface {
	// ComputeFromLineups aggregates rated lineup rows into per-team fixture
	// averages; fixtures without any rated player are absent from the result.
	ComputeFromLineups(ctx context.Context, seasonIDs []int64) ([]Rating, error)
	Upsert(ctx context.Context, ratings []Rating) (int, error)
}
