package season

import "context"

type Repository interface {
	Upsert(ctx context.Context, seasons []Season) (int, error)
	DeleteComplement(ctx context.Context, provider string, leagueIDs []int64, keepIDs []int64) (int, error)
	List(ctx context.Context, filter Filter) ([]Season, error)
	// ListWithoutFixtures returns selected seasons that have no fixtures yet,
	// which is the work set for extend-only fixture runs.
	ListWithoutFixtures(ctx context.Context, provider string, filter Filter) ([]Season, error)
}
