package lineup

import "context"

type Repository interface {
	// ReplaceForFixture full-syncs one fixture's lineup: upsert changed rows
	// and delete players no longer listed.
	ReplaceForFixture(ctx context.Context, fixtureID int64, entries []Entry) (int, error)
	HasFixture(ctx context.Context, fixtureID int64) (bool, error)
}
