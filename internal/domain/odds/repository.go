package odds

import "context"

type Repository interface {
	Upsert(ctx context.Context, snapshots []Snapshot) (int, error)
	// HasTimeline reports whether the fixture already has any timeline rows
	// for the provider label, the basis for --skip-existing.
	HasTimeline(ctx context.Context, fixtureID int64, provider string) (bool, error)
	HasSlot(ctx context.Context, fixtureID int64, slot, provider string) (bool, error)
}
