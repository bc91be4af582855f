package fixture

import "context"

type Repository interface {
	Upsert(ctx context.Context, fixtures []Fixture) (int, error)
	// DeleteComplement removes the provider's fixtures in the given seasons
	// whose id is not in keepIDs.
	DeleteComplement(ctx context.Context, provider string, seasonIDs []int64, keepIDs []int64) (int, error)
	List(ctx context.Context, filter Filter) ([]Fixture, error)
}
