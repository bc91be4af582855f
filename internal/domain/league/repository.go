package league

import "context"

// Repository describes league persistence needs from pipelines.
type Repository interface {
	Upsert(ctx context.Context, leagues []League) (int, error)
	DeleteComplement(ctx context.Context, provider string, keepIDs []int64) (int, error)
	List(ctx context.Context) ([]League, error)
}
