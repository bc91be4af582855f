package fixturematch

import "context"

type Repository interface {
	ListCandidates(ctx context.Context, filter Filter) ([]CandidateFixture, error)
	ListMatched(ctx context.Context, filter Filter) ([]Matched, error)
	Upsert(ctx context.Context, matches []Match) (int, error)
}
