package prevmatch

import (
	"context"
	"time"
)

type Repository interface {
	Upsert(ctx context.Context, entries []Entry) (int, error)
	// DeleteComplement removes (fixture, team) pairs no longer derivable from
	// the provider's fixtures.
	DeleteComplement(ctx context.Context, provider string, keep [][2]int64) (int, error)
	// PrevKickoff resolves the kickoff time of the team's most recent match
	// before the given fixture, or nil when there is none.
	PrevKickoff(ctx context.Context, fixtureID, teamID int64) (*time.Time, error)
}
