// Package pipeline holds the sync commands' run logic. Every pipeline is a
// sequential pass: one provider call at a time, one fixture at a time, so a
// run never competes with itself for a provider's rate budget.
package pipeline

import (
	"context"
	"time"

	"github.com/avolkov/linesync/external/oddsapi"
	"github.com/avolkov/linesync/external/sportmonks"
)

// Provider labels stamped on synced rows.
const (
	ProviderSportMonks = "sportmonks"
	ProviderOddsAPI    = "oddsapi"
)

// Options narrows a pipeline run. Zero values select everything.
type Options struct {
	Limit      int
	LeagueIDs  []int64
	SeasonIDs  []int64
	FixtureIDs []int64

	// SkipExisting skips work units that already have rows, making reruns
	// cheap on provider quota.
	SkipExisting bool
}

// Summary reports what a run did. Failed counts work units that errored and
// were skipped over; the run itself still succeeds unless the error was
// terminal (rate budget exhausted, context cancelled, storage down).
type Summary struct {
	Processed int
	Changed   int
	Deleted   int
	Skipped   int
	Failed    int
}

// SportMonksAPI is the slice of the primary provider the pipelines consume.
type SportMonksAPI interface {
	LeagueByID(ctx context.Context, leagueID int64) (sportmonks.League, error)
	SeasonsByLeague(ctx context.Context, leagueID int64) ([]sportmonks.Season, error)
	SeasonSchedule(ctx context.Context, seasonID int64) ([]sportmonks.ScheduleFixture, []sportmonks.TeamInfo, error)
	FixtureLineups(ctx context.Context, fixtureID int64) ([]sportmonks.LineupEntry, error)
	PreMatchOdds(ctx context.Context, fixtureID, bookmakerID int64) (sportmonks.OddsQuote, error)
}

// OddsHistoryAPI is the slice of the odds provider the pipelines consume.
type OddsHistoryAPI interface {
	HistoricalEvents(ctx context.Context, sportKey string, snapshotAt, from, to time.Time) (oddsapi.Snapshot[[]oddsapi.Event], error)
	HistoricalEventOdds(ctx context.Context, sportKey, eventID string, snapshotAt time.Time, region, bookmaker string) (oddsapi.Snapshot[oddsapi.Quote], error)
}
