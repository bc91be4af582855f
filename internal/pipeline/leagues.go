package pipeline

import (
	"context"
	"fmt"

	"github.com/avolkov/linesync/internal/domain/league"
	"github.com/avolkov/linesync/internal/platform/logging"
)

// LeagueSyncer mirrors the configured leagues from the primary provider.
type LeagueSyncer struct {
	api     SportMonksAPI
	leagues league.Repository
	logger  *logging.Logger
}

func NewLeagueSyncer(api SportMonksAPI, leagues league.Repository, logger *logging.Logger) *LeagueSyncer {
	return &LeagueSyncer{api: api, leagues: leagues, logger: logger}
}

// Run fetches every selected league and deletes provider rows outside the
// selection. An empty selection is refused so a config slip cannot truncate
// the table.
func (s *LeagueSyncer) Run(ctx context.Context, opts Options) (Summary, error) {
	if len(opts.LeagueIDs) == 0 {
		return Summary{}, fmt.Errorf("sync leagues: no league ids selected")
	}

	var summary Summary
	keep := make([]int64, 0, len(opts.LeagueIDs))
	toUpsert := make([]league.League, 0, len(opts.LeagueIDs))

	for _, leagueID := range opts.LeagueIDs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		fetched, err := s.api.LeagueByID(ctx, leagueID)
		if err != nil {
			return summary, fmt.Errorf("fetch league %d: %w", leagueID, err)
		}
		summary.Processed++

		l := league.League{ID: fetched.ID, Name: fetched.Name, Provider: ProviderSportMonks}
		if err := l.Validate(); err != nil {
			return summary, fmt.Errorf("league %d: %w", leagueID, err)
		}
		toUpsert = append(toUpsert, l)
		keep = append(keep, l.ID)
	}

	changed, err := s.leagues.Upsert(ctx, toUpsert)
	if err != nil {
		return summary, fmt.Errorf("upsert leagues: %w", err)
	}
	summary.Changed = changed

	deleted, err := s.leagues.DeleteComplement(ctx, ProviderSportMonks, keep)
	if err != nil {
		return summary, fmt.Errorf("delete stale leagues: %w", err)
	}
	summary.Deleted = deleted

	s.logger.InfoContext(ctx, "league sync finished",
		"processed", summary.Processed,
		"changed", summary.Changed,
		"deleted", summary.Deleted,
	)

	return summary, nil
}
