package pipeline

import (
	"context"
	"fmt"

	"github.com/avolkov/linesync/internal/domain/fixture"
	"github.com/avolkov/linesync/internal/domain/lineup"
	"github.com/avolkov/linesync/internal/platform/logging"
)

// LineupSyncer fetches lineups for played fixtures. Each fixture is its own
// unit of work: a provider failure on one is logged and counted, then the
// run moves on.
type LineupSyncer struct {
	api      SportMonksAPI
	fixtures fixture.Repository
	lineups  lineup.Repository
	logger   *logging.Logger
}

func NewLineupSyncer(api SportMonksAPI, fixtures fixture.Repository, lineups lineup.Repository, logger *logging.Logger) *LineupSyncer {
	return &LineupSyncer{api: api, fixtures: fixtures, lineups: lineups, logger: logger}
}

func (s *LineupSyncer) Run(ctx context.Context, opts Options) (Summary, error) {
	selected, err := s.fixtures.List(ctx, fixture.Filter{
		LeagueIDs:  opts.LeagueIDs,
		SeasonIDs:  opts.SeasonIDs,
		FixtureIDs: opts.FixtureIDs,
		PlayedOnly: true,
		Limit:      opts.Limit,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("list played fixtures: %w", err)
	}

	var summary Summary
	for _, f := range selected {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if opts.SkipExisting {
			has, err := s.lineups.HasFixture(ctx, f.ID)
			if err != nil {
				return summary, fmt.Errorf("check lineups for fixture %d: %w", f.ID, err)
			}
			if has {
				summary.Skipped++
				continue
			}
		}

		entries, err := s.api.FixtureLineups(ctx, f.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "lineup fetch failed",
				"fixture_id", f.ID,
				"error", err.Error(),
			)
			summary.Failed++
			continue
		}
		summary.Processed++

		if len(entries) == 0 {
			summary.Skipped++
			continue
		}

		toWrite := make([]lineup.Entry, 0, len(entries))
		for _, e := range entries {
			toWrite = append(toWrite, lineup.Entry{
				FixtureID:         f.ID,
				PlayerID:          e.PlayerID,
				TeamID:            e.TeamID,
				PlayerName:        e.PlayerName,
				PositionID:        e.PositionID,
				JerseyNumber:      e.JerseyNumber,
				FormationPosition: e.FormationPosition,
				Rating:            e.Rating,
			})
		}

		changed, err := s.lineups.ReplaceForFixture(ctx, f.ID, toWrite)
		if err != nil {
			return summary, fmt.Errorf("replace lineups for fixture %d: %w", f.ID, err)
		}
		summary.Changed += changed
	}

	s.logger.InfoContext(ctx, "lineup sync finished",
		"processed", summary.Processed,
		"changed", summary.Changed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)

	return summary, nil
}
