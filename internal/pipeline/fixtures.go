package pipeline

import (
	"context"
	"fmt"

	"github.com/avolkov/linesync/internal/domain/fixture"
	"github.com/avolkov/linesync/internal/domain/season"
	"github.com/avolkov/linesync/internal/platform/logging"
)

// FixtureSyncer mirrors the schedules of the selected seasons.
type FixtureSyncer struct {
	api      SportMonksAPI
	seasons  season.Repository
	fixtures fixture.Repository
	logger   *logging.Logger

	// extendOnly limits the run to seasons that have no fixtures yet, for
	// topping up newly configured seasons without re-walking everything.
	extendOnly bool
}

func NewFixtureSyncer(api SportMonksAPI, seasons season.Repository, fixtures fixture.Repository, logger *logging.Logger) *FixtureSyncer {
	return &FixtureSyncer{api: api, seasons: seasons, fixtures: fixtures, logger: logger}
}

func (s *FixtureSyncer) ExtendOnly() *FixtureSyncer {
	s.extendOnly = true
	return s
}

func (s *FixtureSyncer) Run(ctx context.Context, opts Options) (Summary, error) {
	filter := season.Filter{LeagueIDs: opts.LeagueIDs, SeasonIDs: opts.SeasonIDs}

	var selected []season.Season
	var err error
	if s.extendOnly {
		selected, err = s.seasons.ListWithoutFixtures(ctx, ProviderSportMonks, filter)
	} else {
		selected, err = s.seasons.List(ctx, filter)
	}
	if err != nil {
		return Summary{}, fmt.Errorf("list seasons: %w", err)
	}
	if len(selected) == 0 {
		if s.extendOnly {
			return Summary{}, nil
		}
		return Summary{}, fmt.Errorf("sync fixtures: selection matched no seasons")
	}

	var summary Summary
	seasonIDs := make([]int64, 0, len(selected))
	keep := make([]int64, 0, 512)

	for _, sn := range selected {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		schedule, _, err := s.api.SeasonSchedule(ctx, sn.ID)
		if err != nil {
			return summary, fmt.Errorf("fetch schedule for season %d: %w", sn.ID, err)
		}
		seasonIDs = append(seasonIDs, sn.ID)

		toUpsert := make([]fixture.Fixture, 0, len(schedule))
		for _, item := range schedule {
			summary.Processed++
			f := fixture.Fixture{
				ID:         item.ID,
				Kickoff:    item.StartingAt,
				LeagueID:   sn.LeagueID,
				SeasonID:   sn.ID,
				HomeTeamID: item.HomeTeamID,
				AwayTeamID: item.AwayTeamID,
				HomeGoals:  item.HomeGoals,
				AwayGoals:  item.AwayGoals,
				Provider:   ProviderSportMonks,
			}
			if err := f.Validate(); err != nil {
				s.logger.WarnContext(ctx, "skipping invalid fixture",
					"fixture_id", item.ID,
					"season_id", sn.ID,
					"error", err.Error(),
				)
				summary.Failed++
				continue
			}
			toUpsert = append(toUpsert, f)
			keep = append(keep, f.ID)
		}

		changed, err := s.fixtures.Upsert(ctx, toUpsert)
		if err != nil {
			return summary, fmt.Errorf("upsert fixtures for season %d: %w", sn.ID, err)
		}
		summary.Changed += changed
	}

	// extend-only runs add, never remove: a season with fixtures was out of
	// scope, so its rows must not count against the keep set.
	if !s.extendOnly {
		deleted, err := s.fixtures.DeleteComplement(ctx, ProviderSportMonks, seasonIDs, keep)
		if err != nil {
			return summary, fmt.Errorf("delete stale fixtures: %w", err)
		}
		summary.Deleted = deleted
	}

	s.logger.InfoContext(ctx, "fixture sync finished",
		"seasons", len(seasonIDs),
		"processed", summary.Processed,
		"changed", summary.Changed,
		"deleted", summary.Deleted,
		"failed", summary.Failed,
	)

	return summary, nil
}
