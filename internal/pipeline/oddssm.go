package pipeline

import (
	"context"
	"fmt"

	"github.com/avolkov/linesync/internal/domain/fixture"
	"github.com/avolkov/linesync/internal/domain/odds"
	"github.com/avolkov/linesync/internal/platform/logging"
)

// SportMonksOddsSyncer captures the primary provider's pre-match quote into
// the dedicated sm_odds slot, next to the positional timeline.
type SportMonksOddsSyncer struct {
	api         SportMonksAPI
	fixtures    fixture.Repository
	odds        odds.Repository
	bookmakerID int64
	logger      *logging.Logger
}

func NewSportMonksOddsSyncer(api SportMonksAPI, fixtures fixture.Repository, oddsRepo odds.Repository, bookmakerID int64, logger *logging.Logger) *SportMonksOddsSyncer {
	return &SportMonksOddsSyncer{
		api:         api,
		fixtures:    fixtures,
		odds:        oddsRepo,
		bookmakerID: bookmakerID,
		logger:      logger,
	}
}

func (s *SportMonksOddsSyncer) Run(ctx context.Context, opts Options) (Summary, error) {
	selected, err := s.fixtures.List(ctx, fixture.Filter{
		LeagueIDs:  opts.LeagueIDs,
		SeasonIDs:  opts.SeasonIDs,
		FixtureIDs: opts.FixtureIDs,
		Limit:      opts.Limit,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("list fixtures: %w", err)
	}

	var summary Summary
	for _, f := range selected {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if opts.SkipExisting {
			has, err := s.odds.HasSlot(ctx, f.ID, odds.SlotSportMonks, ProviderSportMonks)
			if err != nil {
				return summary, fmt.Errorf("check sm odds slot for fixture %d: %w", f.ID, err)
			}
			if has {
				summary.Skipped++
				continue
			}
		}

		quote, err := s.api.PreMatchOdds(ctx, f.ID, s.bookmakerID)
		if err != nil {
			s.logger.WarnContext(ctx, "pre-match odds fetch failed",
				"fixture_id", f.ID,
				"error", err.Error(),
			)
			summary.Failed++
			continue
		}
		summary.Processed++

		if quote.Empty() {
			summary.Skipped++
			continue
		}

		capturedAt := f.Kickoff
		if quote.UpdatedAt != nil {
			capturedAt = *quote.UpdatedAt
		}

		changed, err := s.odds.Upsert(ctx, []odds.Snapshot{{
			FixtureID:    f.ID,
			Timestamp:    capturedAt,
			TimelineSlot: odds.SlotSportMonks,
			Provider:     ProviderSportMonks,
			Home:         quote.Home,
			Draw:         quote.Draw,
			Away:         quote.Away,
		}})
		if err != nil {
			return summary, fmt.Errorf("save sm odds for fixture %d: %w", f.ID, err)
		}
		summary.Changed += changed
	}

	s.logger.InfoContext(ctx, "sportmonks odds sync finished",
		"processed", summary.Processed,
		"changed", summary.Changed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)

	return summary, nil
}
