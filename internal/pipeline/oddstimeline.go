package pipeline

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"

	"github.com/avolkov/linesync/external/oddsapi"
	"github.com/avolkov/linesync/internal/domain/fixturematch"
	"github.com/avolkov/linesync/internal/domain/odds"
	"github.com/avolkov/linesync/internal/domain/prevmatch"
	"github.com/avolkov/linesync/internal/oddstimeline"
	"github.com/avolkov/linesync/internal/platform/logging"
	"github.com/avolkov/linesync/internal/platform/resilience"
)

// OddsTimelineSyncer walks matched fixtures and captures the 1X2 price at
// every scheduled snapshot. A snapshot the provider cannot serve is written
// as a gap row immediately, so the timeline's positional slots stay aligned
// across fixtures. Rate budget exhaustion aborts the whole run; any other
// per-fixture failure is counted and skipped.
type OddsTimelineSyncer struct {
	api         OddsHistoryAPI
	matched     fixturematch.Repository
	prevMatches prevmatch.Repository
	odds        odds.Repository
	logger      *logging.Logger

	region    string
	bookmaker string
	provider  string
}

func NewOddsTimelineSyncer(
	api OddsHistoryAPI,
	matched fixturematch.Repository,
	prevMatches prevmatch.Repository,
	oddsRepo odds.Repository,
	region, bookmaker string,
	logger *logging.Logger,
) *OddsTimelineSyncer {
	return &OddsTimelineSyncer{
		api:         api,
		matched:     matched,
		prevMatches: prevMatches,
		odds:        oddsRepo,
		logger:      logger,
		region:      region,
		bookmaker:   bookmaker,
		provider:    ProviderOddsAPI,
	}
}

// WithProviderLabel stores snapshots under a custom provider label, for
// capturing a second bookmaker's timeline next to the default one.
func (s *OddsTimelineSyncer) WithProviderLabel(label string) *OddsTimelineSyncer {
	if label != "" {
		s.provider = label
	}
	return s
}

func (s *OddsTimelineSyncer) Run(ctx context.Context, opts Options) (Summary, error) {
	matched, err := s.matched.ListMatched(ctx, fixturematch.Filter{
		LeagueIDs: opts.LeagueIDs,
		SeasonIDs: opts.SeasonIDs,
		Limit:     opts.Limit,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("list matched fixtures: %w", err)
	}

	var summary Summary
	for _, m := range matched {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if opts.SkipExisting {
			has, err := s.odds.HasTimeline(ctx, m.FixtureID, s.provider)
			if err != nil {
				return summary, fmt.Errorf("check timeline for fixture %d: %w", m.FixtureID, err)
			}
			if has {
				summary.Skipped++
				continue
			}
		}

		if err := s.syncFixture(ctx, m, opts); err != nil {
			if crerr.Is(err, resilience.ErrRateLimitExceeded) || ctx.Err() != nil {
				return summary, err
			}
			s.logger.WarnContext(ctx, "timeline sync failed for fixture",
				"fixture_id", m.FixtureID,
				"error", err.Error(),
			)
			summary.Failed++
			continue
		}
		summary.Processed++
	}

	s.logger.InfoContext(ctx, "odds timeline sync finished",
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)

	return summary, nil
}

func (s *OddsTimelineSyncer) syncFixture(ctx context.Context, m fixturematch.Matched, opts Options) error {
	antecedent, err := s.prevMatches.PrevKickoff(ctx, m.FixtureID, m.HomeTeamID)
	if err != nil {
		return fmt.Errorf("resolve previous kickoff: %w", err)
	}

	schedule := oddstimeline.Schedule(m.Kickoff, antecedent)
	for i, stamp := range schedule {
		if err := ctx.Err(); err != nil {
			return err
		}

		slot := oddstimeline.SlotLabel(i)
		if opts.SkipExisting {
			has, err := s.odds.HasSlot(ctx, m.FixtureID, slot, s.provider)
			if err != nil {
				return fmt.Errorf("check slot %s: %w", slot, err)
			}
			if has {
				continue
			}
		}

		snapshot := odds.Snapshot{
			FixtureID:    m.FixtureID,
			Timestamp:    stamp,
			TimelineSlot: slot,
			Provider:     s.provider,
		}

		fetched, err := s.api.HistoricalEventOdds(ctx, m.SportKey, m.EventID, stamp, s.region, s.bookmaker)
		switch {
		case err == nil:
			snapshot.Home = fetched.Data.Home
			snapshot.Draw = fetched.Data.Draw
			snapshot.Away = fetched.Data.Away
		case crerr.Is(err, oddsapi.ErrEventNotFound):
			// Gap row: the provider had no snapshot for this instant.
		case crerr.Is(err, resilience.ErrRateLimitExceeded):
			return err
		default:
			s.logger.WarnContext(ctx, "snapshot fetch failed, recording gap",
				"fixture_id", m.FixtureID,
				"slot", slot,
				"error", err.Error(),
			)
		}

		if _, err := s.odds.Upsert(ctx, []odds.Snapshot{snapshot}); err != nil {
			return fmt.Errorf("save snapshot %s: %w", slot, err)
		}
	}

	return nil
}
