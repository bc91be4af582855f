package pipeline

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/avolkov/linesync/internal/domain/fixturematch"
	"github.com/avolkov/linesync/internal/platform/logging"
	"github.com/avolkov/linesync/internal/platform/resilience"
	"github.com/avolkov/linesync/internal/reconcile"
)

const (
	strictMatchWindow  = 12 * time.Hour
	relaxedMatchWindow = 24 * time.Hour
)

// FixtureMatcher links local fixtures to the odds provider's events. The
// strict pass requires both team names curated; the relaxed pass accepts a
// single curated side and widens the kickoff window, for mopping up after
// the mapping files have been partially filled.
type FixtureMatcher struct {
	matches fixturematch.Repository
	matcher *reconcile.Matcher
	logger  *logging.Logger

	relaxed bool
	window  time.Duration
}

func NewFixtureMatcher(matches fixturematch.Repository, events reconcile.EventSource, logger *logging.Logger) *FixtureMatcher {
	return &FixtureMatcher{
		matches: matches,
		matcher: reconcile.NewMatcher(events, logger),
		logger:  logger,
	}
}

func (m *FixtureMatcher) Relaxed() *FixtureMatcher {
	m.relaxed = true
	return m
}

// WithWindow overrides the kickoff window of the selected mode.
func (m *FixtureMatcher) WithWindow(window time.Duration) *FixtureMatcher {
	m.window = window
	return m
}

func (m *FixtureMatcher) Run(ctx context.Context, opts Options) (Summary, error) {
	candidates, err := m.matches.ListCandidates(ctx, fixturematch.Filter{
		LeagueIDs:     opts.LeagueIDs,
		SeasonIDs:     opts.SeasonIDs,
		OnlyUnmatched: true,
		Limit:         opts.Limit,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("list matching candidates: %w", err)
	}

	// Strict demands both sides curated and both sides matched; relaxed
	// settles for one of each inside a wider window.
	requiredSides := 2
	window := strictMatchWindow
	if m.relaxed {
		requiredSides = 1
		window = relaxedMatchWindow
	}
	if m.window > 0 {
		window = m.window
	}

	var summary Summary
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if c.SportKey == "" || c.MappedSides() < requiredSides {
			summary.Skipped++
			continue
		}
		summary.Processed++

		result, err := m.matcher.Match(ctx, reconcile.MatchInput{
			SportKey: c.SportKey,
			Kickoff:  c.Kickoff,
			HomeName: c.HomeExternal,
			AwayName: c.AwayExternal,
			Window:   window,
			MinScore: requiredSides,
		})
		if err != nil {
			if crerr.Is(err, resilience.ErrRateLimitExceeded) || ctx.Err() != nil {
				return summary, err
			}
			m.logger.WarnContext(ctx, "matching failed for fixture",
				"fixture_id", c.FixtureID,
				"error", err.Error(),
			)
			summary.Failed++
			continue
		}
		if !result.Matched {
			m.logger.InfoContext(ctx, "no event matched fixture",
				"fixture_id", c.FixtureID,
				"kickoff", c.Kickoff,
			)
			summary.Skipped++
			continue
		}

		changed, err := m.matches.Upsert(ctx, []fixturematch.Match{{
			FixtureID:    c.FixtureID,
			LeagueID:     c.LeagueID,
			EventID:      result.EventID,
			HomeTeam:     result.HomeTeam,
			AwayTeam:     result.AwayTeam,
			CommenceTime: result.CommenceTime,
		}})
		if err != nil {
			return summary, fmt.Errorf("save match for fixture %d: %w", c.FixtureID, err)
		}
		summary.Changed += changed
	}

	m.logger.InfoContext(ctx, "fixture matching finished",
		"relaxed", m.relaxed,
		"processed", summary.Processed,
		"changed", summary.Changed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)

	return summary, nil
}

// eventSource adapts the odds provider's historical events endpoint to the
// matcher's view of candidates.
type eventSource struct {
	api OddsHistoryAPI
}

func NewEventSource(api OddsHistoryAPI) reconcile.EventSource {
	return eventSource{api: api}
}

func (s eventSource) Events(ctx context.Context, sportKey string, snapshotAt, from, to time.Time) ([]reconcile.Candidate, error) {
	snapshot, err := s.api.HistoricalEvents(ctx, sportKey, snapshotAt, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]reconcile.Candidate, 0, len(snapshot.Data))
	for _, event := range snapshot.Data {
		out = append(out, reconcile.Candidate{
			EventID:      event.ID,
			HomeTeam:     event.HomeTeam,
			AwayTeam:     event.AwayTeam,
			CommenceTime: event.CommenceTime,
		})
	}

	return out, nil
}
