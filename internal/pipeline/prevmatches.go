package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/avolkov/linesync/internal/domain/fixture"
	"github.com/avolkov/linesync/internal/domain/prevmatch"
	"github.com/avolkov/linesync/internal/platform/logging"
)

// PrevMatchSyncer derives, for every (fixture, team) pair, the ids of the
// team's up-to-five preceding fixtures in the same season. The result anchors
// the odds timeline on the previous matchday.
type PrevMatchSyncer struct {
	fixtures    fixture.Repository
	prevMatches prevmatch.Repository
	logger      *logging.Logger
}

func NewPrevMatchSyncer(fixtures fixture.Repository, prevMatches prevmatch.Repository, logger *logging.Logger) *PrevMatchSyncer {
	return &PrevMatchSyncer{fixtures: fixtures, prevMatches: prevMatches, logger: logger}
}

func (s *PrevMatchSyncer) Run(ctx context.Context, opts Options) (Summary, error) {
	selected, err := s.fixtures.List(ctx, fixture.Filter{
		LeagueIDs: opts.LeagueIDs,
		SeasonIDs: opts.SeasonIDs,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("list fixtures: %w", err)
	}
	if len(selected) == 0 {
		return Summary{}, fmt.Errorf("sync previous matches: selection matched no fixtures")
	}

	entries := DerivePrevMatches(selected)

	var summary Summary
	summary.Processed = len(entries)

	changed, err := s.prevMatches.Upsert(ctx, entries)
	if err != nil {
		return Summary{}, fmt.Errorf("upsert previous matches: %w", err)
	}
	summary.Changed = changed

	keep := make([][2]int64, 0, len(entries))
	for _, e := range entries {
		keep = append(keep, [2]int64{e.FixtureID, e.TeamID})
	}
	deleted, err := s.prevMatches.DeleteComplement(ctx, ProviderSportMonks, keep)
	if err != nil {
		return summary, fmt.Errorf("delete stale previous matches: %w", err)
	}
	summary.Deleted = deleted

	s.logger.InfoContext(ctx, "previous match sync finished",
		"processed", summary.Processed,
		"changed", summary.Changed,
		"deleted", summary.Deleted,
	)

	return summary, nil
}

// DerivePrevMatches walks each team's season schedule in kickoff order and
// records the ids of the preceding fixtures, most recent first.
func DerivePrevMatches(fixtures []fixture.Fixture) []prevmatch.Entry {
	type teamSeason struct {
		seasonID int64
		teamID   int64
	}

	bySchedule := map[teamSeason][]fixture.Fixture{}
	for _, f := range fixtures {
		for _, teamID := range []int64{f.HomeTeamID, f.AwayTeamID} {
			key := teamSeason{seasonID: f.SeasonID, teamID: teamID}
			bySchedule[key] = append(bySchedule[key], f)
		}
	}

	keys := make([]teamSeason, 0, len(bySchedule))
	for key := range bySchedule {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].seasonID != keys[j].seasonID {
			return keys[i].seasonID < keys[j].seasonID
		}
		return keys[i].teamID < keys[j].teamID
	})

	var out []prevmatch.Entry
	for _, key := range keys {
		schedule := bySchedule[key]
		sort.Slice(schedule, func(i, j int) bool {
			if !schedule[i].Kickoff.Equal(schedule[j].Kickoff) {
				return schedule[i].Kickoff.Before(schedule[j].Kickoff)
			}
			return schedule[i].ID < schedule[j].ID
		})

		for i, f := range schedule {
			entry := prevmatch.Entry{
				FixtureID: f.ID,
				TeamID:    key.teamID,
				SeasonID:  key.seasonID,
			}
			for slot := 0; slot < len(entry.Prev) && i-1-slot >= 0; slot++ {
				id := schedule[i-1-slot].ID
				entry.Prev[slot] = &id
			}
			out = append(out, entry)
		}
	}

	return out
}
