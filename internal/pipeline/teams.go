package pipeline

import (
	"context"
	"fmt"

	"github.com/avolkov/linesync/internal/domain/season"
	"github.com/avolkov/linesync/internal/domain/team"
	"github.com/avolkov/linesync/internal/platform/logging"
)

// TeamSyncer collects the participants of the selected seasons' schedules
// and upserts them. Teams are never complement-deleted: a club relegated out
// of the selection still backs historical fixtures.
type TeamSyncer struct {
	api     SportMonksAPI
	seasons season.Repository
	teams   team.Repository
	logger  *logging.Logger
}

func NewTeamSyncer(api SportMonksAPI, seasons season.Repository, teams team.Repository, logger *logging.Logger) *TeamSyncer {
	return &TeamSyncer{api: api, seasons: seasons, teams: teams, logger: logger}
}

func (s *TeamSyncer) Run(ctx context.Context, opts Options) (Summary, error) {
	selected, err := s.seasons.List(ctx, season.Filter{LeagueIDs: opts.LeagueIDs, SeasonIDs: opts.SeasonIDs})
	if err != nil {
		return Summary{}, fmt.Errorf("list seasons: %w", err)
	}
	if len(selected) == 0 {
		return Summary{}, fmt.Errorf("sync teams: selection matched no seasons")
	}

	var summary Summary
	seen := map[int64]team.Team{}

	for _, sn := range selected {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		_, participants, err := s.api.SeasonSchedule(ctx, sn.ID)
		if err != nil {
			return summary, fmt.Errorf("fetch schedule for season %d: %w", sn.ID, err)
		}

		for _, info := range participants {
			if _, ok := seen[info.ID]; ok {
				continue
			}
			seen[info.ID] = team.Team{
				ID:        info.ID,
				Name:      info.Name,
				ShortCode: info.ShortCode,
				Provider:  ProviderSportMonks,
			}
		}
	}

	toUpsert := make([]team.Team, 0, len(seen))
	for _, t := range seen {
		toUpsert = append(toUpsert, t)
	}
	summary.Processed = len(toUpsert)

	changed, err := s.teams.Upsert(ctx, toUpsert)
	if err != nil {
		return summary, fmt.Errorf("upsert teams: %w", err)
	}
	summary.Changed = changed

	s.logger.InfoContext(ctx, "team sync finished",
		"processed", summary.Processed,
		"changed", summary.Changed,
	)

	return summary, nil
}
