package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/avolkov/linesync/internal/domain/season"
	"github.com/avolkov/linesync/internal/platform/logging"
)

// SeasonSyncer mirrors the selected leagues' seasons, optionally narrowed to
// a configured set of season names such as "2024/2025".
type SeasonSyncer struct {
	api         SportMonksAPI
	seasons     season.Repository
	seasonNames []string
	logger      *logging.Logger
}

func NewSeasonSyncer(api SportMonksAPI, seasons season.Repository, seasonNames []string, logger *logging.Logger) *SeasonSyncer {
	return &SeasonSyncer{api: api, seasons: seasons, seasonNames: seasonNames, logger: logger}
}

func (s *SeasonSyncer) Run(ctx context.Context, opts Options) (Summary, error) {
	if len(opts.LeagueIDs) == 0 {
		return Summary{}, fmt.Errorf("sync seasons: no league ids selected")
	}

	var summary Summary
	keep := make([]int64, 0, 64)
	toUpsert := make([]season.Season, 0, 64)

	for _, leagueID := range opts.LeagueIDs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		fetched, err := s.api.SeasonsByLeague(ctx, leagueID)
		if err != nil {
			return summary, fmt.Errorf("fetch seasons for league %d: %w", leagueID, err)
		}

		for _, item := range fetched {
			summary.Processed++
			if !s.wantSeason(item.Name) {
				summary.Skipped++
				continue
			}
			toUpsert = append(toUpsert, season.Season{
				ID:        item.ID,
				Name:      item.Name,
				LeagueID:  leagueID,
				IsCurrent: item.IsCurrent,
				Provider:  ProviderSportMonks,
			})
			keep = append(keep, item.ID)
		}
	}

	if len(toUpsert) == 0 {
		return summary, fmt.Errorf("sync seasons: selection matched no seasons")
	}

	changed, err := s.seasons.Upsert(ctx, toUpsert)
	if err != nil {
		return summary, fmt.Errorf("upsert seasons: %w", err)
	}
	summary.Changed = changed

	deleted, err := s.seasons.DeleteComplement(ctx, ProviderSportMonks, opts.LeagueIDs, keep)
	if err != nil {
		return summary, fmt.Errorf("delete stale seasons: %w", err)
	}
	summary.Deleted = deleted

	s.logger.InfoContext(ctx, "season sync finished",
		"processed", summary.Processed,
		"changed", summary.Changed,
		"deleted", summary.Deleted,
		"skipped", summary.Skipped,
	)

	return summary, nil
}

// wantSeason accepts an exact label ("2024/2025") or a start year ("2024")
// that matches the label's leading segment.
func (s *SeasonSyncer) wantSeason(name string) bool {
	if len(s.seasonNames) == 0 {
		return true
	}
	for _, want := range s.seasonNames {
		if name == want {
			return true
		}
		if len(want) == 4 && strings.HasPrefix(name, want) {
			return true
		}
	}
	return false
}
