package pipeline

import (
	"context"
	"fmt"

	"github.com/avolkov/linesync/internal/domain/teamrating"
	"github.com/avolkov/linesync/internal/platform/logging"
)

// TeamRatingSyncer rolls rated lineup rows up into per-team fixture averages.
type TeamRatingSyncer struct {
	ratings teamrating.Repository
	logger  *logging.Logger
}

func NewTeamRatingSyncer(ratings teamrating.Repository, logger *logging.Logger) *TeamRatingSyncer {
	return &TeamRatingSyncer{ratings: ratings, logger: logger}
}

func (s *TeamRatingSyncer) Run(ctx context.Context, opts Options) (Summary, error) {
	computed, err := s.ratings.ComputeFromLineups(ctx, opts.SeasonIDs)
	if err != nil {
		return Summary{}, fmt.Errorf("compute team ratings: %w", err)
	}

	var summary Summary
	summary.Processed = len(computed)

	changed, err := s.ratings.Upsert(ctx, computed)
	if err != nil {
		return summary, fmt.Errorf("upsert team ratings: %w", err)
	}
	summary.Changed = changed

	s.logger.InfoContext(ctx, "team rating sync finished",
		"processed", summary.Processed,
		"changed", summary.Changed,
	)

	return summary, nil
}
