package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/linesync/internal/domain/lineup"
	qb "github.com/avolkov/linesync/internal/platform/querybuilder"
	"github.com/avolkov/linesync/internal/platform/syncengine"
)

type LineupRepository struct {
	db     *sqlx.DB
	engine *syncengine.Engine
}

func NewLineupRepository(db *sqlx.DB, engine *syncengine.Engine) *LineupRepository {
	return &LineupRepository{db: db, engine: engine}
}

func (r *LineupRepository) ReplaceForFixture(ctx context.Context, fixtureID int64, entries []lineup.Entry) (int, error) {
	rows := make([]syncengine.Row, 0, len(entries))
	keep := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, syncengine.Row{
			"fixture_id":         fixtureID,
			"player_id":          e.PlayerID,
			"team_id":            e.TeamID,
			"player_name":        e.PlayerName,
			"position_id":        e.PositionID,
			"jersey_number":      e.JerseyNumber,
			"formation_position": e.FormationPosition,
			"rating":             e.Rating,
		})
		keep = append(keep, []any{fixtureID, e.PlayerID})
	}

	upserted, err := r.engine.UpsertIfChanged(ctx, lineupsTable, rows)
	if err != nil {
		return 0, err
	}

	deleted, err := r.engine.DeleteComplement(ctx, lineupsTable, keep, qb.Eq("fixture_id", fixtureID))
	if err != nil {
		return 0, err
	}

	return upserted + deleted, nil
}

func (r *LineupRepository) HasFixture(ctx context.Context, fixtureID int64) (bool, error) {
	query, args, err := qb.Select("1").
		From("lineups").
		Where(qb.Eq("fixture_id", fixtureID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build lineup existence query: %w", err)
	}

	var one int
	if err := getRetry(ctx, r.db, &one, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check lineup existence: %w", err)
	}

	return true, nil
}
