package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/linesync/internal/domain/teamrating"
	qb "github.com/avolkov/linesync/internal/platform/querybuilder"
	"github.com/avolkov/linesync/internal/platform/syncengine"
)

type teamRatingRowModel struct {
	FixtureID int64   `db:"fixture_id"`
	TeamID    int64   `db:"team_id"`
	Average   float64 `db:"avg_rating"`
}

type TeamRatingRepository struct {
	db     *sqlx.DB
	engine *syncengine.Engine
}

func NewTeamRatingRepository(db *sqlx.DB, engine *syncengine.Engine) *TeamRatingRepository {
	return &TeamRatingRepository{db: db, engine: engine}
}

func (r *TeamRatingRepository) ComputeFromLineups(ctx context.Context, seasonIDs []int64) ([]teamrating.Rating, error) {
	builder := qb.Select("l.fixture_id", "l.team_id", "AVG(l.rating) AS avg_rating").
		From("lineups l JOIN fixtures f ON f.id = l.fixture_id").
		Where(qb.Expr("l.rating IS NOT NULL")).
		GroupBy("l.fixture_id", "l.team_id").
		OrderBy("l.fixture_id", "l.team_id")
	if len(seasonIDs) > 0 {
		builder = builder.Where(qb.In("f.season_id", int64Args(seasonIDs)))
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build team rating aggregate query: %w", err)
	}

	var rows []teamRatingRowModel
	if err := selectRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("aggregate team ratings: %w", err)
	}

	out := make([]teamrating.Rating, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamrating.Rating{
			FixtureID: row.FixtureID,
			TeamID:    row.TeamID,
			Average:   row.Average,
		})
	}

	return out, nil
}

func (r *TeamRatingRepository) Upsert(ctx context.Context, ratings []teamrating.Rating) (int, error) {
	rows := make([]syncengine.Row, 0, len(ratings))
	for _, rating := range ratings {
		rows = append(rows, syncengine.Row{
			"fixture_id": rating.FixtureID,
			"team_id":    rating.TeamID,
			"avg_rating": rating.Average,
		})
	}

	return r.engine.UpsertIfChanged(ctx, teamRatingsTable, rows)
}
