package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/linesync/internal/domain/prevmatch"
	qb "github.com/avolkov/linesync/internal/platform/querybuilder"
	"github.com/avolkov/linesync/internal/platform/syncengine"
)

type PrevMatchRepository struct {
	db     *sqlx.DB
	engine *syncengine.Engine
}

func NewPrevMatchRepository(db *sqlx.DB, engine *syncengine.Engine) *PrevMatchRepository {
	return &PrevMatchRepository{db: db, engine: engine}
}

func (r *PrevMatchRepository) Upsert(ctx context.Context, entries []prevmatch.Entry) (int, error) {
	rows := make([]syncengine.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, syncengine.Row{
			"fixture_id": e.FixtureID,
			"team_id":    e.TeamID,
			"season_id":  e.SeasonID,
			"prev_1":     e.Prev[0],
			"prev_2":     e.Prev[1],
			"prev_3":     e.Prev[2],
			"prev_4":     e.Prev[3],
			"prev_5":     e.Prev[4],
		})
	}

	return r.engine.UpsertIfChanged(ctx, previousMatchesTable, rows)
}

func (r *PrevMatchRepository) DeleteComplement(ctx context.Context, provider string, keep [][2]int64) (int, error) {
	tuples := make([][]any, 0, len(keep))
	for _, pair := range keep {
		tuples = append(tuples, []any{pair[0], pair[1]})
	}

	scope := qb.Expr("fixture_id IN (SELECT id FROM fixtures WHERE provider = $1)", provider)
	return r.engine.DeleteComplement(ctx, previousMatchesTable, tuples, scope)
}

func (r *PrevMatchRepository) PrevKickoff(ctx context.Context, fixtureID, teamID int64) (*time.Time, error) {
	query, args, err := qb.Select("f.kickoff").
		From("previous_matches pm JOIN fixtures f ON f.id = pm.prev_1").
		Where(
			qb.Eq("pm.fixture_id", fixtureID),
			qb.Eq("pm.team_id", teamID),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build previous kickoff query: %w", err)
	}

	var kickoff time.Time
	if err := getRetry(ctx, r.db, &kickoff, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get previous kickoff: %w", err)
	}

	utc := kickoff.UTC()
	return &utc, nil
}
