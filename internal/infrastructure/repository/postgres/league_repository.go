package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/linesync/internal/domain/league"
	qb "github.com/avolkov/linesync/internal/platform/querybuilder"
	"github.com/avolkov/linesync/internal/platform/syncengine"
)

type leagueTableModel struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	Provider string `db:"provider"`
}

type LeagueRepository struct {
	db     *sqlx.DB
	engine *syncengine.Engine
}

func NewLeagueRepository(db *sqlx.DB, engine *syncengine.Engine) *LeagueRepository {
	return &LeagueRepository{db: db, engine: engine}
}

func (r *LeagueRepository) Upsert(ctx context.Context, leagues []league.League) (int, error) {
	rows := make([]syncengine.Row, 0, len(leagues))
	for _, l := range leagues {
		rows = append(rows, syncengine.Row{
			"id":       l.ID,
			"name":     l.Name,
			"provider": l.Provider,
		})
	}

	return r.engine.UpsertIfChanged(ctx, leaguesTable, rows)
}

func (r *LeagueRepository) DeleteComplement(ctx context.Context, provider string, keepIDs []int64) (int, error) {
	keep := make([][]any, 0, len(keepIDs))
	for _, id := range keepIDs {
		keep = append(keep, []any{id})
	}

	return r.engine.DeleteComplement(ctx, leaguesTable, keep, qb.Eq("provider", provider))
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("id", "name", "provider").
		From("leagues").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := selectRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.League{ID: row.ID, Name: row.Name, Provider: row.Provider})
	}

	return out, nil
}
