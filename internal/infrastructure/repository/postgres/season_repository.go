package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/linesync/internal/domain/season"
	qb "github.com/avolkov/linesync/internal/platform/querybuilder"
	"github.com/avolkov/linesync/internal/platform/syncengine"
)

type seasonTableModel struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	LeagueID  int64  `db:"league_id"`
	IsCurrent bool   `db:"is_current"`
	Provider  string `db:"provider"`
}

func (m seasonTableModel) toDomain() season.Season {
	return season.Season{
		ID:        m.ID,
		Name:      m.Name,
		LeagueID:  m.LeagueID,
		IsCurrent: m.IsCurrent,
		Provider:  m.Provider,
	}
}

type SeasonRepository struct {
	db     *sqlx.DB
	engine *syncengine.Engine
}

func NewSeasonRepository(db *sqlx.DB, engine *syncengine.Engine) *SeasonRepository {
	return &SeasonRepository{db: db, engine: engine}
}

func (r *SeasonRepository) Upsert(ctx context.Context, seasons []season.Season) (int, error) {
	rows := make([]syncengine.Row, 0, len(seasons))
	for _, s := range seasons {
		rows = append(rows, syncengine.Row{
			"id":         s.ID,
			"name":       s.Name,
			"league_id":  s.LeagueID,
			"is_current": s.IsCurrent,
			"provider":   s.Provider,
		})
	}

	return r.engine.UpsertIfChanged(ctx, seasonsTable, rows)
}

func (r *SeasonRepository) DeleteComplement(ctx context.Context, provider string, leagueIDs []int64, keepIDs []int64) (int, error) {
	keep := make([][]any, 0, len(keepIDs))
	for _, id := range keepIDs {
		keep = append(keep, []any{id})
	}

	scope := []qb.Condition{qb.Eq("provider", provider)}
	if len(leagueIDs) > 0 {
		scope = append(scope, qb.In("league_id", int64Args(leagueIDs)))
	}

	return r.engine.DeleteComplement(ctx, seasonsTable, keep, scope...)
}

func (r *SeasonRepository) List(ctx context.Context, filter season.Filter) ([]season.Season, error) {
	builder := qb.Select("id", "name", "league_id", "is_current", "provider").
		From("seasons").
		OrderBy("league_id", "id")
	if len(filter.LeagueIDs) > 0 {
		builder = builder.Where(qb.In("league_id", int64Args(filter.LeagueIDs)))
	}
	if len(filter.SeasonIDs) > 0 {
		builder = builder.Where(qb.In("id", int64Args(filter.SeasonIDs)))
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select seasons query: %w", err)
	}

	var rows []seasonTableModel
	if err := selectRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select seasons: %w", err)
	}

	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *SeasonRepository) ListWithoutFixtures(ctx context.Context, provider string, filter season.Filter) ([]season.Season, error) {
	builder := qb.Select("id", "name", "league_id", "is_current", "provider").
		From("seasons").
		Where(
			qb.Eq("provider", provider),
			qb.Expr("NOT EXISTS (SELECT 1 FROM fixtures f WHERE f.season_id = seasons.id)"),
		).
		OrderBy("league_id", "id")
	if len(filter.LeagueIDs) > 0 {
		builder = builder.Where(qb.In("league_id", int64Args(filter.LeagueIDs)))
	}
	if len(filter.SeasonIDs) > 0 {
		builder = builder.Where(qb.In("id", int64Args(filter.SeasonIDs)))
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select seasons without fixtures query: %w", err)
	}

	var rows []seasonTableModel
	if err := selectRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select seasons without fixtures: %w", err)
	}

	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func int64Args(ids []int64) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, id)
	}
	return out
}
