package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/linesync/internal/domain/team"
	qb "github.com/avolkov/linesync/internal/platform/querybuilder"
	"github.com/avolkov/linesync/internal/platform/syncengine"
)

type teamTableModel struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	ShortCode string `db:"short_code"`
	Provider  string `db:"provider"`
}

type TeamRepository struct {
	db     *sqlx.DB
	engine *syncengine.Engine
}

func NewTeamRepository(db *sqlx.DB, engine *syncengine.Engine) *TeamRepository {
	return &TeamRepository{db: db, engine: engine}
}

func (r *TeamRepository) Upsert(ctx context.Context, teams []team.Team) (int, error) {
	rows := make([]syncengine.Row, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, syncengine.Row{
			"id":         t.ID,
			"name":       t.Name,
			"short_code": t.ShortCode,
			"provider":   t.Provider,
		})
	}

	return r.engine.UpsertIfChanged(ctx, teamsTable, rows)
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	query, args, err := qb.Select("id", "name", "short_code", "provider").
		From("teams").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := selectRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Team{
			ID:        row.ID,
			Name:      row.Name,
			ShortCode: row.ShortCode,
			Provider:  row.Provider,
		})
	}

	return out, nil
}
