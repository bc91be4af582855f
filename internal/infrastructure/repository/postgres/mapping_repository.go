package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/linesync/internal/domain/mapping"
	qb "github.com/avolkov/linesync/internal/platform/querybuilder"
	"github.com/avolkov/linesync/internal/platform/syncengine"
)

type teamMappingModel struct {
	TeamID   int64  `db:"team_id"`
	TeamName string `db:"team_name"`
	OAName   string `db:"oa_name"`
}

type leagueMappingModel struct {
	LeagueID   int64  `db:"league_id"`
	LeagueName string `db:"league_name"`
	SportKey   string `db:"oa_sport_key"`
}

type MappingRepository struct {
	db     *sqlx.DB
	engine *syncengine.Engine
}

func NewMappingRepository(db *sqlx.DB, engine *syncengine.Engine) *MappingRepository {
	return &MappingRepository{db: db, engine: engine}
}

func (r *MappingRepository) ListTeams(ctx context.Context) ([]mapping.TeamMapping, error) {
	query, args, err := qb.Select("team_id", "team_name", "oa_name").
		From("team_name_matching").
		OrderBy("team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team mappings query: %w", err)
	}

	var rows []teamMappingModel
	if err := selectRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team mappings: %w", err)
	}

	out := make([]mapping.TeamMapping, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapping.TeamMapping{
			TeamID:   row.TeamID,
			TeamName: row.TeamName,
			OAName:   row.OAName,
		})
	}

	return out, nil
}

func (r *MappingRepository) ListLeagues(ctx context.Context) ([]mapping.LeagueMapping, error) {
	query, args, err := qb.Select("league_id", "league_name", "oa_sport_key").
		From("league_mapping").
		OrderBy("league_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select league mappings query: %w", err)
	}

	var rows []leagueMappingModel
	if err := selectRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select league mappings: %w", err)
	}

	out := make([]mapping.LeagueMapping, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapping.LeagueMapping{
			LeagueID:   row.LeagueID,
			LeagueName: row.LeagueName,
			SportKey:   row.SportKey,
		})
	}

	return out, nil
}

func (r *MappingRepository) InsertNewTeams(ctx context.Context, rows []mapping.TeamMapping) (int, error) {
	return r.engine.InsertNewOnly(ctx, teamNameMatchingTable, teamMappingRows(rows))
}

func (r *MappingRepository) InsertNewLeagues(ctx context.Context, rows []mapping.LeagueMapping) (int, error) {
	return r.engine.InsertNewOnly(ctx, leagueMappingTable, leagueMappingRows(rows))
}

func (r *MappingRepository) UpsertTeams(ctx context.Context, rows []mapping.TeamMapping) (int, error) {
	return r.engine.UpsertIfChanged(ctx, teamNameMatchingTable, teamMappingRows(rows))
}

func (r *MappingRepository) UpsertLeagues(ctx context.Context, rows []mapping.LeagueMapping) (int, error) {
	return r.engine.UpsertIfChanged(ctx, leagueMappingTable, leagueMappingRows(rows))
}

func teamMappingRows(rows []mapping.TeamMapping) []syncengine.Row {
	out := make([]syncengine.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, syncengine.Row{
			"team_id":   row.TeamID,
			"team_name": row.TeamName,
			"oa_name":   row.OAName,
		})
	}
	return out
}

func leagueMappingRows(rows []mapping.LeagueMapping) []syncengine.Row {
	out := make([]syncengine.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, syncengine.Row{
			"league_id":    row.LeagueID,
			"league_name":  row.LeagueName,
			"oa_sport_key": row.SportKey,
		})
	}
	return out
}
