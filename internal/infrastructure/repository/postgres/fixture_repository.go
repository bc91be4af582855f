package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/linesync/internal/domain/fixture"
	qb "github.com/avolkov/linesync/internal/platform/querybuilder"
	"github.com/avolkov/linesync/internal/platform/syncengine"
)

type fixtureTableModel struct {
	ID         int64     `db:"id"`
	Kickoff    time.Time `db:"kickoff"`
	LeagueID   int64     `db:"league_id"`
	SeasonID   int64     `db:"season_id"`
	HomeTeamID int64     `db:"home_team_id"`
	AwayTeamID int64     `db:"away_team_id"`
	HomeGoals  *int      `db:"home_goals"`
	AwayGoals  *int      `db:"away_goals"`
	Provider   string    `db:"provider"`
}

func (m fixtureTableModel) toDomain() fixture.Fixture {
	return fixture.Fixture{
		ID:         m.ID,
		Kickoff:    m.Kickoff.UTC(),
		LeagueID:   m.LeagueID,
		SeasonID:   m.SeasonID,
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
		HomeGoals:  m.HomeGoals,
		AwayGoals:  m.AwayGoals,
		Provider:   m.Provider,
	}
}

type FixtureRepository struct {
	db     *sqlx.DB
	engine *syncengine.Engine
}

func NewFixtureRepository(db *sqlx.DB, engine *syncengine.Engine) *FixtureRepository {
	return &FixtureRepository{db: db, engine: engine}
}

func (r *FixtureRepository) Upsert(ctx context.Context, fixtures []fixture.Fixture) (int, error) {
	rows := make([]syncengine.Row, 0, len(fixtures))
	for _, f := range fixtures {
		rows = append(rows, syncengine.Row{
			"id":           f.ID,
			"kickoff":      f.Kickoff.UTC(),
			"league_id":    f.LeagueID,
			"season_id":    f.SeasonID,
			"home_team_id": f.HomeTeamID,
			"away_team_id": f.AwayTeamID,
			"home_goals":   f.HomeGoals,
			"away_goals":   f.AwayGoals,
			"provider":     f.Provider,
		})
	}

	return r.engine.UpsertIfChanged(ctx, fixturesTable, rows)
}

func (r *FixtureRepository) DeleteComplement(ctx context.Context, provider string, seasonIDs []int64, keepIDs []int64) (int, error) {
	keep := make([][]any, 0, len(keepIDs))
	for _, id := range keepIDs {
		keep = append(keep, []any{id})
	}

	scope := []qb.Condition{qb.Eq("provider", provider)}
	if len(seasonIDs) > 0 {
		scope = append(scope, qb.In("season_id", int64Args(seasonIDs)))
	}

	return r.engine.DeleteComplement(ctx, fixturesTable, keep, scope...)
}

func (r *FixtureRepository) List(ctx context.Context, filter fixture.Filter) ([]fixture.Fixture, error) {
	builder := qb.Select(
		"id", "kickoff", "league_id", "season_id",
		"home_team_id", "away_team_id", "home_goals", "away_goals", "provider",
	).
		From("fixtures").
		OrderBy("kickoff", "id")
	if len(filter.LeagueIDs) > 0 {
		builder = builder.Where(qb.In("league_id", int64Args(filter.LeagueIDs)))
	}
	if len(filter.SeasonIDs) > 0 {
		builder = builder.Where(qb.In("season_id", int64Args(filter.SeasonIDs)))
	}
	if len(filter.FixtureIDs) > 0 {
		builder = builder.Where(qb.In("id", int64Args(filter.FixtureIDs)))
	}
	if filter.PlayedOnly {
		builder = builder.Where(qb.Expr("home_goals IS NOT NULL AND away_goals IS NOT NULL"))
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures query: %w", err)
	}

	var rows []fixtureTableModel
	if err := selectRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
