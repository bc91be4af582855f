package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/linesync/internal/domain/fixturematch"
	qb "github.com/avolkov/linesync/internal/platform/querybuilder"
	"github.com/avolkov/linesync/internal/platform/syncengine"
)

type candidateRowModel struct {
	FixtureID    int64     `db:"fixture_id"`
	LeagueID     int64     `db:"league_id"`
	Kickoff      time.Time `db:"kickoff"`
	HomeTeamID   int64     `db:"home_team_id"`
	AwayTeamID   int64     `db:"away_team_id"`
	HomeExternal string    `db:"home_external"`
	AwayExternal string    `db:"away_external"`
	SportKey     string    `db:"sport_key"`
}

type matchedRowModel struct {
	FixtureID    int64     `db:"fixture_id"`
	LeagueID     int64     `db:"league_id"`
	SeasonID     int64     `db:"season_id"`
	Kickoff      time.Time `db:"kickoff"`
	HomeTeamID   int64     `db:"home_team_id"`
	EventID      string    `db:"oa_event_id"`
	HomeTeam     string    `db:"oa_home_team"`
	AwayTeam     string    `db:"oa_away_team"`
	CommenceTime time.Time `db:"oa_commence_time"`
	SportKey     string    `db:"sport_key"`
}

type FixtureMatchRepository struct {
	db     *sqlx.DB
	engine *syncengine.Engine
}

func NewFixtureMatchRepository(db *sqlx.DB, engine *syncengine.Engine) *FixtureMatchRepository {
	return &FixtureMatchRepository{db: db, engine: engine}
}

func (r *FixtureMatchRepository) ListCandidates(ctx context.Context, filter fixturematch.Filter) ([]fixturematch.CandidateFixture, error) {
	builder := qb.Select(
		"f.id AS fixture_id",
		"f.league_id",
		"f.kickoff",
		"f.home_team_id",
		"f.away_team_id",
		"COALESCE(h.oa_name, '') AS home_external",
		"COALESCE(a.oa_name, '') AS away_external",
		"COALESCE(lm.oa_sport_key, '') AS sport_key",
	).
		From("fixtures f" +
			" LEFT JOIN team_name_matching h ON h.team_id = f.home_team_id" +
			" LEFT JOIN team_name_matching a ON a.team_id = f.away_team_id" +
			" LEFT JOIN league_mapping lm ON lm.league_id = f.league_id").
		OrderBy("f.kickoff", "f.id")
	if len(filter.LeagueIDs) > 0 {
		builder = builder.Where(qb.In("f.league_id", int64Args(filter.LeagueIDs)))
	}
	if len(filter.SeasonIDs) > 0 {
		builder = builder.Where(qb.In("f.season_id", int64Args(filter.SeasonIDs)))
	}
	if filter.OnlyUnmatched {
		builder = builder.Where(qb.Expr("NOT EXISTS (SELECT 1 FROM fixtures_matching m WHERE m.fixture_id = f.id)"))
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build matching candidates query: %w", err)
	}

	var rows []candidateRowModel
	if err := selectRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matching candidates: %w", err)
	}

	out := make([]fixturematch.CandidateFixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixturematch.CandidateFixture{
			FixtureID:    row.FixtureID,
			LeagueID:     row.LeagueID,
			Kickoff:      row.Kickoff.UTC(),
			HomeTeamID:   row.HomeTeamID,
			AwayTeamID:   row.AwayTeamID,
			HomeExternal: row.HomeExternal,
			AwayExternal: row.AwayExternal,
			SportKey:     row.SportKey,
		})
	}

	return out, nil
}

func (r *FixtureMatchRepository) ListMatched(ctx context.Context, filter fixturematch.Filter) ([]fixturematch.Matched, error) {
	builder := qb.Select(
		"m.fixture_id",
		"m.league_id",
		"f.season_id",
		"f.kickoff",
		"f.home_team_id",
		"m.oa_event_id",
		"m.oa_home_team",
		"m.oa_away_team",
		"m.oa_commence_time",
		"COALESCE(lm.oa_sport_key, '') AS sport_key",
	).
		From("fixtures_matching m" +
			" JOIN fixtures f ON f.id = m.fixture_id" +
			" LEFT JOIN league_mapping lm ON lm.league_id = m.league_id").
		OrderBy("f.kickoff", "m.fixture_id")
	if len(filter.LeagueIDs) > 0 {
		builder = builder.Where(qb.In("m.league_id", int64Args(filter.LeagueIDs)))
	}
	if len(filter.SeasonIDs) > 0 {
		builder = builder.Where(qb.In("f.season_id", int64Args(filter.SeasonIDs)))
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build matched fixtures query: %w", err)
	}

	var rows []matchedRowModel
	if err := selectRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matched fixtures: %w", err)
	}

	out := make([]fixturematch.Matched, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixturematch.Matched{
			FixtureID:    row.FixtureID,
			LeagueID:     row.LeagueID,
			SeasonID:     row.SeasonID,
			Kickoff:      row.Kickoff.UTC(),
			HomeTeamID:   row.HomeTeamID,
			EventID:      row.EventID,
			HomeTeam:     row.HomeTeam,
			AwayTeam:     row.AwayTeam,
			CommenceTime: row.CommenceTime.UTC(),
			SportKey:     row.SportKey,
		})
	}

	return out, nil
}

func (r *FixtureMatchRepository) Upsert(ctx context.Context, matches []fixturematch.Match) (int, error) {
	rows := make([]syncengine.Row, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, syncengine.Row{
			"fixture_id":       m.FixtureID,
			"league_id":        m.LeagueID,
			"oa_event_id":      m.EventID,
			"oa_home_team":     m.HomeTeam,
			"oa_away_team":     m.AwayTeam,
			"oa_commence_time": m.CommenceTime.UTC(),
		})
	}

	return r.engine.UpsertIfChanged(ctx, fixturesMatchingTable, rows)
}
