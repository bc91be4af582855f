package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/avolkov/linesync/internal/domain/odds"
	qb "github.com/avolkov/linesync/internal/platform/querybuilder"
	"github.com/avolkov/linesync/internal/platform/syncengine"
)

type OddsRepository struct {
	db     *sqlx.DB
	engine *syncengine.Engine
}

func NewOddsRepository(db *sqlx.DB, engine *syncengine.Engine) *OddsRepository {
	return &OddsRepository{db: db, engine: engine}
}

func (r *OddsRepository) Upsert(ctx context.Context, snapshots []odds.Snapshot) (int, error) {
	rows := make([]syncengine.Row, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, syncengine.Row{
			"fixture_id":    s.FixtureID,
			"timeline_slot": s.TimelineSlot,
			"provider":      s.Provider,
			"captured_at":   s.Timestamp.UTC(),
			"home_odd":      s.Home,
			"draw_odd":      s.Draw,
			"away_odd":      s.Away,
		})
	}

	return r.engine.UpsertIfChanged(ctx, odds1X2Table, rows)
}

func (r *OddsRepository) HasTimeline(ctx context.Context, fixtureID int64, provider string) (bool, error) {
	query, args, err := qb.Select("1").
		From("odds_1x2").
		Where(
			qb.Eq("fixture_id", fixtureID),
			qb.Eq("provider", provider),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build odds timeline existence query: %w", err)
	}

	var one int
	if err := getRetry(ctx, r.db, &one, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check odds timeline existence: %w", err)
	}

	return true, nil
}

func (r *OddsRepository) HasSlot(ctx context.Context, fixtureID int64, slot, provider string) (bool, error) {
	query, args, err := qb.Select("1").
		From("odds_1x2").
		Where(
			qb.Eq("fixture_id", fixtureID),
			qb.Eq("timeline_slot", slot),
			qb.Eq("provider", provider),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build odds slot existence query: %w", err)
	}

	var one int
	if err := getRetry(ctx, r.db, &one, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check odds slot existence: %w", err)
	}

	return true, nil
}
