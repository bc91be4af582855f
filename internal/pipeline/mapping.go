package pipeline

import (
	"context"
	"fmt"

	"github.com/avolkov/linesync/internal/domain/league"
	"github.com/avolkov/linesync/internal/domain/mapping"
	"github.com/avolkov/linesync/internal/domain/team"
	"github.com/avolkov/linesync/internal/mappingcsv"
	"github.com/avolkov/linesync/internal/platform/logging"
)

// MappingExtender appends rows for unseen team and league ids to both the
// mapping tables and the curated CSV files. It never modifies existing rows:
// the curated columns belong to humans.
type MappingExtender struct {
	teams    team.Repository
	leagues  league.Repository
	mappings mapping.Repository

	teamCSVPath   string
	leagueCSVPath string
	logger        *logging.Logger
}

func NewMappingExtender(teams team.Repository, leagues league.Repository, mappings mapping.Repository, teamCSVPath, leagueCSVPath string, logger *logging.Logger) *MappingExtender {
	return &MappingExtender{
		teams:         teams,
		leagues:       leagues,
		mappings:      mappings,
		teamCSVPath:   teamCSVPath,
		leagueCSVPath: leagueCSVPath,
		logger:        logger,
	}
}

func (m *MappingExtender) ExtendTeams(ctx context.Context) (Summary, error) {
	teams, err := m.teams.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list teams: %w", err)
	}

	rows := make([]mapping.TeamMapping, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, mapping.TeamMapping{TeamID: t.ID, TeamName: t.Name})
	}

	var summary Summary
	summary.Processed = len(rows)

	inserted, err := m.mappings.InsertNewTeams(ctx, rows)
	if err != nil {
		return summary, fmt.Errorf("extend team mapping table: %w", err)
	}
	summary.Changed = inserted

	added, err := mappingcsv.ExtendTeams(m.teamCSVPath, rows)
	if err != nil {
		return summary, fmt.Errorf("extend team mapping file: %w", err)
	}

	m.logger.InfoContext(ctx, "team mapping extended",
		"processed", summary.Processed,
		"table_added", inserted,
		"file_added", added,
	)

	return summary, nil
}

func (m *MappingExtender) ExtendLeagues(ctx context.Context) (Summary, error) {
	leagues, err := m.leagues.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list leagues: %w", err)
	}

	rows := make([]mapping.LeagueMapping, 0, len(leagues))
	for _, l := range leagues {
		rows = append(rows, mapping.LeagueMapping{LeagueID: l.ID, LeagueName: l.Name})
	}

	var summary Summary
	summary.Processed = len(rows)

	inserted, err := m.mappings.InsertNewLeagues(ctx, rows)
	if err != nil {
		return summary, fmt.Errorf("extend league mapping table: %w", err)
	}
	summary.Changed = inserted

	added, err := mappingcsv.ExtendLeagues(m.leagueCSVPath, rows)
	if err != nil {
		return summary, fmt.Errorf("extend league mapping file: %w", err)
	}

	m.logger.InfoContext(ctx, "league mapping extended",
		"processed", summary.Processed,
		"table_added", inserted,
		"file_added", added,
	)

	return summary, nil
}

// MappingLoader pushes the curated CSV files into the mapping tables. This is
// the one path allowed to overwrite table rows, because a human asked for it.
type MappingLoader struct {
	mappings      mapping.Repository
	teamCSVPath   string
	leagueCSVPath string
	logger        *logging.Logger
}

func NewMappingLoader(mappings mapping.Repository, teamCSVPath, leagueCSVPath string, logger *logging.Logger) *MappingLoader {
	return &MappingLoader{
		mappings:      mappings,
		teamCSVPath:   teamCSVPath,
		leagueCSVPath: leagueCSVPath,
		logger:        logger,
	}
}

func (m *MappingLoader) LoadTeams(ctx context.Context) (Summary, error) {
	rows, err := mappingcsv.ReadTeams(m.teamCSVPath)
	if err != nil {
		return Summary{}, err
	}
	if len(rows) == 0 {
		return Summary{}, fmt.Errorf("load team mapping: %s is empty or missing", m.teamCSVPath)
	}

	var summary Summary
	summary.Processed = len(rows)

	changed, err := m.mappings.UpsertTeams(ctx, rows)
	if err != nil {
		return summary, fmt.Errorf("upsert team mappings: %w", err)
	}
	summary.Changed = changed

	m.logger.InfoContext(ctx, "team mapping loaded",
		"processed", summary.Processed,
		"changed", summary.Changed,
	)

	return summary, nil
}

func (m *MappingLoader) LoadLeagues(ctx context.Context) (Summary, error) {
	rows, err := mappingcsv.ReadLeagues(m.leagueCSVPath)
	if err != nil {
		return Summary{}, err
	}
	if len(rows) == 0 {
		return Summary{}, fmt.Errorf("load league mapping: %s is empty or missing", m.leagueCSVPath)
	}

	var summary Summary
	summary.Processed = len(rows)

	changed, err := m.mappings.UpsertLeagues(ctx, rows)
	if err != nil {
		return summary, fmt.Errorf("upsert league mappings: %w", err)
	}
	summary.Changed = changed

	m.logger.InfoContext(ctx, "league mapping loaded",
		"processed", summary.Processed,
		"changed", summary.Changed,
	)

	return summary, nil
}
