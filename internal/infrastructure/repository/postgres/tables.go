package postgres

import "github.com/avolkov/linesync/internal/platform/syncengine"

var leaguesTable = syncengine.Table{
	Name:            "leagues",
	Key:             []string{"id"},
	Compare:         []string{"name", "provider"},
	TimestampColumn: "updated_at",
}

var seasonsTable = syncengine.Table{
	Name:            "seasons",
	Key:             []string{"id"},
	Compare:         []string{"name", "league_id", "is_current", "provider"},
	TimestampColumn: "updated_at",
}

var teamsTable = syncengine.Table{
	Name:            "teams",
	Key:             []string{"id"},
	Compare:         []string{"name", "short_code", "provider"},
	TimestampColumn: "updated_at",
}

var fixturesTable = syncengine.Table{
	Name: "fixtures",
	Key:  []string{"id"},
	Compare: []string{
		"kickoff", "league_id", "season_id",
		"home_team_id", "away_team_id",
		"home_goals", "away_goals", "provider",
	},
	TimestampColumn: "updated_at",
}

var lineupsTable = syncengine.Table{
	Name: "lineups",
	Key:  []string{"fixture_id", "player_id"},
	Compare: []string{
		"team_id", "player_name", "position_id",
		"jersey_number", "formation_position", "rating",
	},
	TimestampColumn: "updated_at",
}

var previousMatchesTable = syncengine.Table{
	Name:            "previous_matches",
	Key:             []string{"fixture_id", "team_id"},
	Compare:         []string{"season_id", "prev_1", "prev_2", "prev_3", "prev_4", "prev_5"},
	TimestampColumn: "updated_at",
}

var teamRatingsTable = syncengine.Table{
	Name:            "team_ratings",
	Key:             []string{"fixture_id", "team_id"},
	Compare:         []string{"avg_rating"},
	TimestampColumn: "updated_at",
}

var fixturesMatchingTable = syncengine.Table{
	Name:            "fixtures_matching",
	Key:             []string{"fixture_id"},
	Compare:         []string{"league_id", "oa_event_id", "oa_home_team", "oa_away_team", "oa_commence_time"},
	TimestampColumn: "matched_at",
}

// Snapshots key on the capture instant as well, so a shifted schedule
// appends new rows instead of overwriting the observed history.
var odds1X2Table = syncengine.Table{
	Name:            "odds_1x2",
	Key:             []string{"fixture_id", "captured_at", "timeline_slot", "provider"},
	Compare:         []string{"home_odd", "draw_odd", "away_odd"},
	TimestampColumn: "updated_at",
}

// Mapping tables carry no engine timestamp: rows are human-curated and the
// automation path only appends.
var teamNameMatchingTable = syncengine.Table{
	Name:    "team_name_matching",
	Key:     []string{"team_id"},
	Compare: []string{"team_name", "oa_name"},
}

var leagueMappingTable = syncengine.Table{
	Name:    "league_mapping",
	Key:     []string{"league_id"},
	Compare: []string{"league_name", "oa_sport_key"},
}
