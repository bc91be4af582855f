package mapping

// TeamMapping links a local team id to the odds provider's spelling of the
// same club. OAName is human-curated: automation appends rows for new ids but
// never overwrites an existing row.
type TeamMapping struct {
	TeamID   int64  `csv:"team_id"`
	TeamName string `csv:"team_name"`
	OAName   string `csv:"oa_name"`
}

// LeagueMapping links a local league id to the odds provider's sport key,
// e.g. "soccer_epl". Curated the same way as TeamMapping.
type LeagueMapping struct {
	LeagueID   int64  `csv:"league_id"`
	LeagueName string `csv:"league_name"`
	SportKey   string `csv:"oa_sport_key"`
}
