package fixturematch

import "time"

// Match is the resolved cross-provider link between a local fixture and the
// odds provider's event. Created and updated only by the matcher; never
// deleted automatically, so a failed re-match leaves the prior link in place.
type Match struct {
	FixtureID    int64
	LeagueID     int64
	EventID      string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
}

// CandidateFixture is one local fixture eligible for matching, joined with
// its curated external names and the league's odds-provider sport key. Either
// external name may be empty when the team mapping is incomplete.
type CandidateFixture struct {
	FixtureID    int64
	LeagueID     int64
	Kickoff      time.Time
	HomeTeamID   int64
	AwayTeamID   int64
	HomeExternal string
	AwayExternal string
	SportKey     string
}

// MappedSides counts how many of the candidate's sides carry a curated
// external name.
func (c CandidateFixture) MappedSides() int {
	n := 0
	if c.HomeExternal != "" {
		n++
	}
	if c.AwayExternal != "" {
		n++
	}
	return n
}

// Matched is a resolved link joined with the local fixture, the work unit of
// the odds timeline pipeline.
type Matched struct {
	FixtureID    int64
	LeagueID     int64
	SeasonID     int64
	Kickoff      time.Time
	HomeTeamID   int64
	EventID      string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
	SportKey     string
}

// Filter narrows candidate reads.
type Filter struct {
	LeagueIDs     []int64
	SeasonIDs     []int64
	OnlyUnmatched bool
	Limit         int
}
