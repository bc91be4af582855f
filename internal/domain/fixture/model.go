package fixture

import (
	"fmt"
	"time"
)

// Fixture is the local canonical match record.
type Fixture struct {
	ID         int64
	Kickoff    time.Time
	LeagueID   int64
	SeasonID   int64
	HomeTeamID int64
	AwayTeamID int64
	HomeGoals  *int
	AwayGoals  *int
	Provider   string
}

// Played reports whether the match produced a final score.
func (f Fixture) Played() bool {
	return f.HomeGoals != nil && f.AwayGoals != nil
}

func (f Fixture) Validate() error {
	if f.ID <= 0 {
		return fmt.Errorf("fixture id must be greater than zero")
	}
	if f.Kickoff.IsZero() {
		return fmt.Errorf("fixture kickoff is required")
	}
	if f.Provider == "" {
		return fmt.Errorf("fixture provider is required")
	}

	return nil
}

// Filter narrows fixture reads; zero values mean no restriction.
type Filter struct {
	LeagueIDs  []int64
	SeasonIDs  []int64
	FixtureIDs []int64
	PlayedOnly bool
	Limit      int
}
