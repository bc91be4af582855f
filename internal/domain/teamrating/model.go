package teamrating

// Rating is the average of a team's player ratings for one fixture.
type Rating struct {
	FixtureID int64
	TeamID    int64
	Average   float64
}
