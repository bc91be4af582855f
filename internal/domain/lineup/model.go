package lineup

// Entry is one player's appearance in a fixture's lineup, including the
// provider's post-match player rating when available.
type Entry struct {
	FixtureID         int64
	PlayerID          int64
	TeamID            int64
	PlayerName        string
	PositionID        *int64
	JerseyNumber      *int
	FormationPosition *int
	Rating            *float64
}
