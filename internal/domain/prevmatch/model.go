package prevmatch

// Entry records, for one (fixture, team) pair, the fixture ids of that team's
// up-to-five preceding matches within the same season. Prev1 is the most
// recent. Used to anchor the odds snapshot scheduler on the previous match.
type Entry struct {
	FixtureID int64
	TeamID    int64
	SeasonID  int64
	Prev      [5]*int64
}
