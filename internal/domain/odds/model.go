package odds

import "time"

// SlotSportMonks labels the single pre-match snapshot taken from the primary
// provider, alongside the positional odd_N slots of the secondary timeline.
const SlotSportMonks = "sm_odds"

// Snapshot is one 1X2 quote observed at one instant for one fixture. Each
// price is independently nullable: a missing outcome is recorded as absence,
// not failure, so the timeline stays positionally complete.
type Snapshot struct {
	FixtureID    int64
	Timestamp    time.Time
	TimelineSlot string
	Provider     string
	Home         *float64
	Draw         *float64
	Away         *float64
}

// Gap reports whether the snapshot carries no prices at all, which is how a
// failed fetch for one timestamp is persisted.
func (s Snapshot) Gap() bool {
	return s.Home == nil && s.Draw == nil && s.Away == nil
}
