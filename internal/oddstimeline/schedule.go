package oddstimeline

import (
	"fmt"
	"sort"
	"time"
)

// Schedule computes the sampling timestamps for one fixture's odds timeline,
// sorted descending (closest to kickoff first).
//
// The policy is fixed: a dense window every 10 minutes from kickoff-2h to
// kickoff-10m, a medium window hourly from kickoff-24h to kickoff-3h, and,
// when the team's previous match is known, seven anchor offsets around that
// kickoff (+/-1h, +/-2h, +/-3h and -3d). Overlapping stamps are deduplicated.
func Schedule(kickoff time.Time, antecedent *time.Time) []time.Time {
	seen := make(map[int64]struct{}, 48)
	stamps := make([]time.Time, 0, 48)

	add := func(ts time.Time) {
		key := ts.Unix()
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		stamps = append(stamps, ts.UTC())
	}

	for offset := 2 * time.Hour; offset >= 10*time.Minute; offset -= 10 * time.Minute {
		add(kickoff.Add(-offset))
	}
	for offset := 24 * time.Hour; offset >= 3*time.Hour; offset -= time.Hour {
		add(kickoff.Add(-offset))
	}
	if antecedent != nil && !antecedent.IsZero() {
		prev := *antecedent
		for _, offset := range []time.Duration{
			time.Hour, 2 * time.Hour, 3 * time.Hour,
			-time.Hour, -2 * time.Hour, -3 * time.Hour,
			-72 * time.Hour,
		} {
			add(prev.Add(offset))
		}
	}

	sort.Slice(stamps, func(i, j int) bool { return stamps[i].After(stamps[j]) })
	return stamps
}

// SlotLabel names the i-th position (0-based) of the descending timeline.
// Slot identity is positional: slot 1 is always the stamp closest to kickoff.
func SlotLabel(i int) string {
	return fmt.Sprintf("odd_%d", i+1)
}
