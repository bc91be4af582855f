package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/avolkov/linesync/internal/platform/logging"
)

// Candidate is one remote event considered for a fixture.
type Candidate struct {
	EventID      string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
}

// EventSource lists remote events for a sport whose commence time falls inside
// [from, to], as reconstructed at snapshotAt.
type EventSource interface {
	Events(ctx context.Context, sportKey string, snapshotAt, from, to time.Time) ([]Candidate, error)
}

type MatchInput struct {
	SportKey string
	Kickoff  time.Time
	// Expected external names for the two sides. Either may be empty when the
	// mapping is incomplete; an empty side contributes nothing to the score.
	HomeName string
	AwayName string
	// Symmetric time window bounding which remote events are considered.
	Window time.Duration
	// SnapshotAt overrides the instant the remote event list is reconstructed
	// at; zero means one hour after kickoff.
	SnapshotAt time.Time
	// MinScore is the lowest candidate score that still counts as a match:
	// 2 demands both sides, 1 accepts a single side. Zero means 1.
	MinScore int
}

type MatchResult struct {
	Matched      bool
	EventID      string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
	Score        int
}

// Matcher resolves a local fixture to a remote event using normalized names
// and a kickoff-time window.
type Matcher struct {
	source EventSource
	logger *logging.Logger
}

func NewMatcher(source EventSource, logger *logging.Logger) *Matcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Matcher{source: source, logger: logger}
}

// Match fetches candidate events and selects the best-scoring one. An empty
// candidate set or all-zero scores yield an unmatched result, not an error;
// only transport failures from the EventSource are returned as errors.
func (m *Matcher) Match(ctx context.Context, in MatchInput) (MatchResult, error) {
	if in.Kickoff.IsZero() {
		return MatchResult{}, fmt.Errorf("fixture kickoff is required")
	}
	window := in.Window
	if window <= 0 {
		window = 12 * time.Hour
	}
	snapshotAt := in.SnapshotAt
	if snapshotAt.IsZero() {
		snapshotAt = in.Kickoff.Add(time.Hour)
	}

	from := in.Kickoff.Add(-window)
	to := in.Kickoff.Add(window)

	candidates, err := m.source.Events(ctx, in.SportKey, snapshotAt, from, to)
	if err != nil {
		return MatchResult{}, fmt.Errorf("fetch candidate events sport=%s: %w", in.SportKey, err)
	}

	wantHome := Normalize(in.HomeName)
	wantAway := Normalize(in.AwayName)
	minScore := in.MinScore
	if minScore <= 0 {
		minScore = 1
	}

	best := MatchResult{}
	bestDiff := time.Duration(0)
	for _, candidate := range candidates {
		score := ScoreCandidate(wantHome, wantAway, candidate.HomeTeam, candidate.AwayTeam)
		if score < minScore {
			continue
		}
		diff := absDuration(candidate.CommenceTime.Sub(in.Kickoff))
		if !best.Matched || score > best.Score || (score == best.Score && diff < bestDiff) {
			best = MatchResult{
				Matched:      true,
				EventID:      candidate.EventID,
				HomeTeam:     candidate.HomeTeam,
				AwayTeam:     candidate.AwayTeam,
				CommenceTime: candidate.CommenceTime,
				Score:        score,
			}
			bestDiff = diff
		}
	}

	if !best.Matched {
		m.logger.DebugContext(ctx, "no remote event matched fixture",
			"sport_key", in.SportKey,
			"kickoff", in.Kickoff,
			"candidates", len(candidates),
		)
	}
	return best, nil
}

// ScoreCandidate scores one candidate 0-2 against already-normalized expected
// side names: +1 per side whose name matches, taking the better of the direct
// and swapped orientations. Empty expected names never contribute.
func ScoreCandidate(wantHome, wantAway, gotHome, gotAway string) int {
	normHome := Normalize(gotHome)
	normAway := Normalize(gotAway)

	direct := sideScore(wantHome, normHome) + sideScore(wantAway, normAway)
	swapped := sideScore(wantHome, normAway) + sideScore(wantAway, normHome)
	if swapped > direct {
		return swapped
	}
	return direct
}

func sideScore(want, got string) int {
	if want == "" || got == "" {
		return 0
	}
	if want == got {
		return 1
	}
	return 0
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
