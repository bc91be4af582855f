package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avolkov/linesync/internal/platform/logging"
)

type stubEventSource struct {
	candidates []Candidate
	err        error

	gotSport    string
	gotSnapshot time.Time
	gotFrom     time.Time
	gotTo       time.Time
}

func (s *stubEventSource) Events(_ context.Context, sportKey string, snapshotAt, from, to time.Time) ([]Candidate, error) {
	s.gotSport = sportKey
	s.gotSnapshot = snapshotAt
	s.gotFrom = from
	s.gotTo = to
	return s.candidates, s.err
}

func TestMatcherSelectsExactMatch(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	source := &stubEventSource{candidates: []Candidate{
		{EventID: "ev-noise", HomeTeam: "Someone Else", AwayTeam: "Another Club", CommenceTime: kickoff},
		{EventID: "ev-match", HomeTeam: "FC Example", AwayTeam: "Other FC", CommenceTime: kickoff.Add(5 * time.Minute)},
	}}
	matcher := NewMatcher(source, logging.NewNop())

	result, err := matcher.Match(context.Background(), MatchInput{
		SportKey: "soccer_epl",
		Kickoff:  kickoff,
		HomeName: "FC Example",
		AwayName: "Other FC",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Matched || result.EventID != "ev-match" || result.Score != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if source.gotSport != "soccer_epl" {
		t.Fatalf("unexpected sport key: %s", source.gotSport)
	}
	if !source.gotSnapshot.Equal(kickoff.Add(time.Hour)) {
		t.Fatalf("default snapshot must be kickoff+1h, got %v", source.gotSnapshot)
	}
	if !source.gotFrom.Equal(kickoff.Add(-12*time.Hour)) || !source.gotTo.Equal(kickoff.Add(12*time.Hour)) {
		t.Fatalf("default window must be +/-12h, got [%v, %v]", source.gotFrom, source.gotTo)
	}
}

func TestMatcherAcceptsSwappedOrientation(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	source := &stubEventSource{candidates: []Candidate{
		{EventID: "ev-swapped", HomeTeam: "Other FC", AwayTeam: "FC Example", CommenceTime: kickoff},
	}}
	matcher := NewMatcher(source, logging.NewNop())

	result, err := matcher.Match(context.Background(), MatchInput{
		Kickoff:  kickoff,
		HomeName: "FC Example",
		AwayName: "Other FC",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Matched || result.EventID != "ev-swapped" || result.Score != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestMatcherTieBreakBySmallerTimeDiff(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	source := &stubEventSource{candidates: []Candidate{
		{EventID: "ev-late", HomeTeam: "FC Example", AwayTeam: "Other FC", CommenceTime: kickoff.Add(5 * time.Minute)},
		{EventID: "ev-near", HomeTeam: "FC Example", AwayTeam: "Other FC", CommenceTime: kickoff.Add(-2 * time.Minute)},
	}}
	matcher := NewMatcher(source, logging.NewNop())

	result, err := matcher.Match(context.Background(), MatchInput{
		Kickoff:  kickoff,
		HomeName: "FC Example",
		AwayName: "Other FC",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EventID != "ev-near" {
		t.Fatalf("expected nearest candidate to win the tie, got %+v", result)
	}
}

func TestMatcherHigherScoreBeatsNearerTime(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	source := &stubEventSource{candidates: []Candidate{
		{EventID: "ev-partial", HomeTeam: "FC Example", AwayTeam: "Mystery XI", CommenceTime: kickoff},
		{EventID: "ev-full", HomeTeam: "FC Example", AwayTeam: "Other FC", CommenceTime: kickoff.Add(6 * time.Hour)},
	}}
	matcher := NewMatcher(source, logging.NewNop())

	result, err := matcher.Match(context.Background(), MatchInput{
		Kickoff:  kickoff,
		HomeName: "FC Example",
		AwayName: "Other FC",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EventID != "ev-full" || result.Score != 2 {
		t.Fatalf("expected full match to beat nearer partial, got %+v", result)
	}
}

func TestMatcherSingleKnownSide(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	source := &stubEventSource{candidates: []Candidate{
		{EventID: "ev-one-side", HomeTeam: "FC Example", AwayTeam: "Unmapped Town", CommenceTime: kickoff},
	}}
	matcher := NewMatcher(source, logging.NewNop())

	result, err := matcher.Match(context.Background(), MatchInput{
		Kickoff:  kickoff,
		HomeName: "FC Example",
		Window:   24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Matched || result.Score != 1 {
		t.Fatalf("expected score-1 match on the known side, got %+v", result)
	}
}

func TestMatcherMinScoreRejectsPartialMatch(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	source := &stubEventSource{candidates: []Candidate{
		{EventID: "ev-one-side", HomeTeam: "FC Example", AwayTeam: "Someone Else", CommenceTime: kickoff},
	}}
	matcher := NewMatcher(source, logging.NewNop())

	result, err := matcher.Match(context.Background(), MatchInput{
		Kickoff:  kickoff,
		HomeName: "FC Example",
		AwayName: "Other FC",
		MinScore: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matched {
		t.Fatalf("a single-side candidate must not satisfy MinScore 2, got %+v", result)
	}
}

func TestMatcherUnmatchedIsNotAnError(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	source := &stubEventSource{candidates: []Candidate{
		{EventID: "ev-noise", HomeTeam: "Someone Else", AwayTeam: "Another Club", CommenceTime: kickoff},
	}}
	matcher := NewMatcher(source, logging.NewNop())

	result, err := matcher.Match(context.Background(), MatchInput{
		Kickoff:  kickoff,
		HomeName: "FC Example",
		AwayName: "Other FC",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matched {
		t.Fatalf("expected unmatched result, got %+v", result)
	}
}

func TestMatcherTransportFailurePropagates(t *testing.T) {
	t.Parallel()

	source := &stubEventSource{err: errors.New("connection reset")}
	matcher := NewMatcher(source, logging.NewNop())

	_, err := matcher.Match(context.Background(), MatchInput{
		Kickoff:  time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC),
		HomeName: "FC Example",
		AwayName: "Other FC",
	})
	if err == nil {
		t.Fatal("expected transport error to propagate")
	}
}

func TestMatcherDeterministic(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	source := &stubEventSource{candidates: []Candidate{
		{EventID: "ev-a", HomeTeam: "FC Example", AwayTeam: "Other FC", CommenceTime: kickoff.Add(-2 * time.Minute)},
		{EventID: "ev-b", HomeTeam: "FC Example", AwayTeam: "Other FC", CommenceTime: kickoff.Add(5 * time.Minute)},
	}}
	matcher := NewMatcher(source, logging.NewNop())

	in := MatchInput{Kickoff: kickoff, HomeName: "FC Example", AwayName: "Other FC"}
	first, err := matcher.Match(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := matcher.Match(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("non-deterministic result: %+v vs %+v", first, again)
		}
	}
}
