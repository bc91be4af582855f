package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/avolkov/linesync/external/oddsapi"
	"github.com/avolkov/linesync/external/sportmonks"
	"github.com/avolkov/linesync/internal/domain/fixture"
	"github.com/avolkov/linesync/internal/domain/fixturematch"
	"github.com/avolkov/linesync/internal/domain/odds"
	"github.com/avolkov/linesync/internal/platform/logging"
	"github.com/avolkov/linesync/internal/platform/resilience"
)

func matchedFixture(fixtureID int64) fixturematch.Matched {
	return fixturematch.Matched{
		FixtureID:    fixtureID,
		LeagueID:     8,
		SeasonID:     5,
		Kickoff:      time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC),
		HomeTeamID:   10,
		EventID:      "evt1",
		HomeTeam:     "Arsenal",
		AwayTeam:     "Chelsea",
		CommenceTime: time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC),
		SportKey:     "soccer_epl",
	}
}

func quoteAPI() *stubOddsAPI {
	price := 1.85
	return &stubOddsAPI{
		historicalEventOdds: func(_ context.Context, _, _ string, snapshotAt time.Time, _, _ string) (oddsapi.Snapshot[oddsapi.Quote], error) {
			return oddsapi.Snapshot[oddsapi.Quote]{
				Timestamp: snapshotAt,
				Data:      oddsapi.Quote{Home: &price},
			}, nil
		},
	}
}

func TestOddsTimelineSyncerWritesFullTimeline(t *testing.T) {
	t.Parallel()

	matched := &stubMatchRepo{matched: []fixturematch.Matched{matchedFixture(301)}}
	oddsRepo := &stubOddsRepo{}
	syncer := NewOddsTimelineSyncer(quoteAPI(), matched, &stubPrevMatchRepo{}, oddsRepo, "eu", "betfair", logging.NewNop())

	summary, err := syncer.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Processed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	// Without a previous-match anchor the schedule is the dense plus medium
	// windows.
	if len(oddsRepo.upserted) != 34 {
		t.Fatalf("got %d snapshots, want 34", len(oddsRepo.upserted))
	}
	if oddsRepo.upserted[0].TimelineSlot != "odd_1" || oddsRepo.upserted[33].TimelineSlot != "odd_34" {
		t.Fatalf("slot labels = %s .. %s", oddsRepo.upserted[0].TimelineSlot, oddsRepo.upserted[33].TimelineSlot)
	}
	for _, s := range oddsRepo.upserted {
		if s.Provider != ProviderOddsAPI || s.Gap() {
			t.Fatalf("unexpected snapshot %+v", s)
		}
	}
}

func TestOddsTimelineSyncerRecordsGaps(t *testing.T) {
	t.Parallel()

	api := &stubOddsAPI{
		historicalEventOdds: func(context.Context, string, string, time.Time, string, string) (oddsapi.Snapshot[oddsapi.Quote], error) {
			return oddsapi.Snapshot[oddsapi.Quote]{}, crerr.Mark(fmt.Errorf("no snapshot"), oddsapi.ErrEventNotFound)
		},
	}
	matched := &stubMatchRepo{matched: []fixturematch.Matched{matchedFixture(301)}}
	oddsRepo := &stubOddsRepo{}
	syncer := NewOddsTimelineSyncer(api, matched, &stubPrevMatchRepo{}, oddsRepo, "eu", "betfair", logging.NewNop())

	summary, err := syncer.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Processed != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want gaps recorded without failing", summary)
	}
	if len(oddsRepo.upserted) != 34 {
		t.Fatalf("got %d snapshots, want 34 gap rows", len(oddsRepo.upserted))
	}
	for _, s := range oddsRepo.upserted {
		if !s.Gap() {
			t.Fatalf("expected gap row, got %+v", s)
		}
	}
}

func TestOddsTimelineSyncerAbortsOnRateBudget(t *testing.T) {
	t.Parallel()

	api := &stubOddsAPI{
		historicalEventOdds: func(context.Context, string, string, time.Time, string, string) (oddsapi.Snapshot[oddsapi.Quote], error) {
			return oddsapi.Snapshot[oddsapi.Quote]{}, crerr.Mark(fmt.Errorf("429 too many"), resilience.ErrRateLimitExceeded)
		},
	}
	matched := &stubMatchRepo{matched: []fixturematch.Matched{matchedFixture(301), matchedFixture(302)}}
	oddsRepo := &stubOddsRepo{}
	syncer := NewOddsTimelineSyncer(api, matched, &stubPrevMatchRepo{}, oddsRepo, "eu", "betfair", logging.NewNop())

	_, err := syncer.Run(context.Background(), Options{})
	if !crerr.Is(err, resilience.ErrRateLimitExceeded) {
		t.Fatalf("expected rate limit abort, got %v", err)
	}
	if len(oddsRepo.upserted) != 0 {
		t.Fatalf("no snapshots should be written after budget exhaustion, got %d", len(oddsRepo.upserted))
	}
}

func TestOddsTimelineSyncerUsesAntecedentAnchor(t *testing.T) {
	t.Parallel()

	prevKick := time.Date(2025, 8, 9, 14, 0, 0, 0, time.UTC)
	prev := &stubPrevMatchRepo{prevKickoff: map[int64]*time.Time{301: &prevKick}}
	matched := &stubMatchRepo{matched: []fixturematch.Matched{matchedFixture(301)}}
	oddsRepo := &stubOddsRepo{}
	syncer := NewOddsTimelineSyncer(quoteAPI(), matched, prev, oddsRepo, "eu", "betfair", logging.NewNop())

	if _, err := syncer.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(oddsRepo.upserted) != 41 {
		t.Fatalf("got %d snapshots, want 41 with a week-back anchor", len(oddsRepo.upserted))
	}
}

func TestOddsTimelineSyncerSkipExisting(t *testing.T) {
	t.Parallel()

	matched := &stubMatchRepo{matched: []fixturematch.Matched{matchedFixture(301)}}
	oddsRepo := &stubOddsRepo{timelines: map[int64]bool{301: true}}
	syncer := NewOddsTimelineSyncer(quoteAPI(), matched, &stubPrevMatchRepo{}, oddsRepo, "eu", "betfair", logging.NewNop())

	summary, err := syncer.Run(context.Background(), Options{SkipExisting: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Skipped != 1 || len(oddsRepo.upserted) != 0 {
		t.Fatalf("summary = %+v, upserted = %d", summary, len(oddsRepo.upserted))
	}
}

func TestSportMonksOddsSyncerRun(t *testing.T) {
	t.Parallel()

	home, draw, away := 1.85, 3.60, 4.20
	updated := time.Date(2025, 8, 16, 12, 0, 0, 0, time.UTC)
	api := &stubSportMonksAPI{
		preMatchOdds: func(_ context.Context, fixtureID, bookmakerID int64) (sportmonks.OddsQuote, error) {
			if bookmakerID != 2 {
				t.Errorf("bookmakerID = %d, want 2", bookmakerID)
			}
			if fixtureID == 302 {
				return sportmonks.OddsQuote{}, nil
			}
			return sportmonks.OddsQuote{Home: &home, Draw: &draw, Away: &away, UpdatedAt: &updated}, nil
		},
	}
	kickoff := time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC)
	fixtures := &stubFixtureRepo{listed: []fixture.Fixture{
		playedFixture(301, kickoff),
		playedFixture(302, kickoff.Add(time.Hour)),
	}}
	oddsRepo := &stubOddsRepo{}
	syncer := NewSportMonksOddsSyncer(api, fixtures, oddsRepo, 2, logging.NewNop())

	summary, err := syncer.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Processed != 2 || summary.Changed != 1 || summary.Skipped != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(oddsRepo.upserted) != 1 {
		t.Fatalf("upserted = %+v", oddsRepo.upserted)
	}
	snapshot := oddsRepo.upserted[0]
	if snapshot.TimelineSlot != odds.SlotSportMonks || snapshot.Provider != ProviderSportMonks {
		t.Fatalf("snapshot = %+v", snapshot)
	}
	if !snapshot.Timestamp.Equal(updated) {
		t.Fatalf("Timestamp = %v, want bookmaker update time", snapshot.Timestamp)
	}
}

func TestSportMonksOddsSyncerSkipExisting(t *testing.T) {
	t.Parallel()

	api := &stubSportMonksAPI{
		preMatchOdds: func(context.Context, int64, int64) (sportmonks.OddsQuote, error) {
			t.Fatal("fetch must not happen for existing slot")
			return sportmonks.OddsQuote{}, nil
		},
	}
	kickoff := time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC)
	fixtures := &stubFixtureRepo{listed: []fixture.Fixture{playedFixture(301, kickoff)}}
	oddsRepo := &stubOddsRepo{slots: map[slotKey]bool{
		{fixtureID: 301, slot: odds.SlotSportMonks, provider: ProviderSportMonks}: true,
	}}
	syncer := NewSportMonksOddsSyncer(api, fixtures, oddsRepo, 2, logging.NewNop())

	summary, err := syncer.Run(context.Background(), Options{SkipExisting: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Skipped != 1 || len(oddsRepo.upserted) != 0 {
		t.Fatalf("summary = %+v", summary)
	}
}
