package pipeline

import (
	"context"
	"time"

	"github.com/avolkov/linesync/external/oddsapi"
	"github.com/avolkov/linesync/external/sportmonks"
	"github.com/avolkov/linesync/internal/domain/fixture"
	"github.com/avolkov/linesync/internal/domain/fixturematch"
	"github.com/avolkov/linesync/internal/domain/league"
	"github.com/avolkov/linesync/internal/domain/lineup"
	"github.com/avolkov/linesync/internal/domain/mapping"
	"github.com/avolkov/linesync/internal/domain/odds"
	"github.com/avolkov/linesync/internal/domain/prevmatch"
	"github.com/avolkov/linesync/internal/domain/season"
	"github.com/avolkov/linesync/internal/domain/team"
	"github.com/avolkov/linesync/internal/domain/teamrating"
)

type stubSportMonksAPI struct {
	leagueByID      func(ctx context.Context, leagueID int64) (sportmonks.League, error)
	seasonsByLeague func(ctx context.Context, leagueID int64) ([]sportmonks.Season, error)
	seasonSchedule  func(ctx context.Context, seasonID int64) ([]sportmonks.ScheduleFixture, []sportmonks.TeamInfo, error)
	fixtureLineups  func(ctx context.Context, fixtureID int64) ([]sportmonks.LineupEntry, error)
	preMatchOdds    func(ctx context.Context, fixtureID, bookmakerID int64) (sportmonks.OddsQuote, error)
}

func (s *stubSportMonksAPI) LeagueByID(ctx context.Context, leagueID int64) (sportmonks.League, error) {
	return s.leagueByID(ctx, leagueID)
}

func (s *stubSportMonksAPI) SeasonsByLeague(ctx context.Context, leagueID int64) ([]sportmonks.Season, error) {
	return s.seasonsByLeague(ctx, leagueID)
}

func (s *stubSportMonksAPI) SeasonSchedule(ctx context.Context, seasonID int64) ([]sportmonks.ScheduleFixture, []sportmonks.TeamInfo, error) {
	return s.seasonSchedule(ctx, seasonID)
}

func (s *stubSportMonksAPI) FixtureLineups(ctx context.Context, fixtureID int64) ([]sportmonks.LineupEntry, error) {
	return s.fixtureLineups(ctx, fixtureID)
}

func (s *stubSportMonksAPI) PreMatchOdds(ctx context.Context, fixtureID, bookmakerID int64) (sportmonks.OddsQuote, error) {
	return s.preMatchOdds(ctx, fixtureID, bookmakerID)
}

type stubOddsAPI struct {
	historicalEvents    func(ctx context.Context, sportKey string, snapshotAt, from, to time.Time) (oddsapi.Snapshot[[]oddsapi.Event], error)
	historicalEventOdds func(ctx context.Context, sportKey, eventID string, snapshotAt time.Time, region, bookmaker string) (oddsapi.Snapshot[oddsapi.Quote], error)
}

func (s *stubOddsAPI) HistoricalEvents(ctx context.Context, sportKey string, snapshotAt, from, to time.Time) (oddsapi.Snapshot[[]oddsapi.Event], error) {
	return s.historicalEvents(ctx, sportKey, snapshotAt, from, to)
}

func (s *stubOddsAPI) HistoricalEventOdds(ctx context.Context, sportKey, eventID string, snapshotAt time.Time, region, bookmaker string) (oddsapi.Snapshot[oddsapi.Quote], error) {
	return s.historicalEventOdds(ctx, sportKey, eventID, snapshotAt, region, bookmaker)
}

type stubLeagueRepo struct {
	upserted []league.League
	keep     []int64
	listed   []league.League
}

func (r *stubLeagueRepo) Upsert(_ context.Context, leagues []league.League) (int, error) {
	r.upserted = append(r.upserted, leagues...)
	return len(leagues), nil
}

func (r *stubLeagueRepo) DeleteComplement(_ context.Context, _ string, keepIDs []int64) (int, error) {
	r.keep = append([]int64(nil), keepIDs...)
	return 0, nil
}

func (r *stubLeagueRepo) List(context.Context) ([]league.League, error) {
	return r.listed, nil
}

type stubSeasonRepo struct {
	upserted        []season.Season
	keep            []int64
	listed          []season.Season
	withoutFixtures []season.Season
}

func (r *stubSeasonRepo) Upsert(_ context.Context, seasons []season.Season) (int, error) {
	r.upserted = append(r.upserted, seasons...)
	return len(seasons), nil
}

func (r *stubSeasonRepo) DeleteComplement(_ context.Context, _ string, _ []int64, keepIDs []int64) (int, error) {
	r.keep = append([]int64(nil), keepIDs...)
	return 0, nil
}

func (r *stubSeasonRepo) List(context.Context, season.Filter) ([]season.Season, error) {
	return r.listed, nil
}

func (r *stubSeasonRepo) ListWithoutFixtures(context.Context, string, season.Filter) ([]season.Season, error) {
	return r.withoutFixtures, nil
}

type stubFixtureRepo struct {
	upserted []fixture.Fixture
	keep     []int64
	deleted  bool
	listed   []fixture.Fixture
}

func (r *stubFixtureRepo) Upsert(_ context.Context, fixtures []fixture.Fixture) (int, error) {
	r.upserted = append(r.upserted, fixtures...)
	return len(fixtures), nil
}

func (r *stubFixtureRepo) DeleteComplement(_ context.Context, _ string, _ []int64, keepIDs []int64) (int, error) {
	r.deleted = true
	r.keep = append([]int64(nil), keepIDs...)
	return 0, nil
}

func (r *stubFixtureRepo) List(context.Context, fixture.Filter) ([]fixture.Fixture, error) {
	return r.listed, nil
}

type stubTeamRepo struct {
	upserted []team.Team
	listed   []team.Team
}

func (r *stubTeamRepo) Upsert(_ context.Context, teams []team.Team) (int, error) {
	r.upserted = append(r.upserted, teams...)
	return len(teams), nil
}

func (r *stubTeamRepo) List(context.Context) ([]team.Team, error) {
	return r.listed, nil
}

type stubLineupRepo struct {
	replaced map[int64][]lineup.Entry
	existing map[int64]bool
}

func (r *stubLineupRepo) ReplaceForFixture(_ context.Context, fixtureID int64, entries []lineup.Entry) (int, error) {
	if r.replaced == nil {
		r.replaced = map[int64][]lineup.Entry{}
	}
	r.replaced[fixtureID] = entries
	return len(entries), nil
}

func (r *stubLineupRepo) HasFixture(_ context.Context, fixtureID int64) (bool, error) {
	return r.existing[fixtureID], nil
}

type stubPrevMatchRepo struct {
	upserted    []prevmatch.Entry
	keep        [][2]int64
	prevKickoff map[int64]*time.Time
}

func (r *stubPrevMatchRepo) Upsert(_ context.Context, entries []prevmatch.Entry) (int, error) {
	r.upserted = append(r.upserted, entries...)
	return len(entries), nil
}

func (r *stubPrevMatchRepo) DeleteComplement(_ context.Context, _ string, keep [][2]int64) (int, error) {
	r.keep = append([][2]int64(nil), keep...)
	return 0, nil
}

func (r *stubPrevMatchRepo) PrevKickoff(_ context.Context, fixtureID, _ int64) (*time.Time, error) {
	return r.prevKickoff[fixtureID], nil
}

type stubTeamRatingRepo struct {
	computed []teamrating.Rating
	upserted []teamrating.Rating
}

func (r *stubTeamRatingRepo) ComputeFromLineups(context.Context, []int64) ([]teamrating.Rating, error) {
	return r.computed, nil
}

func (r *stubTeamRatingRepo) Upsert(_ context.Context, ratings []teamrating.Rating) (int, error) {
	r.upserted = append(r.upserted, ratings...)
	return len(ratings), nil
}

type stubMatchRepo struct {
	candidates []fixturematch.CandidateFixture
	matched    []fixturematch.Matched
	upserted   []fixturematch.Match
}

func (r *stubMatchRepo) ListCandidates(context.Context, fixturematch.Filter) ([]fixturematch.CandidateFixture, error) {
	return r.candidates, nil
}

func (r *stubMatchRepo) ListMatched(context.Context, fixturematch.Filter) ([]fixturematch.Matched, error) {
	return r.matched, nil
}

func (r *stubMatchRepo) Upsert(_ context.Context, matches []fixturematch.Match) (int, error) {
	r.upserted = append(r.upserted, matches...)
	return len(matches), nil
}

type slotKey struct {
	fixtureID int64
	slot      string
	provider  string
}

type stubOddsRepo struct {
	upserted  []odds.Snapshot
	timelines map[int64]bool
	slots     map[slotKey]bool
}

func (r *stubOddsRepo) Upsert(_ context.Context, snapshots []odds.Snapshot) (int, error) {
	r.upserted = append(r.upserted, snapshots...)
	return len(snapshots), nil
}

func (r *stubOddsRepo) HasTimeline(_ context.Context, fixtureID int64, _ string) (bool, error) {
	return r.timelines[fixtureID], nil
}

func (r *stubOddsRepo) HasSlot(_ context.Context, fixtureID int64, slot, provider string) (bool, error) {
	return r.slots[slotKey{fixtureID: fixtureID, slot: slot, provider: provider}], nil
}

type stubMappingRepo struct {
	teams           []mapping.TeamMapping
	leagues         []mapping.LeagueMapping
	insertedTeams   []mapping.TeamMapping
	insertedLeagues []mapping.LeagueMapping
	upsertedTeams   []mapping.TeamMapping
	upsertedLeagues []mapping.LeagueMapping
}

func (r *stubMappingRepo) ListTeams(context.Context) ([]mapping.TeamMapping, error) {
	return r.teams, nil
}

func (r *stubMappingRepo) ListLeagues(context.Context) ([]mapping.LeagueMapping, error) {
	return r.leagues, nil
}

func (r *stubMappingRepo) InsertNewTeams(_ context.Context, rows []mapping.TeamMapping) (int, error) {
	r.insertedTeams = append(r.insertedTeams, rows...)
	return len(rows), nil
}

func (r *stubMappingRepo) InsertNewLeagues(_ context.Context, rows []mapping.LeagueMapping) (int, error) {
	r.insertedLeagues = append(r.insertedLeagues, rows...)
	return len(rows), nil
}

func (r *stubMappingRepo) UpsertTeams(_ context.Context, rows []mapping.TeamMapping) (int, error) {
	r.upsertedTeams = append(r.upsertedTeams, rows...)
	return len(rows), nil
}

func (r *stubMappingRepo) UpsertLeagues(_ context.Context, rows []mapping.LeagueMapping) (int, error) {
	r.upsertedLeagues = append(r.upsertedLeagues, rows...)
	return len(rows), nil
}
