package sportmonks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/avolkov/linesync/internal/platform/logging"
	"github.com/avolkov/linesync/internal/platform/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Token:      "secret-token",
		MaxRetries: 1,
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled: false,
		},
	})

	return client, server
}

func TestLeagueByID(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/leagues/8" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("api_token"); got != "secret-token" {
			t.Errorf("api_token = %q, want secret-token", got)
		}
		w.Write([]byte(`{"data":{"id":8,"name":"Premier League"}}`))
	})

	league, err := client.LeagueByID(context.Background(), 8)
	if err != nil {
		t.Fatalf("LeagueByID: %v", err)
	}
	if league.ID != 8 || league.Name != "Premier League" {
		t.Fatalf("unexpected league %+v", league)
	}
}

func TestSeasonsByLeaguePagination(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filters"); got != "seasonLeagues:8" {
			t.Errorf("filters = %q", got)
		}
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`{"data":[{"id":1,"name":"2023/2024","league_id":8,"is_current":false}],"pagination":{"count":1,"per_page":50,"current_page":1,"has_more":true}}`))
		case "2":
			w.Write([]byte(`{"data":[{"id":2,"name":"2024/2025","league_id":8,"is_current":true}],"pagination":{"count":1,"per_page":50,"current_page":2,"has_more":false}}`))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
			w.Write([]byte(`{"data":[],"pagination":{"has_more":false}}`))
		}
	})

	seasons, err := client.SeasonsByLeague(context.Background(), 8)
	if err != nil {
		t.Fatalf("SeasonsByLeague: %v", err)
	}
	if len(seasons) != 2 {
		t.Fatalf("got %d seasons, want 2", len(seasons))
	}
	if seasons[1].Name != "2024/2025" || !seasons[1].IsCurrent {
		t.Fatalf("unexpected second season %+v", seasons[1])
	}
}

func TestSeasonSchedule(t *testing.T) {
	t.Parallel()

	payload := `{"data":[{"id":100,"name":"Regular Season","rounds":[{"id":200,"name":"1","fixtures":[
		{"id":301,"starting_at":"2025-08-16 14:00:00",
		 "participants":[
			{"id":10,"name":"Arsenal","short_code":"ARS","meta":{"location":"home"}},
			{"id":11,"name":"Chelsea","short_code":"CHE","meta":{"location":"away"}}],
		 "scores":[
			{"participant_id":10,"description":"CURRENT","score":{"goals":2,"participant":"home"}},
			{"participant_id":11,"description":"CURRENT","score":{"goals":1,"participant":"away"}}]},
		{"id":302,"starting_at":"",
		 "participants":[],"scores":[]}
	]}]}]}`

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schedules/seasons/5" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(payload))
	})

	fixtures, teams, err := client.SeasonSchedule(context.Background(), 5)
	if err != nil {
		t.Fatalf("SeasonSchedule: %v", err)
	}

	if len(fixtures) != 1 {
		t.Fatalf("got %d fixtures, want 1 (malformed rows skipped)", len(fixtures))
	}
	fx := fixtures[0]
	if fx.ID != 301 || fx.HomeTeamID != 10 || fx.AwayTeamID != 11 {
		t.Fatalf("unexpected fixture %+v", fx)
	}
	wantKickoff := time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC)
	if !fx.StartingAt.Equal(wantKickoff) {
		t.Fatalf("StartingAt = %v, want %v", fx.StartingAt, wantKickoff)
	}
	if fx.HomeGoals == nil || *fx.HomeGoals != 2 || fx.AwayGoals == nil || *fx.AwayGoals != 1 {
		t.Fatalf("unexpected goals %+v", fx)
	}

	if len(teams) != 2 {
		t.Fatalf("got %d teams, want 2", len(teams))
	}
	if teams[0].ID != 10 || teams[0].ShortCode != "ARS" {
		t.Fatalf("unexpected first team %+v", teams[0])
	}
}

func TestFixtureLineupsExtractsRating(t *testing.T) {
	t.Parallel()

	payload := `{"data":{"id":301,"lineups":[
		{"player_id":500,"team_id":10,"player_name":"Bukayo Saka","position_id":27,"jersey_number":7,"formation_position":11,
		 "details":[
			{"type_id":84,"type":{"name":"Goals","developer_name":"GOALS"},"data":{"value":1}},
			{"type_id":118,"type":{"name":"Rating","developer_name":"RATING"},"data":{"value":"8.42"}}]},
		{"player_id":501,"team_id":10,"player_name":"David Raya","details":[]}
	]}}`

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("include"); got != "lineups.details.type" {
			t.Errorf("include = %q", got)
		}
		w.Write([]byte(payload))
	})

	entries, err := client.FixtureLineups(context.Background(), 301)
	if err != nil {
		t.Fatalf("FixtureLineups: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	first := entries[0]
	if first.PlayerName != "Bukayo Saka" || first.Rating == nil || *first.Rating != 8.42 {
		t.Fatalf("unexpected first entry %+v", first)
	}
	if entries[1].Rating != nil {
		t.Fatalf("expected nil rating without details, got %v", *entries[1].Rating)
	}
}

func TestPreMatchOdds(t *testing.T) {
	t.Parallel()

	payload := `{"data":{"id":301,"odds":[
		{"market_id":1,"bookmaker_id":2,"label":"Home","value":"1.85","latest_bookmaker_update":"2025-08-16 12:00:00"},
		{"market_id":1,"bookmaker_id":2,"label":"Draw","value":"3.60","latest_bookmaker_update":"2025-08-16 12:05:00"},
		{"market_id":1,"bookmaker_id":2,"label":"Away","value":"4.20","latest_bookmaker_update":"2025-08-16 11:55:00"},
		{"market_id":1,"bookmaker_id":9,"label":"Home","value":"1.90"},
		{"market_id":12,"bookmaker_id":2,"label":"Yes","value":"1.50"}
	]}}`

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filters"); got != "markets:1;bookmakers:2" {
			t.Errorf("filters = %q", got)
		}
		w.Write([]byte(payload))
	})

	quote, err := client.PreMatchOdds(context.Background(), 301, 2)
	if err != nil {
		t.Fatalf("PreMatchOdds: %v", err)
	}

	if quote.Home == nil || *quote.Home != 1.85 {
		t.Fatalf("Home = %v", quote.Home)
	}
	if quote.Draw == nil || *quote.Draw != 3.60 {
		t.Fatalf("Draw = %v", quote.Draw)
	}
	if quote.Away == nil || *quote.Away != 4.20 {
		t.Fatalf("Away = %v", quote.Away)
	}
	if quote.UpdatedAt == nil {
		t.Fatal("UpdatedAt is nil")
	}
	wantUpdated := time.Date(2025, 8, 16, 12, 5, 0, 0, time.UTC)
	if !quote.UpdatedAt.Equal(wantUpdated) {
		t.Fatalf("UpdatedAt = %v, want latest bookmaker update %v", quote.UpdatedAt, wantUpdated)
	}
}

func TestPreMatchOddsEmptyQuote(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":301,"odds":[]}}`))
	})

	quote, err := client.PreMatchOdds(context.Background(), 301, 2)
	if err != nil {
		t.Fatalf("PreMatchOdds: %v", err)
	}
	if !quote.Empty() {
		t.Fatalf("expected empty quote, got %+v", quote)
	}
}

func TestExecuteRequestRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":{"id":8,"name":"Premier League"}}`))
	})

	league, err := client.LeagueByID(context.Background(), 8)
	if err != nil {
		t.Fatalf("LeagueByID after retry: %v", err)
	}
	if league.ID != 8 {
		t.Fatalf("unexpected league %+v", league)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("got %d calls, want 2", got)
	}
}

func TestExecuteRequestDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
	})

	_, err := client.LeagueByID(context.Background(), 99999)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("got %d calls, want 1", got)
	}
	if crerr.Is(err, ErrProviderUnavailable) {
		t.Fatalf("404 must not be marked unavailable: %v", err)
	}
}

func TestTransientFailureMarkedUnavailable(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.LeagueByID(context.Background(), 8)
	if err == nil {
		t.Fatal("expected error")
	}
	if !crerr.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	const token = "super-secret"
	cases := []struct {
		in   string
		want string
	}{
		{"call failed: api_token=super-secret&page=1", "call failed: api_token=REDACTED&page=1"},
		{"body mentions super-secret inline", "body mentions REDACTED inline"},
		{"nothing sensitive here", "nothing sensitive here"},
	}

	for _, tc := range cases {
		if got := sanitizeSensitiveText(tc.in, token); got != tc.want {
			t.Errorf("sanitizeSensitiveText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRedactAPIURL(t *testing.T) {
	t.Parallel()

	got := redactAPIURL("https://api.example.com/v3/football/seasons?api_token=super-secret&page=2", "super-secret")
	if strings.Contains(got, "super-secret") {
		t.Fatalf("token leaked in %q", got)
	}
	if !strings.Contains(got, "api_token=REDACTED") {
		t.Fatalf("expected redacted marker in %q", got)
	}
}

func TestParseProviderDateTime(t *testing.T) {
	t.Parallel()

	if got := parseProviderDateTime(""); got != nil {
		t.Fatalf("empty input parsed to %v", got)
	}
	if got := parseProviderDateTime("not a date"); got != nil {
		t.Fatalf("garbage input parsed to %v", got)
	}

	got := parseProviderDateTime("2025-08-16 14:00:00")
	want := time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
