package sportmonks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/avolkov/linesync/internal/platform/logging"
	"github.com/avolkov/linesync/internal/platform/resilience"
)

const (
	defaultBaseURL     = "https://api.sportmonks.com/v3/football"
	defaultHTTPTimeout = 20 * time.Second
	defaultMaxRetries  = 2
	maxResponseBytes   = 6 << 20

	market1X2ID     = 1
	seasonsPerPage  = 50
	seasonsMaxPages = 200
)

var (
	// ErrProviderUnavailable is returned when the provider cannot serve a
	// request after retries or the circuit is open.
	ErrProviderUnavailable = crerr.New("sportmonks provider unavailable")

	errSportMonksTransient = crerr.New("sportmonks transient failure")

	apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
)

// ClientConfig controls the SportMonks HTTP client.
type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the SportMonks football API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	maxRetries   int
	logger       *logging.Logger
	circuit      *resilience.CircuitBreaker
	singleflight resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(firstNonEmpty(cfg.BaseURL, defaultBaseURL), "/")
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	cb := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	var circuit *resilience.CircuitBreaker
	if cb.Enabled {
		circuit = resilience.NewCircuitBreaker(cb.FailureThreshold, cb.OpenTimeout, cb.HalfOpenMaxReq)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      cfg.Token,
		maxRetries: maxRetries,
		logger:     logger,
		circuit:    circuit,
	}
}

// LeagueByID fetches a single league.
func (c *Client) LeagueByID(ctx context.Context, leagueID int64) (League, error) {
	var envelope leagueEnvelope
	path := fmt.Sprintf("/leagues/%d", leagueID)
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return League{}, err
	}

	return League{ID: envelope.Data.ID, Name: envelope.Data.Name}, nil
}

// SeasonsByLeague fetches every season of one league, walking pagination
// until the provider reports no further pages.
func (c *Client) SeasonsByLeague(ctx context.Context, leagueID int64) ([]Season, error) {
	var seasons []Season

	for page := 1; ; page++ {
		if page > seasonsMaxPages {
			return nil, crerr.Newf("sportmonks seasons pagination exceeded %d pages for league %d", seasonsMaxPages, leagueID)
		}

		query := url.Values{}
		query.Set("filters", fmt.Sprintf("seasonLeagues:%d", leagueID))
		query.Set("per_page", strconv.Itoa(seasonsPerPage))
		query.Set("page", strconv.Itoa(page))

		var envelope seasonsEnvelope
		if err := c.doJSON(ctx, "/seasons", query, &envelope); err != nil {
			return nil, err
		}

		for _, item := range envelope.Data {
			seasons = append(seasons, Season{
				ID:        item.ID,
				Name:      item.Name,
				LeagueID:  item.LeagueID,
				IsCurrent: item.IsCurrent,
			})
		}

		if !envelope.Pagination.HasMore {
			break
		}
	}

	return seasons, nil
}

// SeasonSchedule fetches a season's full schedule and flattens it into
// fixtures plus the participating teams.
func (c *Client) SeasonSchedule(ctx context.Context, seasonID int64) ([]ScheduleFixture, []TeamInfo, error) {
	var envelope scheduleEnvelope
	path := fmt.Sprintf("/schedules/seasons/%d", seasonID)
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return nil, nil, err
	}

	var fixtures []ScheduleFixture
	teams := map[int64]TeamInfo{}

	for _, stage := range envelope.Data {
		for _, round := range stage.Rounds {
			for _, item := range round.Fixtures {
				fx, ok := parseScheduleFixture(item, teams)
				if !ok {
					c.logger.WarnContext(ctx, "sportmonks: skipping malformed schedule fixture",
						"fixture_id", item.ID,
						"season_id", seasonID,
					)
					continue
				}
				fixtures = append(fixtures, fx)
			}
		}
	}

	teamList := make([]TeamInfo, 0, len(teams))
	for _, info := range teams {
		teamList = append(teamList, info)
	}
	sort.Slice(teamList, func(i, j int) bool { return teamList[i].ID < teamList[j].ID })

	return fixtures, teamList, nil
}

// FixtureLineups fetches a fixture's starting lineups with per-player ratings
// where the provider published them.
func (c *Client) FixtureLineups(ctx context.Context, fixtureID int64) ([]LineupEntry, error) {
	query := url.Values{}
	query.Set("include", "lineups.details.type")

	var envelope fixtureEnvelope
	path := fmt.Sprintf("/fixtures/%d", fixtureID)
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return nil, err
	}

	entries := make([]LineupEntry, 0, len(envelope.Data.Lineups))
	for _, item := range envelope.Data.Lineups {
		entries = append(entries, LineupEntry{
			PlayerID:          item.PlayerID,
			TeamID:            item.TeamID,
			PlayerName:        item.PlayerName,
			PositionID:        item.PositionID,
			JerseyNumber:      item.JerseyNumber,
			FormationPosition: item.FormationPosition,
			Rating:            extractRating(item.Details),
		})
	}

	return entries, nil
}

// PreMatchOdds fetches the pre-match 1X2 quote of one bookmaker for one
// fixture. The zero quote is returned when the bookmaker has no prices.
func (c *Client) PreMatchOdds(ctx context.Context, fixtureID, bookmakerID int64) (OddsQuote, error) {
	query := url.Values{}
	query.Set("include", "odds")
	query.Set("filters", fmt.Sprintf("markets:%d;bookmakers:%d", market1X2ID, bookmakerID))

	var envelope fixtureEnvelope
	path := fmt.Sprintf("/fixtures/%d", fixtureID)
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return OddsQuote{}, err
	}

	var quote OddsQuote
	for _, row := range envelope.Data.Odds {
		if row.MarketID != market1X2ID || row.BookmakerID != bookmakerID {
			continue
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(row.Value), 64)
		if err != nil {
			continue
		}
		price := value

		switch strings.ToLower(strings.TrimSpace(row.Label)) {
		case "home", "1":
			quote.Home = &price
		case "draw", "x":
			quote.Draw = &price
		case "away", "2":
			quote.Away = &price
		default:
			continue
		}

		if updated := parseProviderDateTime(firstNonEmpty(row.LatestBookmakerUpdate, row.CreatedAt)); updated != nil {
			if quote.UpdatedAt == nil || updated.After(*quote.UpdatedAt) {
				quote.UpdatedAt = updated
			}
		}
	}

	return quote, nil
}

func parseScheduleFixture(item scheduleFixtureItem, teams map[int64]TeamInfo) (ScheduleFixture, bool) {
	startingAt := parseProviderDateTime(item.StartingAt)
	if item.ID == 0 || startingAt == nil {
		return ScheduleFixture{}, false
	}

	fx := ScheduleFixture{ID: item.ID, StartingAt: *startingAt}
	for _, p := range item.Participants {
		switch strings.ToLower(p.Meta.Location) {
		case "home":
			fx.HomeTeamID = p.ID
		case "away":
			fx.AwayTeamID = p.ID
		default:
			continue
		}
		teams[p.ID] = TeamInfo{ID: p.ID, Name: p.Name, ShortCode: p.ShortCode}
	}
	if fx.HomeTeamID == 0 || fx.AwayTeamID == 0 {
		return ScheduleFixture{}, false
	}

	fx.HomeGoals = currentGoals(item.Scores, fx.HomeTeamID)
	fx.AwayGoals = currentGoals(item.Scores, fx.AwayTeamID)

	return fx, true
}

// currentGoals prefers the CURRENT score entry and falls back to 2ND_HALF
// which the provider uses on older seasons.
func currentGoals(scores []fixtureScoreItem, teamID int64) *int {
	var fallback *int
	for _, s := range scores {
		if s.ParticipantID != teamID || s.Score.Goals == nil {
			continue
		}
		switch strings.ToUpper(s.Description) {
		case "CURRENT":
			return s.Score.Goals
		case "2ND_HALF", "FT":
			fallback = s.Score.Goals
		}
	}

	return fallback
}

func extractRating(details []lineupDetailItem) *float64 {
	for _, d := range details {
		name := strings.ToLower(d.typeName())
		if !strings.Contains(name, "rating") {
			continue
		}
		if rating, ok := detailFloat(d.Data.Value); ok {
			return &rating
		}
	}

	return nil
}

func detailFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, out any) error {
	if c.circuit != nil {
		if err := c.circuit.Allow(); err != nil {
			return crerr.Mark(crerr.Wrapf(err, "sportmonks request %s rejected", path), ErrProviderUnavailable)
		}
	}

	values := url.Values{}
	for key, vals := range query {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	values.Set("api_token", c.token)
	fullURL := c.baseURL + path + "?" + values.Encode()

	key := path
	if encoded := query.Encode(); encoded != "" {
		key += "?" + encoded
	}

	body, err, _ := c.singleflight.Do(key, func() (any, error) {
		return c.executeRequest(ctx, fullURL)
	})
	if err != nil {
		if c.circuit != nil && isSportMonksCircuitFailure(err) {
			c.circuit.RecordFailure()
		}
		if crerr.Is(err, errSportMonksTransient) {
			return crerr.Mark(err, ErrProviderUnavailable)
		}
		return err
	}
	if c.circuit != nil {
		c.circuit.RecordSuccess()
	}

	raw, ok := body.([]byte)
	if !ok {
		return crerr.Newf("sportmonks: unexpected response payload type %T", body)
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return crerr.Wrapf(err, "decode sportmonks response for %s", path)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "build sportmonks request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Mark(crerr.Wrapf(err, "call sportmonks %s", redactAPIURL(fullURL, c.token)), errSportMonksTransient)
		} else {
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			resp.Body.Close()
			if readErr != nil {
				lastErr = crerr.Mark(crerr.Wrap(readErr, "read sportmonks response"), errSportMonksTransient)
			} else if resp.StatusCode == http.StatusOK {
				return body, nil
			} else {
				statusErr := crerr.Newf("sportmonks returned status %d: %s",
					resp.StatusCode, sanitizeSensitiveText(abbreviateBody(body), c.token))
				if !isRetryableStatus(resp.StatusCode) {
					return nil, statusErr
				}
				lastErr = crerr.Mark(statusErr, errSportMonksTransient)
			}
		}

		if attempt == c.maxRetries {
			break
		}

		c.logger.WarnContext(ctx, "sportmonks request failed, retrying",
			"url", redactAPIURL(fullURL, c.token),
			"attempt", attempt+1,
			"error", sanitizeSensitiveText(lastErr.Error(), c.token),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}

	return nil, lastErr
}

func isSportMonksCircuitFailure(err error) bool {
	return crerr.Is(err, errSportMonksTransient)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	const maxLen = 240
	text := strings.TrimSpace(string(body))
	if len(text) > maxLen {
		return text[:maxLen] + "..."
	}

	return text
}

func sanitizeSensitiveText(value, token string) string {
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}

	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func redactAPIURL(rawURL, token string) string {
	return sanitizeSensitiveText(rawURL, token)
}

func parseProviderDateTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z07:00",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
