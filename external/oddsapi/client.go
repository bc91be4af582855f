package oddsapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/avolkov/linesync/internal/platform/logging"
	"github.com/avolkov/linesync/internal/platform/resilience"
)

const (
	defaultBaseURL     = "https://api.the-odds-api.com"
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBytes   = 6 << 20

	marketH2H = "h2h"

	snapshotTimeLayout = "2006-01-02T15:04:05Z"
)

// ErrEventNotFound is returned when the provider has no snapshot data for
// the requested event.
var ErrEventNotFound = crerr.New("odds api event not found")

var apiKeyParamRegex = regexp.MustCompile(`(?i)apikey=[^&\s"']+`)

// ClientConfig controls The Odds API HTTP client.
type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Retry      resilience.RetrierConfig
	Logger     *logging.Logger
}

// Client talks to The Odds API historical endpoints. Every request runs
// under the retrier, so 429 responses are absorbed up to the retry budget
// before surfacing as resilience.ErrRateLimitExceeded.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	retrier    *resilience.Retrier
	logger     *logging.Logger
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

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		retrier:    resilience.NewRetrier(cfg.Retry),
		logger:     logger,
	}
}

// HistoricalEvents lists the events of one sport as they were known at
// snapshotAt, limited to kickoffs inside [from, to].
func (c *Client) HistoricalEvents(ctx context.Context, sportKey string, snapshotAt, from, to time.Time) (Snapshot[[]Event], error) {
	query := url.Values{}
	query.Set("date", snapshotAt.UTC().Format(snapshotTimeLayout))
	query.Set("commenceTimeFrom", from.UTC().Format(snapshotTimeLayout))
	query.Set("commenceTimeTo", to.UTC().Format(snapshotTimeLayout))

	path := fmt.Sprintf("/v4/historical/sports/%s/events", url.PathEscape(sportKey))

	var envelope historicalEventsEnvelope
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return Snapshot[[]Event]{}, err
	}

	snapshot, err := parseSnapshotTimes[[]Event](envelope.historicalEnvelope)
	if err != nil {
		return Snapshot[[]Event]{}, err
	}

	events := make([]Event, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		event, err := parseEvent(item)
		if err != nil {
			c.logger.WarnContext(ctx, "odds api: skipping malformed event",
				"event_id", item.ID,
				"sport_key", sportKey,
				"error", err.Error(),
			)
			continue
		}
		events = append(events, event)
	}
	snapshot.Data = events

	return snapshot, nil
}

// HistoricalEventOdds fetches one bookmaker's 1X2 prices for one event at
// snapshotAt. An event the provider no longer knows maps to
// ErrEventNotFound; a known event without prices yields an empty quote.
func (c *Client) HistoricalEventOdds(ctx context.Context, sportKey, eventID string, snapshotAt time.Time, region, bookmaker string) (Snapshot[Quote], error) {
	query := url.Values{}
	query.Set("date", snapshotAt.UTC().Format(snapshotTimeLayout))
	query.Set("regions", region)
	query.Set("markets", marketH2H)
	query.Set("bookmakers", bookmaker)

	path := fmt.Sprintf("/v4/historical/sports/%s/events/%s/odds",
		url.PathEscape(sportKey), url.PathEscape(eventID))

	var envelope historicalOddsEnvelope
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return Snapshot[Quote]{}, err
	}

	snapshot, err := parseSnapshotTimes[Quote](envelope.historicalEnvelope)
	if err != nil {
		return Snapshot[Quote]{}, err
	}
	snapshot.Data = extractQuote(envelope.Data, bookmaker)

	return snapshot, nil
}

// extractQuote prefers the designated bookmaker's block and falls back to
// the first returned block, so a snapshot the bookmaker skipped still
// carries a price instead of a gap.
func extractQuote(data eventOddsItem, bookmaker string) Quote {
	chosen := -1
	for i, bm := range data.Bookmakers {
		if strings.EqualFold(strings.TrimSpace(bm.Key), strings.TrimSpace(bookmaker)) {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		if len(data.Bookmakers) == 0 {
			return Quote{}
		}
		chosen = 0
	}

	var quote Quote
	for _, market := range data.Bookmakers[chosen].Markets {
		if market.Key != marketH2H {
			continue
		}
		for _, outcome := range market.Outcomes {
			price := outcome.Price
			switch {
			case equalLabel(outcome.Name, data.HomeTeam):
				quote.Home = &price
			case equalLabel(outcome.Name, data.AwayTeam):
				quote.Away = &price
			case equalLabel(outcome.Name, "Draw"):
				quote.Draw = &price
			}
		}
	}

	return quote
}

func equalLabel(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func parseEvent(item eventItem) (Event, error) {
	if item.ID == "" {
		return Event{}, crerr.New("event id is empty")
	}
	commence, err := time.Parse(time.RFC3339, item.CommenceTime)
	if err != nil {
		return Event{}, crerr.Wrapf(err, "parse commence_time %q", item.CommenceTime)
	}

	return Event{
		ID:           item.ID,
		SportKey:     item.SportKey,
		CommenceTime: commence.UTC(),
		HomeTeam:     item.HomeTeam,
		AwayTeam:     item.AwayTeam,
	}, nil
}

func parseSnapshotTimes[T any](envelope historicalEnvelope) (Snapshot[T], error) {
	var snapshot Snapshot[T]

	timestamp, err := time.Parse(time.RFC3339, envelope.Timestamp)
	if err != nil {
		return snapshot, crerr.Wrapf(err, "parse snapshot timestamp %q", envelope.Timestamp)
	}
	snapshot.Timestamp = timestamp.UTC()

	if envelope.PreviousTimestamp != "" {
		prev, err := time.Parse(time.RFC3339, envelope.PreviousTimestamp)
		if err == nil {
			utc := prev.UTC()
			snapshot.PreviousTimestamp = &utc
		}
	}
	if envelope.NextTimestamp != "" {
		next, err := time.Parse(time.RFC3339, envelope.NextTimestamp)
		if err == nil {
			utc := next.UTC()
			snapshot.NextTimestamp = &utc
		}
	}

	return snapshot, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, out any) error {
	values := url.Values{}
	for key, vals := range query {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	values.Set("apiKey", c.apiKey)
	fullURL := c.baseURL + path + "?" + values.Encode()

	var body []byte
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		var callErr error
		body, callErr = c.executeRequest(ctx, fullURL)
		return callErr
	})
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		return crerr.Wrapf(err, "decode odds api response for %s", path)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build odds api request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		wrapped := crerr.Wrapf(err, "call odds api %s", redactAPIURL(fullURL, c.apiKey))
		return nil, resilience.MarkTransient(wrapped)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resilience.MarkTransient(crerr.Wrap(err, "read odds api response"))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return payload, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, crerr.Mark(crerr.Newf("odds api returned status 404: %s",
			sanitizeSensitiveText(abbreviateBody(payload), c.apiKey)), ErrEventNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		rateErr := crerr.Newf("odds api returned status 429: %s",
			sanitizeSensitiveText(abbreviateBody(payload), c.apiKey))
		return nil, resilience.MarkRateLimited(rateErr, parseRetryAfter(resp.Header.Get("Retry-After")))
	case resp.StatusCode >= http.StatusInternalServerError:
		statusErr := crerr.Newf("odds api returned status %d: %s",
			resp.StatusCode, sanitizeSensitiveText(abbreviateBody(payload), c.apiKey))
		return nil, resilience.MarkTransient(statusErr)
	default:
		return nil, crerr.Newf("odds api returned status %d: %s",
			resp.StatusCode, sanitizeSensitiveText(abbreviateBody(payload), c.apiKey))
	}
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms. Zero means
// the header was absent or unusable and the retrier falls back to backoff.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}

	return 0
}

func abbreviateBody(body []byte) string {
	const maxLen = 240
	text := strings.TrimSpace(string(body))
	if len(text) > maxLen {
		return text[:maxLen] + "..."
	}

	return text
}

func sanitizeSensitiveText(value, apiKey string) string {
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}

	return apiKeyParamRegex.ReplaceAllString(value, "apiKey=REDACTED")
}

func redactAPIURL(rawURL, apiKey string) string {
	return sanitizeSensitiveText(rawURL, apiKey)
}
