package gotsport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"

	"github.com/copperpitch/youthrank/internal/domain/division"
	"github.com/copperpitch/youthrank/internal/platform/logging"
	"github.com/copperpitch/youthrank/internal/platform/resilience"
	"github.com/copperpitch/youthrank/internal/usecase"
)

const (
	defaultBaseURL         = "https://system.gotsport.com"
	defaultRankingsBaseURL = "https://rankings.gotsport.com"
	defaultUserAgent       = "youthrank/1.0 (+github.com/copperpitch/youthrank)"
	defaultTimeout         = 30 * time.Second
	defaultMaxRetries      = 3
	defaultBackoffBase     = 2 * time.Second
	maxBodyBytes           = 6 << 20
)

type ClientConfig struct {
	HTTPClient      *http.Client
	BaseURL         string
	RankingsBaseURL string
	UserAgent       string
	Timeout         time.Duration
	MaxRetries      int
	Logger          *logging.Logger
	Breaker         resilience.BreakerConfig

	// Sleep is the backoff wait. Tests swap it out; nil means a real
	// timer that aborts when the context does.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Client talks to the team-ranking platform: division rosters, per-team
// past matches and the profile search endpoint. One instance is shared
// across all pool workers so keep-alive connections get reused.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	rankingsBaseURL string
	userAgent       string
	maxRetries      int
	backoffBase     time.Duration
	logger          *logging.Logger
	breaker         *resilience.Breaker
	breakerEnabled  bool
	flight          resilience.SingleFlight
	sleep           func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	rankingsBaseURL := strings.TrimRight(strings.TrimSpace(cfg.RankingsBaseURL), "/")
	if rankingsBaseURL == "" {
		rankingsBaseURL = defaultRankingsBaseURL
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = defaultMaxRetries
	}

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	breakerCfg := resilience.NormalizeBreakerConfig(cfg.Breaker)

	return &Client{
		httpClient:      httpClient,
		baseURL:         baseURL,
		rankingsBaseURL: rankingsBaseURL,
		userAgent:       userAgent,
		maxRetries:      maxRetries,
		backoffBase:     defaultBackoffBase,
		logger:          logger,
		breaker:         resilience.NewBreaker(breakerCfg),
		breakerEnabled:  breakerCfg.Enabled,
		sleep:           sleep,
	}
}

// FetchRoster downloads a division roster. The platform serves JSON to
// API consumers but falls back to the rendered ranking table for some
// divisions, so both shapes are accepted.
func (c *Client) FetchRoster(ctx context.Context, d division.Division) ([]usecase.ExternalRosterEntry, error) {
	if err := d.Validate(); err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "roster request"), usecase.ErrInvalidArgument)
	}

	raw, contentType, err := c.fetch(ctx, d.RosterURL)
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch roster division=%s", d.Key)
	}

	var entries []usecase.ExternalRosterEntry
	if looksLikeJSON(contentType, raw) {
		entries, err = parseRosterJSON(raw)
	} else {
		entries, err = parseRosterHTML(raw)
	}
	if err != nil {
		return nil, crerr.Wrapf(err, "parse roster division=%s", d.Key)
	}

	if len(entries) == 0 {
		return nil, crerr.Mark(crerr.Newf("division %s roster is empty", d.Key), usecase.ErrEmptyUpstream)
	}
	return entries, nil
}

// FetchPastMatches downloads a team's completed match history. A 404
// means the cached profile id is stale; callers invalidate and
// re-resolve on that class.
func (c *Client) FetchPastMatches(ctx context.Context, externalID string) ([]usecase.ExternalMatch, error) {
	id := strings.TrimSpace(externalID)
	if id == "" {
		return nil, crerr.Mark(crerr.New("external id is required"), usecase.ErrInvalidArgument)
	}

	fullURL := fmt.Sprintf("%s/api/v1/teams/%s/matches?past=true", c.baseURL, url.PathEscape(id))
	raw, _, err := c.fetch(ctx, fullURL)
	if err != nil {
		if code, ok := StatusCode(err); ok && code == http.StatusNotFound {
			return nil, crerr.Mark(crerr.Wrapf(err, "team %s has no profile", id), usecase.ErrProfileNotFound)
		}
		return nil, crerr.Wrapf(err, "fetch past matches team=%s", id)
	}

	rows, err := decodeListPayload(raw, "matches", "data")
	if err != nil {
		return nil, crerr.Wrapf(err, "decode past matches team=%s", id)
	}

	out := make([]usecase.ExternalMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapRawMatch(row, fullURL))
	}
	return out, nil
}

// SearchTeams queries the rankings search endpoint for profile
// candidates. Concurrent identical queries collapse into one request.
func (c *Client) SearchTeams(ctx context.Context, query string) ([]usecase.ExternalSearchHit, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, crerr.Mark(crerr.New("search query is required"), usecase.ErrInvalidArgument)
	}

	values := url.Values{}
	values.Set("search", q)
	fullURL := c.rankingsBaseURL + "/team_search?" + values.Encode()

	out, err, shared := c.flight.Do(fullURL, func() (any, error) {
		raw, _, reqErr := c.fetch(ctx, fullURL)
		if reqErr != nil {
			return nil, reqErr
		}
		return raw, nil
	})
	if err != nil {
		return nil, crerr.Wrapf(err, "search teams query=%q", q)
	}
	if shared {
		c.logger.DebugContext(ctx, "search request shared across workers", "query", q)
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, crerr.Newf("unexpected search payload type %T", out)
	}

	rows, err := decodeListPayload(raw, "teams", "results", "data")
	if err != nil {
		return nil, crerr.Wrapf(err, "decode search results query=%q", q)
	}

	results := make([]usecase.ExternalSearchHit, 0, len(rows))
	for _, row := range rows {
		candidate := mapSearchResult(row)
		if candidate.Name == "" || candidate.ExternalID == "" {
			continue
		}
		results = append(results, candidate)
	}
	return results, nil
}

// fetch gates one GET through the breaker and records the outcome.
// Only transient classes count against the breaker; a 404 is a valid
// upstream answer, not an upstream failure.
func (c *Client) fetch(ctx context.Context, fullURL string) ([]byte, string, error) {
	if c.breakerEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "breaker rejected upstream request", "url", fullURL, "state", c.breaker.State())
			return nil, "", crerr.Mark(crerr.Wrap(err, "upstream admission"), usecase.ErrTransientHTTP)
		}
	}

	raw, contentType, err := c.executeRequest(ctx, fullURL)
	if c.breakerEnabled {
		if err != nil && (crerr.Is(err, usecase.ErrTransientHTTP) || crerr.Is(err, usecase.ErrRateLimited)) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return raw, contentType, err
}

// executeRequest runs the retry loop: up to maxRetries attempts with
// waits of base·2^(n−1) between them (2s, 4s, 8s at the defaults). A
// 429 doubles the base for the rest of this call and its Retry-After
// is honored when larger than the computed wait.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, string, error) {
	base := c.backoffBase
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, "", crerr.Wrap(err, "build request")
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json, text/html")

		var retryAfter time.Duration
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			lastErr = crerr.Mark(crerr.Wrap(err, "send request"), usecase.ErrTransientHTTP)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			contentType := resp.Header.Get("Content-Type")
			retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			_ = resp.Body.Close()

			switch {
			case readErr != nil:
				lastErr = crerr.Mark(crerr.Wrap(readErr, "read response body"), usecase.ErrTransientHTTP)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, contentType, nil
			case resp.StatusCode == http.StatusTooManyRequests:
				base *= 2
				lastErr = crerr.Mark(&StatusError{Code: resp.StatusCode, Body: abbreviateBody(raw)}, usecase.ErrRateLimited)
			case resp.StatusCode >= http.StatusInternalServerError:
				lastErr = crerr.Mark(&StatusError{Code: resp.StatusCode, Body: abbreviateBody(raw)}, usecase.ErrTransientHTTP)
			default:
				return nil, "", &StatusError{Code: resp.StatusCode, Body: abbreviateBody(raw)}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		wait := base << (attempt - 1)
		if retryAfter > wait {
			wait = retryAfter
		}
		c.logger.DebugContext(ctx, "retrying upstream request",
			"url", fullURL,
			"attempt", attempt,
			"wait", wait.String(),
			"error", lastErr,
		)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, "", err
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("upstream request failed")
	}
	c.logger.WarnContext(ctx, "upstream request exhausted retries", "url", fullURL, "attempts", c.maxRetries, "error", lastErr)
	return nil, "", lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(raw string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func looksLikeJSON(contentType string, raw []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "json") {
		return true
	}
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{')
}

func parseRosterJSON(raw []byte) ([]usecase.ExternalRosterEntry, error) {
	rows, err := decodeListPayload(raw, "data", "teams")
	if err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalRosterEntry, 0, len(rows))
	for _, row := range rows {
		entry := mapRosterEntry(row)
		if entry.Name == "" {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// parseRosterHTML extracts teams from the rendered ranking table: the
// anchor text is the display name, the team id rides in the href as a
// team= query param or a /teams/<id> path segment.
func parseRosterHTML(raw []byte) ([]usecase.ExternalRosterEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, crerr.Wrap(err, "parse roster html")
	}

	entries := make([]usecase.ExternalRosterEntry, 0, 32)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		anchor := row.Find("a[href]").First()
		name := strings.Join(strings.Fields(anchor.Text()), " ")
		if name == "" {
			return
		}
		href, _ := anchor.Attr("href")
		entries = append(entries, usecase.ExternalRosterEntry{
			Name:       name,
			ExternalID: teamIDFromHref(href),
		})
	})
	return entries, nil
}

func teamIDFromHref(href string) string {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if id := strings.TrimSpace(parsed.Query().Get("team")); id != "" {
		return id
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		if segments[i] == "teams" {
			return strings.TrimSpace(segments[i+1])
		}
	}
	return ""
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
