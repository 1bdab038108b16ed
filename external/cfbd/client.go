package cfbd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
	"github.com/riskibarqy/cfb-analytics/internal/platform/resilience"
	"github.com/riskibarqy/cfb-analytics/internal/usecase"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL = "https://api.collegefootballdata.com"
	maxBodyBytes   = 32 << 20
)

var errCFBDTransient = crerr.New("cfbd transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the CollegeFootballData REST API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("cfbd")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger,
		breaker:      resilience.New("cfbd", cfg.CircuitBreaker, resilience.WithStateChange(logStateChange(logger))),
	}
}

func (c *Client) FetchTeams(ctx context.Context, season int) ([]usecase.ExternalTeam, error) {
	var items []teamItem
	if err := c.doJSON(ctx, "/teams", url.Values{"year": {strconv.Itoa(season)}}, &items); err != nil {
		return nil, fmt.Errorf("fetch teams year=%d: %w", season, err)
	}

	out := make([]usecase.ExternalTeam, 0, len(items))
	for _, item := range items {
		school := strings.TrimSpace(item.School)
		if school == "" {
			continue
		}
		out = append(out, usecase.ExternalTeam{
			ID:         string(item.ID),
			School:     school,
			Conference: strings.TrimSpace(item.Conference),
		})
	}
	return out, nil
}

func (c *Client) FetchRoster(ctx context.Context, season int, team string) ([]usecase.ExternalRosterPlayer, error) {
	query := url.Values{"year": {strconv.Itoa(season)}, "team": {team}}
	var items []rosterItem
	if err := c.doJSON(ctx, "/roster", query, &items); err != nil {
		return nil, fmt.Errorf("fetch roster year=%d team=%s: %w", season, team, err)
	}

	out := make([]usecase.ExternalRosterPlayer, 0, len(items))
	for _, item := range items {
		out = append(out, usecase.ExternalRosterPlayer{
			ID:        string(item.ID),
			FirstName: item.FirstName,
			LastName:  item.LastName,
			Position:  item.Position,
		})
	}
	return out, nil
}

func (c *Client) FetchPlays(ctx context.Context, season, week int) ([]map[string]any, error) {
	query := url.Values{"year": {strconv.Itoa(season)}, "week": {strconv.Itoa(week)}}
	var items []map[string]any
	if err := c.doJSON(ctx, "/plays", query, &items); err != nil {
		return nil, fmt.Errorf("fetch plays year=%d week=%d: %w", season, week, err)
	}
	return items, nil
}

func (c *Client) FetchPlayStats(ctx context.Context, gameID string) ([]usecase.ExternalPlayStat, error) {
	var items []playStatItem
	if err := c.doJSON(ctx, "/plays/stats", url.Values{"gameId": {gameID}}, &items); err != nil {
		return nil, fmt.Errorf("fetch play stats game=%s: %w", gameID, err)
	}

	out := make([]usecase.ExternalPlayStat, 0, len(items))
	for _, item := range items {
		out = append(out, usecase.ExternalPlayStat{
			GameID:      string(item.GameID),
			PlayID:      string(item.PlayID),
			AthleteID:   string(item.AthleteID),
			AthleteName: strings.TrimSpace(item.AthleteName),
			StatType:    strings.TrimSpace(item.StatType),
			Stat:        item.Stat,
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "cfbd circuit breaker rejected request", "state", c.breaker.State(), "path", path)
		return fmt.Errorf("%w: cfbd api is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if isCircuitFailure(reqErr) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrapf(err, "decode cfbd payload path=%s", path)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Wrapf(crerr.Mark(err, errCFBDTransient), "send request")
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Wrapf(crerr.Mark(readErr, errCFBDTransient), "read response body")
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Mark(crerr.Newf("cfbd status=%d body=%s", resp.StatusCode, abbreviateBody(raw)), errCFBDTransient)
			default:
				return nil, crerr.Newf("cfbd status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("cfbd request failed")
	}
	c.logger.WarnContext(ctx, "cfbd request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, errCFBDTransient) && !stderrors.Is(err, context.Canceled)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func logStateChange(logger *logging.Logger) resilience.StateChangeFunc {
	return func(name string, from, to resilience.CircuitState) {
		logger.Warn("circuit breaker state changed", "breaker", name, "from", string(from), "to", string(to))
	}
}
