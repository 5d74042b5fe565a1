package opendota

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/player"
	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
	"github.com/szarroug3/dota-data-sub001/internal/platform/logging"
	"github.com/szarroug3/dota-data-sub001/internal/platform/resilience"
	"github.com/szarroug3/dota-data-sub001/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultBaseURL = "https://api.opendota.com/api"

var errProviderTransient = crerr.New("match data provider transient failure")

// ReferenceResolver resolves hero and item ids during payload translation.
// The in-memory reference repository satisfies it.
type ReferenceResolver interface {
	Hero(ctx context.Context, id int64) (*reference.Hero, bool)
	Item(ctx context.Context, id int64) (*reference.Item, bool)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the OpenDota-style match-data API and translates raw
// payloads into the internal domain shapes.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	refs           ReferenceResolver
}

func NewClient(cfg ClientConfig, refs ReferenceResolver) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}
	if httpClient.Transport == nil {
		httpClient.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		refs:           refs,
	}
}

func (c *Client) FetchHeroes(ctx context.Context) ([]reference.Hero, error) {
	var payload []apiHero
	if err := c.doJSON(ctx, "/heroes", nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch heroes: %w", err)
	}
	return translateHeroes(payload), nil
}

func (c *Client) FetchItems(ctx context.Context) ([]reference.Item, error) {
	var payload []apiItem
	if err := c.doJSON(ctx, "/items", nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	return translateItems(payload), nil
}

func (c *Client) FetchLeagues(ctx context.Context) ([]reference.League, error) {
	var payload []apiLeague
	if err := c.doJSON(ctx, "/leagues", nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch leagues: %w", err)
	}
	return translateLeagues(payload), nil
}

func (c *Client) FetchTeam(ctx context.Context, teamID int64) (usecase.TeamInfo, error) {
	if teamID <= 0 {
		return usecase.TeamInfo{}, fmt.Errorf("team id must be greater than zero")
	}

	var payload apiTeam
	if err := c.doJSON(ctx, "/teams/"+strconv.FormatInt(teamID, 10), nil, &payload); err != nil {
		return usecase.TeamInfo{}, fmt.Errorf("fetch team team_id=%d: %w", teamID, err)
	}

	return usecase.TeamInfo{
		TeamID:  payload.TeamID,
		Name:    strings.TrimSpace(payload.Name),
		Tag:     strings.TrimSpace(payload.Tag),
		LogoURL: strings.TrimSpace(payload.LogoURL),
	}, nil
}

func (c *Client) FetchLeagueMatches(ctx context.Context, leagueID int64) ([]usecase.LeagueMatchStub, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("league id must be greater than zero")
	}

	var payload []apiLeagueMatch
	if err := c.doJSON(ctx, "/leagues/"+strconv.FormatInt(leagueID, 10), nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch league matches league_id=%d: %w", leagueID, err)
	}

	out := make([]usecase.LeagueMatchStub, 0, len(payload))
	for _, item := range payload {
		if item.MatchID <= 0 {
			continue
		}
		out = append(out, usecase.LeagueMatchStub{
			MatchID:       item.MatchID,
			RadiantTeamID: item.RadiantTeamID,
			DireTeamID:    item.DireTeamID,
			StartTime:     item.StartTime,
		})
	}
	return out, nil
}

func (c *Client) FetchMatch(ctx context.Context, matchID int64, force bool) (*match.Match, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("match id must be greater than zero")
	}

	var query map[string]string
	if force {
		query = map[string]string{"force": "true"}
	}

	var payload apiMatch
	if err := c.doJSON(ctx, "/matches/"+strconv.FormatInt(matchID, 10), query, &payload); err != nil {
		return nil, fmt.Errorf("fetch match match_id=%d: %w", matchID, err)
	}
	if payload.MatchID <= 0 {
		payload.MatchID = matchID
	}

	return c.translateMatch(ctx, payload), nil
}

func (c *Client) FetchPlayer(ctx context.Context, accountID int64) (*player.Player, error) {
	if !player.ValidAccountID(accountID) {
		return nil, fmt.Errorf("account id must be greater than zero")
	}

	var payload apiPlayer
	if err := c.doJSON(ctx, "/players/"+strconv.FormatInt(accountID, 10), nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch player account_id=%d: %w", accountID, err)
	}

	return translatePlayer(accountID, payload), nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "provider circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: match data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		values := url.Values{}
		for key, value := range query {
			values.Set(key, value)
		}
		fullURL += "?" + values.Encode()
	}

	raw, err := c.executeRequest(ctx, fullURL)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, errProviderTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
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

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errProviderTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errProviderTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errProviderTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("provider status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "provider request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
