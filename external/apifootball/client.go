package apifootball

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/riskibarqy/football-stats/internal/platform/resilience"
	"github.com/riskibarqy/football-stats/internal/usecase"
)

const (
	ProviderName = "apifootball"

	defaultTimeout     = 10 * time.Second
	defaultMaxRequests = 100
	maxResponseBytes   = 8 << 20
	dateLayout         = "2006-01-02"
)

var errAPIFootballTransient = crerr.New("api-football transient failure")

type ClientConfig struct {
	HTTPClient *http.Client
	// BaseURL overrides https://<Host>, used by tests.
	BaseURL        string
	Host           string
	Key            string
	Timeout        time.Duration
	MaxRequests    int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to api-football v3 through RapidAPI. It never retries: every
// request counts against the daily quota.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	host        string
	key         string
	maxRequests int
	logger      *logging.Logger
	breaker     *resilience.CircuitBreaker
	parser      Parser
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	host := strings.TrimSpace(cfg.Host)
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://" + host
	}

	maxRequests := cfg.MaxRequests
	if maxRequests <= 0 {
		maxRequests = defaultMaxRequests
	}

	client := &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		host:        host,
		key:         strings.TrimSpace(cfg.Key),
		maxRequests: maxRequests,
		logger:      logger,
		breaker:     resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
	client.breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("api-football circuit breaker state changed", "from", from, "to", to)
	})
	return client
}

func (c *Client) Name() string {
	return ProviderName
}

func (c *Client) MaxRequestsPerDay() int {
	return c.maxRequests
}

func (c *Client) Parser() usecase.ResponseParser {
	return c.parser
}

func (c *Client) Endpoint(task usecase.Task) string {
	switch task {
	case usecase.TaskGetTeams:
		return "teams"
	case usecase.TaskGetGoalsStats:
		return "fixtures/events"
	default:
		return "fixtures"
	}
}

func (c *Client) Payload(task usecase.Task, in usecase.PayloadInput) (map[string]string, error) {
	switch task {
	case usecase.TaskResultsByTournament:
		if err := requireLeague(in); err != nil {
			return nil, err
		}
		if in.Date.IsZero() {
			return nil, fmt.Errorf("date is required for %s", task)
		}
		return map[string]string{
			"league": fmt.Sprint(in.LeagueID),
			"season": in.Season,
			"date":   in.Date.UTC().Format(dateLayout),
		}, nil
	case usecase.TaskGetTeams:
		if err := requireLeague(in); err != nil {
			return nil, err
		}
		return map[string]string{
			"league": fmt.Sprint(in.LeagueID),
			"season": in.Season,
		}, nil
	case usecase.TaskGetGoalsStats:
		if in.FixtureID <= 0 {
			return nil, fmt.Errorf("fixture id is required for %s", task)
		}
		return map[string]string{"fixture": fmt.Sprint(in.FixtureID)}, nil
	default:
		return nil, fmt.Errorf("unsupported task %q", task)
	}
}

func requireLeague(in usecase.PayloadInput) error {
	if in.LeagueID <= 0 {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(in.Season) == "" {
		return fmt.Errorf("season is required")
	}
	return nil
}

// Send issues one GET. Failures of any kind are reported through
// ProviderResponse.Errors.
func (c *Client) Send(ctx context.Context, endpoint string, payload map[string]string) usecase.ProviderResponse {
	values := url.Values{}
	for key, value := range payload {
		values.Set(key, value)
	}
	resp := usecase.ProviderResponse{Query: values.Encode()}

	if err := c.breaker.Allow(); err != nil {
		resp.Errors = []string{"provider is temporarily unavailable: " + err.Error()}
		c.logResponseErrors(ctx, endpoint, resp)
		return resp
	}

	fullURL := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if resp.Query != "" {
		fullURL += "?" + resp.Query
	}

	raw, err := c.executeRequest(ctx, fullURL)
	c.breaker.Record(crerr.Is(err, errAPIFootballTransient))
	if err != nil {
		resp.Errors = []string{sanitizeSensitiveText(err.Error(), c.key)}
		c.logResponseErrors(ctx, endpoint, resp)
		return resp
	}

	resp.Raw = raw
	var envelope responseEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		resp.Errors = []string{fmt.Sprintf("decode provider payload: %v", err)}
		c.logResponseErrors(ctx, endpoint, resp)
		return resp
	}

	resp.Errors = normalizeErrors(envelope.Errors)
	if envelope.Response == nil && len(resp.Errors) == 0 {
		resp.Errors = []string{(&usecase.MissingCriticalDataError{Field: "response"}).Error()}
	}
	resp.Items = envelope.Response
	if resp.Failed() {
		c.logResponseErrors(ctx, endpoint, resp)
	}
	return resp
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("x-rapidapi-key", c.key)
	req.Header.Set("x-rapidapi-host", c.host)

	res, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("send request: %w", err)
		}
		return nil, crerr.Wrapf(errAPIFootballTransient, "send request: %s", sanitizeSensitiveText(err.Error(), c.key))
	}
	defer func() {
		_ = res.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, crerr.Wrapf(errAPIFootballTransient, "read response body: %v", err)
	}

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return raw, nil
	case isRetryableStatus(res.StatusCode):
		return nil, crerr.WithDetailf(
			crerr.Wrapf(errAPIFootballTransient, "provider status=%d", res.StatusCode),
			"body=%s", abbreviateBody(raw),
		)
	default:
		return nil, fmt.Errorf("provider status=%d body=%s", res.StatusCode, abbreviateBody(raw))
	}
}

func (c *Client) logResponseErrors(ctx context.Context, endpoint string, resp usecase.ProviderResponse) {
	c.logger.ErrorContext(ctx, "api-football request failed",
		"endpoint", endpoint,
		"query", resp.Query,
		"errors", resp.Errors,
	)
}

type responseEnvelope struct {
	Errors   any              `json:"errors"`
	Response []map[string]any `json:"response"`
}

// normalizeErrors flattens the errors field, which the API sends either as a
// list or as an object keyed by parameter.
func normalizeErrors(raw any) []string {
	switch typed := raw.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil
		}
		return []string{strings.TrimSpace(typed)}
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			out = append(out, normalizeErrors(item)...)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		out := make([]string, 0, len(typed))
		for _, key := range keys {
			for _, msg := range normalizeErrors(typed[key]) {
				out = append(out, key+": "+msg)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(typed)}
	}
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, key string) string {
	value = strings.TrimSpace(value)
	if key != "" {
		value = strings.ReplaceAll(value, key, "REDACTED")
	}
	return value
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
