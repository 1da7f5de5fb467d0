// Package jobqueue publishes delayed job calls through Upstash QStash, which
// calls back into the internal job endpoints.
package jobqueue

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

	crerr "github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/riskibarqy/football-stats/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errQStashTransient = crerr.New("qstash transient failure")

type QStashConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

type QStashPublisher struct {
	client           *http.Client
	publishBase      string
	targetBase       string
	token            string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

// NewQStashPublisher validates both base URLs up front so a misconfigured
// deployment fails at startup rather than on the first bootstrap.
func NewQStashPublisher(cfg QStashConfig, logger *logging.Logger) (*QStashPublisher, error) {
	if logger == nil {
		logger = logging.Default()
	}

	publishBase, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBase, err := validateHTTPBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &QStashPublisher{
		client:           &http.Client{Timeout: timeout},
		publishBase:      publishBase,
		targetBase:       targetBase,
		token:            strings.TrimSpace(cfg.Token),
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger,
		breaker:          resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}, nil
}

func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}

	if err := p.breaker.Allow(); err != nil {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected publish", "state", p.breaker.State(), "path", path)
		return fmt.Errorf("qstash is temporarily unavailable: %w", err)
	}

	if payload == nil {
		payload = map[string]any{}
	}
	body, err := jsoniter.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal job payload")
	}

	msg := publishMessage{
		publishURL:      p.publishBase + "/v2/publish/" + p.targetBase + path,
		path:            path,
		delay:           formatDelay(delay),
		deduplicationID: strings.TrimSpace(deduplicationID),
		body:            body,
	}
	p.annotate(ctx, msg)

	err = p.publish(ctx, msg)
	p.recordCircuitResult(err)
	if err != nil {
		p.logger.WarnContext(ctx, "qstash publish failed", "path", path, "error", err)
		return err
	}

	p.logger.InfoContext(ctx, "qstash job published", "path", path, "delay", msg.delay, "deduplication_id", msg.deduplicationID)
	return nil
}

type publishMessage struct {
	publishURL      string
	path            string
	delay           string
	deduplicationID string
	body            []byte
}

func (p *QStashPublisher) publish(ctx context.Context, msg publishMessage) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, msg.publishURL, bytes.NewReader(msg.body))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	for key, value := range p.headers(msg, false) {
		req.Header.Set(key, value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return crerr.Wrapf(errQStashTransient, "publish %s: %v", msg.path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	callErr := fmt.Errorf("publish %s status=%d body=%s", msg.path, resp.StatusCode, strings.TrimSpace(string(raw)))
	if isRetryableStatus(resp.StatusCode) {
		return crerr.Mark(callErr, errQStashTransient)
	}
	return callErr
}

// headers returns the request headers; masked replaces secrets for logs.
func (p *QStashPublisher) headers(msg publishMessage, masked bool) map[string]string {
	token := p.token
	forward := p.internalJobToken
	if masked {
		token, forward = "***", "***"
	}

	out := map[string]string{
		"Authorization":  "Bearer " + token,
		"Content-Type":   "application/json",
		"Upstash-Method": http.MethodPost,
	}
	if p.retries > 0 {
		out["Upstash-Retries"] = strconv.Itoa(p.retries)
	}
	if msg.delay != "0s" {
		out["Upstash-Delay"] = msg.delay
	}
	if msg.deduplicationID != "" {
		out["Upstash-Deduplication-Id"] = msg.deduplicationID
	}
	if p.internalJobToken != "" {
		out["Upstash-Forward-X-Internal-Job-Token"] = forward
	}
	return out
}

func (p *QStashPublisher) annotate(ctx context.Context, msg publishMessage) {
	preview := p.curlPreview(msg)
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.publish_url", msg.publishURL),
			attribute.String("qstash.path", msg.path),
			attribute.String("qstash.curl_preview", preview),
		)
	}
	p.logger.DebugContext(ctx, "qstash publish request", "path", msg.path, "curl_preview", preview)
}

func (p *QStashPublisher) curlPreview(msg publishMessage) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -X POST ")
	_, _ = buf.WriteString(shellQuote(msg.publishURL))
	for _, key := range []string{
		"Authorization", "Content-Type", "Upstash-Method", "Upstash-Retries",
		"Upstash-Delay", "Upstash-Deduplication-Id", "Upstash-Forward-X-Internal-Job-Token",
	} {
		value, ok := p.headers(msg, true)[key]
		if !ok {
			continue
		}
		_, _ = buf.WriteString(" -H ")
		_, _ = buf.WriteString(shellQuote(key + ": " + value))
	}
	_, _ = buf.WriteString(" -d ")
	_, _ = buf.WriteString(shellQuote(truncate(string(msg.body), 2048)))
	return buf.String()
}

func (p *QStashPublisher) recordCircuitResult(err error) {
	p.breaker.Record(crerr.Is(err, errQStashTransient))
}

func formatDelay(delay time.Duration) string {
	seconds := int(delay.Round(time.Second).Seconds())
	if seconds <= 0 {
		return "0s"
	}
	return strconv.Itoa(seconds) + "s"
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
