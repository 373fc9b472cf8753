// Package providers holds the HTTP clients for upstream bundle vendors.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/prodataworld/prodata-backend/internal/fulfillment"
	"github.com/prodataworld/prodata-backend/pkg/config"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"github.com/prodataworld/prodata-backend/pkg/metrics"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 1 << 20
)

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhone strips everything but digits from a beneficiary number.
func FormatPhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// Option customises a vendor client.
type Option func(*caller)

func WithHTTPClient(client *http.Client) Option {
	return func(c *caller) {
		if client != nil {
			c.http = client
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *caller) { c.logg = logg }
}

func WithMetrics(m *metrics.FulfillmentMetrics) Option {
	return func(c *caller) { c.metrics = m }
}

// caller is the transport every vendor client shares: one limiter and one
// breaker per vendor.
type caller struct {
	name    string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.FulfillmentMetrics
	logg    *logger.Logger
	headers map[string]string
}

type response struct {
	status int
	body   []byte
}

func newCaller(name string, cfg config.ProviderConfig, headers map[string]string, opts ...Option) *caller {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	c := &caller{
		name:    name,
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		headers: headers,
	}
	for _, opt := range opts {
		opt(c)
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.BreakerHalfOpens,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.metrics.SetBreakerState(name, int(to))
			if c.logg != nil {
				ctx := c.logg.WithFields(context.Background(), map[string]any{
					"provider": name,
					"from":     from.String(),
					"to":       to.String(),
				})
				c.logg.Warn(ctx, "provider circuit breaker state changed")
			}
		},
	})
	return c
}

// errServerFailure marks 5xx replies so the breaker counts them.
var errServerFailure = stdErrors.New("vendor server error")

// postJSON sends payload and returns the reply. Non-2xx replies come back
// together with a rejected PushError; transport, breaker and limiter
// problems come back as PushErrors with no reply.
func (c *caller) postJSON(ctx context.Context, path string, payload any) (*response, error) {
	return c.do(ctx, http.MethodPost, path, payload)
}

func (c *caller) getJSON(ctx context.Context, path string) (*response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *caller) do(ctx context.Context, method, path string, payload any) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &fulfillment.PushError{Kind: enums.PushErrorRateLimited, Err: err}
	}

	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, &fulfillment.PushError{Kind: enums.PushErrorInvalidOrder, Err: fmt.Errorf("encode payload: %w", err)}
		}
		body = encoded
	}

	endpoint := c.baseURL + path
	started := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		out := &response{status: resp.StatusCode, body: raw}
		if resp.StatusCode >= http.StatusInternalServerError {
			return out, errServerFailure
		}
		return out, nil
	})
	c.metrics.ObserveRequest(c.name, time.Since(started))

	resp, _ := result.(*response)
	c.logCall(ctx, method, endpoint, resp, err)

	switch {
	case stdErrors.Is(err, gobreaker.ErrOpenState), stdErrors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, &fulfillment.PushError{Kind: enums.PushErrorCircuitOpen, Err: err}
	case stdErrors.Is(err, errServerFailure):
		return resp, &fulfillment.PushError{Kind: enums.PushErrorRejected, HTTPStatus: resp.status, Err: fmt.Errorf("%s returned %d: %s", c.name, resp.status, snippet(resp.body))}
	case err != nil:
		return nil, &fulfillment.PushError{Kind: enums.PushErrorTransport, Err: err}
	}
	if resp.status < 200 || resp.status >= 300 {
		return resp, &fulfillment.PushError{Kind: enums.PushErrorRejected, HTTPStatus: resp.status, Err: fmt.Errorf("%s returned %d: %s", c.name, resp.status, snippet(resp.body))}
	}
	return resp, nil
}

func (c *caller) logCall(ctx context.Context, method, endpoint string, resp *response, err error) {
	if c.logg == nil {
		return
	}
	fields := map[string]any{"provider": c.name, "method": method, "endpoint": endpoint}
	if resp != nil {
		fields["status_code"] = resp.status
	}
	ctx = c.logg.WithFields(ctx, fields)
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "provider request failed")
		return
	}
	c.logg.Debug(ctx, "provider request completed")
}

// decode unmarshals a 2xx body, classifying garbage as malformed.
func decode(resp *response, v any) error {
	if err := json.Unmarshal(resp.body, v); err != nil {
		return &fulfillment.PushError{Kind: enums.PushErrorMalformed, HTTPStatus: resp.status, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func snippet(body []byte) string {
	const max = 256
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max]
	}
	return s
}
