// Package coupang provides a signed Coupang Partners API client abstracted
// behind interfaces for testability.
package coupang

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/lsm5482-blip/my-coupang-bot/internal/metrics"
)

const (
	defaultBaseURL = "https://api-gateway.coupang.com"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4 << 10
)

// Request describes one logical API call. Query is used for GET, Body for
// POST; Body is serialized once so the signed bytes and the transmitted bytes
// are identical.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Body     any
	Endpoint string // metrics label, e.g. "goldbox"
}

// Client defines the interface for issuing signed Partners API calls.
type Client interface {
	Do(ctx context.Context, req Request) ([]byte, error)
}

// HTTPClient implements Client over net/http with CEA signing, outcome
// classification, and retry of transient failures.
type HTTPClient struct {
	signer      *Signer
	baseURL     string
	client      *http.Client
	retry       RetryPolicy
	rateLimiter *RateLimiter
	log         *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// ClientOption configures the HTTPClient.
type ClientOption func(*HTTPClient)

// WithBaseURL overrides the API gateway URL.
func WithBaseURL(u string) ClientOption {
	return func(c *HTTPClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *HTTPClient) {
		c.retry = p
	}
}

// WithRateLimiter makes every attempt wait on r first.
func WithRateLimiter(r *RateLimiter) ClientOption {
	return func(c *HTTPClient) {
		c.rateLimiter = r
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *HTTPClient) {
		c.log = l
	}
}

// WithSleepFunc replaces the backoff sleep, for tests.
func WithSleepFunc(f func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *HTTPClient) {
		c.sleep = f
	}
}

// NewHTTPClient creates a Partners API client.
func NewHTTPClient(signer *Signer, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		signer:  signer,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		retry:   DefaultRetryPolicy(),
		log:     slog.Default(),
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do issues req, retrying transient failures per the retry policy, and
// returns the raw JSON body.
func (c *HTTPClient) Do(ctx context.Context, req Request) ([]byte, error) {
	canonical, payload, err := encodeRequest(req)
	if err != nil {
		return nil, &APIError{
			Kind:   KindClient,
			Method: req.Method,
			Path:   req.Path,
			Err:    err,
		}
	}

	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = "other"
	}

	maxAttempts := c.retry.maxAttempts()
	for attempt := 1; ; attempt++ {
		body, err := c.attempt(ctx, req, canonical, payload, endpoint)
		if err == nil {
			return body, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return nil, err
		}
		apiErr.Attempts = attempt

		if !apiErr.Retryable() || attempt >= maxAttempts {
			return nil, apiErr
		}

		delay := c.retry.Delay(attempt)
		metrics.CoupangRetriesTotal.WithLabelValues(endpoint).Inc()
		c.log.Warn("transient API failure, retrying",
			"method", req.Method,
			"path", req.Path,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"delay", delay,
			"error", apiErr,
		)

		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("waiting to retry: %w", err)
		}
	}
}

func (c *HTTPClient) attempt(
	ctx context.Context,
	req Request,
	canonical string,
	payload []byte,
	endpoint string,
) ([]byte, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.CoupangDailyLimitHits.Inc()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.CoupangDailyUsage.Set(float64(c.rateLimiter.Used()))
	}

	auth, _, err := c.signer.Sign(req.Method, req.Path, canonical)
	if err != nil {
		return nil, fmt.Errorf("signing request: %w", err)
	}

	u := c.baseURL + req.Path
	var reqBody io.Reader = http.NoBody
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	} else if canonical != "" {
		u += "?" + canonical
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, reqBody)
	if err != nil {
		return nil, &APIError{Kind: KindClient, Method: req.Method, Path: req.Path, Err: err}
	}
	httpReq.Header.Set("Authorization", auth)
	httpReq.Header.Set("Content-Type", "application/json;charset=UTF-8")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	metrics.CoupangAPICallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("executing request: %w", ctx.Err())
		}
		metrics.CoupangAPICallsTotal.WithLabelValues(endpoint, KindTransient.String()).Inc()
		return nil, &APIError{
			Kind:   KindTransient,
			Method: req.Method,
			Path:   req.Path,
			Err:    classifyTransport(err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.CoupangAPICallsTotal.WithLabelValues(endpoint, KindTransient.String()).Inc()
		return nil, &APIError{
			Kind:       KindTransient,
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("reading response body: %w", err),
		}
	}

	if kind, failed := classifyStatus(resp.StatusCode); failed {
		metrics.CoupangAPICallsTotal.WithLabelValues(endpoint, kind.String()).Inc()
		return nil, &APIError{
			Kind:       kind,
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Body:       string(body[:min(len(body), maxErrorBody)]),
		}
	}

	if !json.Valid(body) {
		metrics.CoupangAPICallsTotal.WithLabelValues(endpoint, KindParsing.String()).Inc()
		return nil, &APIError{
			Kind:       KindParsing,
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Body:       string(body[:min(len(body), maxErrorBody)]),
			Err:        errors.New("response body is not valid JSON"),
		}
	}

	metrics.CoupangAPICallsTotal.WithLabelValues(endpoint, "ok").Inc()
	return body, nil
}

// encodeRequest returns the canonical string that is signed: the encoded
// query for bodiless requests, or the compact JSON body.
func encodeRequest(req Request) (string, []byte, error) {
	if req.Body == nil {
		return req.Query.Encode(), nil, nil
	}
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return "", nil, fmt.Errorf("encoding request body: %w", err)
	}
	return string(payload), payload, nil
}

func classifyStatus(code int) (ErrorKind, bool) {
	switch {
	case code >= 200 && code < 300:
		return 0, false
	case code == http.StatusGatewayTimeout:
		return KindTransient, true
	case code >= 500:
		return KindServer, true
	default:
		return KindClient, true
	}
}

func classifyTransport(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("request timed out: %w", err)
	}
	return fmt.Errorf("executing request: %w", err)
}
