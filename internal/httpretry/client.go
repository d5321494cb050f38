package httpretry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"streamcheck/internal/logging"
	"streamcheck/internal/services"
)

const (
	defaultMaxRetries = 5
	defaultBackoff    = time.Second
	drainLimit        = 64 << 10
)

// RequestBuilder creates a fresh request for every attempt so headers and
// bodies are never reused across retries.
type RequestBuilder func(ctx context.Context) (*http.Request, error)

// Client wraps an http.Client with the retry policy.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	maxRetries int
	backoff    time.Duration
	sleeper    func(time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithMaxRetries sets the total attempt count (minimum 1, default 5).
func WithMaxRetries(attempts int) Option {
	return func(c *Client) {
		c.maxRetries = attempts
	}
}

// WithBackoff sets the delay before the first retry (default 1s).
func WithBackoff(delay time.Duration) Option {
	return func(c *Client) {
		c.backoff = delay
	}
}

// WithSleeper overrides how retry waits are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithLogger attaches a logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New constructs a retrying client.
func New(opts ...Option) *Client {
	c := &Client{
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(0)
	}
	if c.maxRetries < 1 {
		c.maxRetries = 1
	}
	if c.backoff < time.Millisecond {
		c.backoff = time.Millisecond
	}
	c.logger = logging.NewComponentLogger(c.logger, "http")
	return c
}

// StatusError reports a non-2xx response a caller chose not to accept.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "http status error"
	}
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// NewStatusError consumes and closes resp.Body, keeping a short snippet.
func NewStatusError(resp *http.Response) *StatusError {
	if resp == nil {
		return &StatusError{}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// Send performs the request described by build, retrying transient failures.
// A transport failure on the final attempt is returned as an error wrapping
// services.ErrTransientNetwork. Caller cancellation aborts immediately,
// including while waiting between attempts.
func (c *Client) Send(ctx context.Context, build RequestBuilder) (*http.Response, error) {
	if ctx == nil {
		return nil, errors.New("http send: nil context")
	}
	if build == nil {
		return nil, errors.New("http send: nil request builder")
	}

	delay := c.backoff
	for attempt := 1; ; attempt++ {
		req, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("http send: build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		last := attempt >= c.maxRetries
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if last {
				return nil, services.Wrap(services.ErrTransientNetwork, "http", "send",
					fmt.Sprintf("%s %s failed after %d attempts", req.Method, req.URL.Redacted(), attempt), err)
			}
			c.logRetry(ctx, req, attempt, delay, 0, err)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay = nextDelay(delay)
			continue
		}

		if !retryableStatus(resp.StatusCode) || last {
			return resp, nil
		}

		wait := delay
		if hint, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
			wait = hint
		}
		discard(resp)
		c.logRetry(ctx, req, attempt, wait, resp.StatusCode, nil)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
		delay = nextDelay(delay)
	}
}

func (c *Client) logRetry(ctx context.Context, req *http.Request, attempt int, wait time.Duration, status int, err error) {
	attrs := []logging.Attr{
		logging.Int("attempt", attempt),
		logging.Int("max_attempts", c.maxRetries),
		logging.Duration("backoff", wait),
		logging.String("url", req.URL.Redacted()),
	}
	if status > 0 {
		attrs = append(attrs, logging.Int("status", status))
	}
	if err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	logging.WithContext(ctx, c.logger).Debug("retrying request", logging.Args(attrs...)...)
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// nextDelay multiplies by 1.5 rounding up to the next whole millisecond.
func nextDelay(current time.Duration) time.Duration {
	ms := current.Milliseconds()
	return time.Duration((ms*3+1)/2) * time.Millisecond
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay <= 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
	_ = resp.Body.Close()
}
