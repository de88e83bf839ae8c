package httpjson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second

	// maxErrorBody caps how much of an error response is kept as the message.
	maxErrorBody = 512

	userAgent = "factsheets/1.0"
)

// Options configures a Client.
type Options struct {
	// Timeout bounds every request. Zero uses DefaultTimeout.
	Timeout time.Duration

	// RequestsPerSecond is the proactive throttle. Zero uses DefaultRate.
	RequestsPerSecond float64

	// MaxRetries is the number of retries for transient errors.
	// Negative disables retries; zero uses MaxRetries.
	MaxRetries int

	// RetryDelay is the first back-off delay, doubled on each retry.
	// Zero uses RetryDelay.
	RetryDelay time.Duration

	// HTTPClient overrides the underlying client. Its Timeout is replaced.
	HTTPClient *http.Client
}

// Client fetches and decodes JSON documents.
type Client struct {
	http        *http.Client
	rateLimiter *RateLimiter
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a new JSON client.
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc.Timeout = timeout

	retries := opts.MaxRetries
	switch {
	case retries < 0:
		retries = 0
	case retries == 0:
		retries = MaxRetries
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = RetryDelay
	}

	return &Client{
		http:        hc,
		rateLimiter: NewRateLimiter(opts.RequestsPerSecond),
		maxRetries:  retries,
		retryDelay:  delay,
	}
}

// GetJSON fetches rawURL with query appended and decodes the body into out.
// Transient failures (5xx, 429, network errors) are retried with exponential
// back-off. Client errors and decode failures are returned immediately.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, out any) error {
	body, err := c.Get(ctx, rawURL, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{URL: rawURL, Err: err}
	}
	return nil
}

// Get fetches rawURL with query appended and returns the raw body.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	target, err := withQuery(rawURL, query)
	if err != nil {
		return nil, err
	}

	delay := c.retryDelay
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			delay *= 2
		}

		body, err := c.do(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

// do performs a single request.
func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &networkError{err: err}
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.CheckResponse(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &networkError{err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg, URL: target}
	}
	return body, nil
}

// networkError marks a transport failure as retryable.
type networkError struct {
	err error
}

func (e *networkError) Error() string { return e.err.Error() }
func (e *networkError) Unwrap() error { return e.err }

func retryable(err error) bool {
	if _, ok := err.(*networkError); ok {
		return true
	}
	return IsTransient(err)
}

func withQuery(rawURL string, query url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse URL %q: %w", rawURL, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
