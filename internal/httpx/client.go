// internal/httpx/client.go

// Package httpx provides the shared HTTP client used by all source
// collectors: bounded retries with exponential backoff and jitter, and
// per-host token-bucket rate limiting.
package httpx

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Options configures a Client
type Options struct {
	Timeout        time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	RequestsPerSec float64
	Burst          int
	UserAgent      string
}

// DefaultOptions returns conservative defaults suitable for free-tier APIs
func DefaultOptions() Options {
	return Options{
		Timeout:        15 * time.Second,
		MaxRetries:     3,
		BackoffBase:    time.Second,
		BackoffMax:     15 * time.Second,
		RequestsPerSec: 2.0,
		Burst:          4,
		UserAgent:      "brandtrust/1.0",
	}
}

// Client wraps http.Client with retry and per-host rate limiting. Requests
// are retried on network errors, 429 and 5xx responses; all other statuses
// are returned to the caller as-is.
type Client struct {
	http     *http.Client
	opts     Options
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a client with the given options
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = 15 * time.Second
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = DefaultOptions().RequestsPerSec
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultOptions().Burst
	}
	return &Client{
		http:     &http.Client{Timeout: opts.Timeout},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiter returns or creates the rate limiter for a host
func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(c.opts.RequestsPerSec), c.opts.Burst)
	c.limiters[host] = l
	return l
}

// retryable reports whether a response status warrants another attempt
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// backoff returns the delay before the given attempt, with jitter
func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.BackoffBase << uint(attempt)
	if d > c.opts.BackoffMax {
		d = c.opts.BackoffMax
	}
	jitter := time.Duration(rand.Int63n(int64(d)/4 + 1))
	return d + jitter
}

// Do executes the request with rate limiting and bounded retries. The
// request must have a nil or rewindable body; collectors only issue GET and
// small JSON POST requests built per attempt via the get/post helpers.
func (c *Client) Do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt - 1)):
			}
		}

		req, err := build()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)
		if req.Header.Get("User-Agent") == "" && c.opts.UserAgent != "" {
			req.Header.Set("User-Agent", c.opts.UserAgent)
		}

		if err := c.limiter(req.URL.Host).Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if retryable(resp.StatusCode) {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Host)
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.opts.MaxRetries+1, lastErr)
}

// Get issues a rate-limited, retried GET
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.Do(ctx, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, url, nil)
	})
}
