package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when a request carries no User-Agent of its own.
const DefaultUserAgent = "ssbags-storefront"

// Doer sends a prepared request. Client and CircuitBreakerClient both
// implement it so they can be stacked.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config tunes the transport.
type Config struct {
	Timeout         time.Duration
	MaxConnsPerHost int
	UserAgent       string
}

// DefaultConfig uses a 30 second overall timeout.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		MaxConnsPerHost: 16,
		UserAgent:       DefaultUserAgent,
	}
}

// Client sends each request exactly once. Failures go back to the caller;
// nothing is retried.
type Client struct {
	http      *http.Client
	userAgent string
}

// New builds a Client with a pooled transport.
func New(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &Client{
		http:      &http.Client{Transport: transport, Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
}

// Do sends req once, bound to ctx, and records its outcome.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	backendDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	backendRequests.WithLabelValues(req.Method, outcome(status, err)).Inc()

	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	return resp, nil
}

// Get is a convenience for a bodyless GET.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	return c.Do(ctx, req)
}
