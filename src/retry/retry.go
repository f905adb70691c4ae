package retry

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ogri-la/gear-journey-go/src/http"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// DefaultConfig returns the defaults used for upstream requests
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     8 * time.Second,
	}
}

// requestFunc performs a single attempt
type requestFunc func(ctx context.Context, url string) (*http.Response, error)

// shouldRetry determines if we should retry based on the response or error
func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}

	// rate limited or server error
	return resp.StatusCode == 429 || resp.StatusCode >= 500
}

// getRetryDelay calculates the delay for the next retry
func getRetryDelay(resp *http.Response, attempt int, config Config) time.Duration {
	if resp != nil && resp.StatusCode == 429 {
		if retryAfter := resp.Headers["Retry-After"]; retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
				return min(time.Duration(seconds)*time.Second, config.MaxDelay)
			}
		}
	}

	return Backoff(attempt, config)
}

// Backoff returns initialDelay * 2^(attempt-1), capped at MaxDelay
func Backoff(attempt int, config Config) time.Duration {
	delay := config.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay > config.MaxDelay {
			return config.MaxDelay
		}
	}
	return delay
}

// WithRetry wraps an HTTP GET call with retry logic and exponential backoff
func WithRetry(ctx context.Context, client http.HTTPClient, url string, config Config) (*http.Response, error) {
	return do(ctx, client.Get, url, config)
}

// WithRetryHead wraps an HTTP HEAD call with retry logic and exponential backoff
func WithRetryHead(ctx context.Context, client http.HTTPClient, url string, config Config) (*http.Response, error) {
	return do(ctx, client.Head, url, config)
}

func do(ctx context.Context, request requestFunc, url string, config Config) (*http.Response, error) {
	var lastErr error
	var lastResp *http.Response

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if attempt > 1 {
			slog.Warn("retrying request", "url", url, "attempt", attempt, "max-attempts", config.MaxAttempts)
		}

		resp, err := request(ctx, url)
		if err == nil && resp.OK() {
			return resp, nil
		}

		lastResp = resp
		lastErr = err

		if !shouldRetry(resp, err) {
			// 4xx other than 429 is final
			return resp, nil
		}

		if attempt == config.MaxAttempts {
			break
		}

		delay := getRetryDelay(resp, attempt, config)
		slog.Info("backing off before retry", "url", url, "delay", delay, "reason", getRetryReason(resp, err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("request failed after %d attempts: %w", config.MaxAttempts, lastErr)
	}

	return lastResp, nil
}

// getRetryReason returns a human-readable reason for the retry
func getRetryReason(resp *http.Response, err error) string {
	switch {
	case err != nil:
		return "network_error"
	case resp.StatusCode == 429:
		return "rate_limited"
	case resp.StatusCode >= 500:
		return "server_error"
	default:
		return "unknown"
	}
}

// Client decorates an HTTPClient so every request is retried
type Client struct {
	inner  http.HTTPClient
	config Config
}

// NewClient creates a retrying HTTPClient
func NewClient(inner http.HTTPClient, config Config) *Client {
	return &Client{inner: inner, config: config}
}

// Get performs a GET with retries
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return WithRetry(ctx, c.inner, url, c.config)
}

// Head performs a HEAD with retries
func (c *Client) Head(ctx context.Context, url string) (*http.Response, error) {
	return WithRetryHead(ctx, c.inner, url, c.config)
}
