// Package remote talks to the patient service: rate-limit aware requests,
// pagination across its two response envelopes, and the one-shot assessment
// submission.
package remote

import (
	"net/http"
	"time"

	"github.com/okian/triage/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMaxRetries bounds retries of rate-limited (429) requests.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithServerErrorRetries bounds retries of transient 5xx responses.
func WithServerErrorRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.serverErrorRetries = n
		}
	}
}

// WithRetryAfterFallback sets the wait applied to a 429 response whose body
// carries no usable retry_after hint.
func WithRetryAfterFallback(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryAfterFallback = d
		}
	}
}

// WithServerErrorBackoff sets the initial and maximum intervals of the
// exponential backoff applied between 5xx retries.
func WithServerErrorBackoff(initial, maxInterval time.Duration) Option {
	return func(c *Client) {
		if initial > 0 && maxInterval >= initial {
			c.backoffInitial = initial
			c.backoffMax = maxInterval
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// CollectorOption applies a configuration option to the Collector.
type CollectorOption func(*Collector)

// WithPageLimit sets the per-page record count requested from the service.
func WithPageLimit(limit int) CollectorOption {
	return func(c *Collector) {
		if limit > 0 {
			c.pageLimit = limit
		}
	}
}

// WithMaxPages guards against a paginated feed that never terminates.
func WithMaxPages(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithCollectorLogger sets a custom logger for the collector.
func WithCollectorLogger(log logger.Logger) CollectorOption {
	return func(c *Collector) {
		if log != nil {
			c.log = log
		}
	}
}
