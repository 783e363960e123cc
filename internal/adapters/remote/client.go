package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/okian/triage/pkg/logger"
	"github.com/okian/triage/pkg/metrics"
)

// Default retry policy knobs.
const (
	defaultMaxRetries         = 3
	defaultServerErrorRetries = 5
	defaultRetryAfterFallback = 9 * time.Second
	defaultBackoffInitial     = 250 * time.Millisecond
	defaultBackoffMax         = 8 * time.Second
	defaultHTTPTimeout        = 30 * time.Second

	apiKeyHeader = "x-api-key"
)

// Client issues requests against the patient service with two independent,
// finite retry budgets: one for 429 responses (waiting out the server's
// retry_after hint) and one for transient 5xx responses (exponential
// backoff). Either budget running out is terminal.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string

	maxRetries         int
	serverErrorRetries int
	retryAfterFallback time.Duration
	backoffInitial     time.Duration
	backoffMax         time.Duration

	log logger.Logger
}

// NewClient creates a Client for the service rooted at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient:         &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:            strings.TrimRight(baseURL, "/"),
		apiKey:             apiKey,
		maxRetries:         defaultMaxRetries,
		serverErrorRetries: defaultServerErrorRetries,
		retryAfterFallback: defaultRetryAfterFallback,
		backoffInitial:     defaultBackoffInitial,
		backoffMax:         defaultBackoffMax,
		log:                logger.Get().Named("client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetJSON fetches path with the retry policy applied and decodes the
// response body into v.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, v interface{}) error {
	data, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrDecodeResponse, path, err)
	}
	return nil
}

// PostOnce issues a single POST with a JSON body and no retries of any kind.
// It returns the raw response body and status code; the caller decides what
// a failure means.
func (c *Client) PostOnce(ctx context.Context, path string, payload interface{}) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}

	metrics.RecordRequest(path, statusClass(resp.StatusCode))
	return data, resp.StatusCode, nil
}

// do runs the retry loop for one logical request. Iterative on purpose: loop
// state holds the two budgets and the backoff schedule.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	rateLimitBudget := c.maxRetries
	serverErrorBudget := c.serverErrorRetries

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.backoffInitial
	bo.MaxInterval = c.backoffMax
	// The retry budget is the only bound; never let elapsed time stop the
	// schedule early.
	bo.MaxElapsedTime = 0
	bo.Reset()

	reqID := uuid.NewString()
	start := time.Now()
	defer func() {
		metrics.RecordRequestDuration(time.Since(start).Seconds())
	}()

	for attempt := 1; ; attempt++ {
		req, err := c.newRequest(ctx, method, path, query, body)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}

		c.log.Debug(ctx, "upstream response",
			logger.String("request_id", reqID),
			logger.String("path", path),
			logger.Int("status", resp.StatusCode),
			logger.Int("attempt", attempt))

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			if rateLimitBudget <= 0 {
				return nil, fmt.Errorf("%s %s after %d attempts: %w", method, path, attempt, ErrRateLimitExceeded)
			}
			rateLimitBudget--

			wait := c.retryAfterWait(data)
			c.log.Warn(ctx, "rate limited, backing off",
				logger.String("request_id", reqID),
				logger.String("wait", wait.String()),
				logger.Int("retries_left", rateLimitBudget))
			metrics.RecordRateLimitRetry()
			metrics.RecordRetryWait(wait.Seconds())

			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}

		case isTransient(resp.StatusCode):
			if serverErrorBudget <= 0 {
				return nil, fmt.Errorf("%s %s status %d after %d attempts: %w", method, path, resp.StatusCode, attempt, ErrServerUnavailable)
			}
			serverErrorBudget--

			wait := bo.NextBackOff()
			c.log.Warn(ctx, "transient server error, retrying",
				logger.String("request_id", reqID),
				logger.Int("status", resp.StatusCode),
				logger.String("wait", wait.String()),
				logger.Int("retries_left", serverErrorBudget))
			metrics.RecordServerErrorRetry()
			metrics.RecordRetryWait(wait.Seconds())

			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}

		default:
			// Any other status passes through; the body is the contract.
			metrics.RecordRequest(path, statusClass(resp.StatusCode))
			return data, nil
		}
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}

	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// retryAfterWait extracts the server-suggested wait, in seconds, from a 429
// body. A missing, unparsable, or non-positive hint falls back to the
// configured default.
func (c *Client) retryAfterWait(body []byte) time.Duration {
	var hint struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &hint); err != nil || hint.RetryAfter <= 0 {
		return c.retryAfterFallback
	}
	return time.Duration(hint.RetryAfter * float64(time.Second))
}

// isTransient reports whether a status code is a retriable server failure.
func isTransient(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true
	default:
		return false
	}
}

func statusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}

// sleep waits for d, honoring ctx cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry wait interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
