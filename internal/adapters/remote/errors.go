package remote

import "errors"

// Sentinel kinds for upstream failures. These allow errors.Is from callers.
var (
	// ErrRateLimitExceeded means the 429 retry budget ran out.
	ErrRateLimitExceeded = errors.New("rate limit retries exhausted")

	// ErrServerUnavailable means the 5xx retry budget ran out.
	ErrServerUnavailable = errors.New("server error retries exhausted")

	// ErrDecodeResponse means a response body could not be decoded as JSON.
	ErrDecodeResponse = errors.New("decode response failed")

	// ErrTooManyPages means pagination did not terminate within the
	// configured page guard.
	ErrTooManyPages = errors.New("pagination exceeded max pages")

	// ErrSubmissionFailed means the assessment POST was rejected.
	ErrSubmissionFailed = errors.New("assessment submission failed")
)
