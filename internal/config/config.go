// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults and Load(ctx) to layer
//   file and environment sources on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

// Config contains process configuration for a pipeline run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BaseURL is the root of the patient service API, e.g.
	// "https://assessment.example.com/api".
	BaseURL string `koanf:"base_url"`

	// APIKey is sent as the x-api-key header on every request. Absence is
	// not validated locally; the server rejects unauthenticated calls.
	APIKey string `koanf:"api_key"`

	// PageLimit is the per-page record count requested from /patients.
	PageLimit int `koanf:"page_limit"`

	// MaxRetries bounds retries of rate-limited (429) requests.
	MaxRetries int `koanf:"max_retries"`

	// ServerErrorRetries bounds retries of transient 5xx responses.
	ServerErrorRetries int `koanf:"server_error_retries"`

	// RetryAfterFallbackS is the wait, in seconds, applied to a 429
	// response whose body carries no usable retry_after hint.
	RetryAfterFallbackS int `koanf:"retry_after_fallback_s"`

	// RequestTimeoutMS bounds a single HTTP exchange.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// RunTimeoutMS bounds the whole pipeline run, retries included.
	RunTimeoutMS int `koanf:"run_timeout_ms"`

	// MaxPages guards against a paginated feed that never terminates.
	MaxPages int `koanf:"max_pages"`

	// MetricsAddr, when non-empty, exposes /metrics and /healthz on the
	// given listen address for the duration of the run.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		BaseURL:             "",
		APIKey:              "",
		PageLimit:           20,
		MaxRetries:          3,
		ServerErrorRetries:  5,
		RetryAfterFallbackS: 9,
		RequestTimeoutMS:    30_000,
		RunTimeoutMS:        600_000,
		MaxPages:            1000,
		MetricsAddr:         "",
	}
}
