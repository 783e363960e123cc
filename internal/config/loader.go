package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TRIAGE_CONFIG is set
//  3. env (prefix TRIAGE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TRIAGE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: TRIAGE_BASE_URL, TRIAGE_API_KEY, ...
	// Map env keys like TRIAGE_PAGE_LIMIT -> page_limit (flat keys).
	// Underscores are preserved to match koanf tags on the struct.
	envProvider := env.Provider("TRIAGE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "triage_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.BaseURL == "":
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	case cfg.PageLimit <= 0:
		return fmt.Errorf("%w: page_limit must be positive", ErrInvalidConfig)
	case cfg.MaxRetries < 0:
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	case cfg.ServerErrorRetries < 0:
		return fmt.Errorf("%w: server_error_retries must not be negative", ErrInvalidConfig)
	case cfg.RetryAfterFallbackS <= 0:
		return fmt.Errorf("%w: retry_after_fallback_s must be positive", ErrInvalidConfig)
	case cfg.MaxPages <= 0:
		return fmt.Errorf("%w: max_pages must be positive", ErrInvalidConfig)
	}
	return nil
}
