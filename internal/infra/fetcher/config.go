package fetcher

import (
	"fmt"
	"time"

	"decks/pkg/config"
)

// FeedFetchConfig holds the configuration for feed fetching operations.
//
// Security settings:
//   - MaxBodySize: Prevents memory exhaustion from oversized responses
//   - MaxRedirects: Prevents infinite redirect loops
//   - Timeout: Prevents resource starvation from slow servers
type FeedFetchConfig struct {
	// Timeout is the maximum duration for a single HTTP request.
	// Default: 10s
	Timeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Responses exceeding this limit are rejected; a feed that large is
	// almost certainly not a feed. Enforced during response reading, not
	// based on the Content-Length header.
	// Default: 5242880 (5MiB)
	MaxBodySize int64

	// MaxRedirects is the maximum number of HTTP redirects to follow.
	// Each redirect target is re-validated for SSRF safety.
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs controls whether URLs naming private/loopback hosts
	// are rejected. Should always be true in production.
	// Default: true
	DenyPrivateIPs bool
}

// DefaultConfig returns the default configuration for feed fetching.
func DefaultConfig() FeedFetchConfig {
	return FeedFetchConfig{
		Timeout:        10 * time.Second,
		MaxBodySize:    5 * 1024 * 1024, // 5MiB
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

// Validate checks if the configuration values are valid and safe.
func (c *FeedFetchConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)             // 1KB
	maxBodySize := int64(50 * 1024 * 1024) // 50MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d",
			minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	return nil
}

// LoadConfigFromEnv loads configuration from environment variables.
// If a variable is not set or invalid, the default value is used.
// After loading, the configuration is validated.
//
// Environment variables:
//   - FEED_FETCH_TIMEOUT: duration string, e.g. "10s" (default: 10s)
//   - FEED_FETCH_MAX_BODY_SIZE: integer in bytes (default: 5242880)
//   - FEED_FETCH_MAX_REDIRECTS: integer (default: 5)
//   - FEED_FETCH_DENY_PRIVATE_IPS: "true" or "false" (default: true)
func LoadConfigFromEnv() (FeedFetchConfig, error) {
	cfg := DefaultConfig()

	cfg.Timeout = config.GetEnvDuration("FEED_FETCH_TIMEOUT", cfg.Timeout)
	cfg.MaxBodySize = int64(config.GetEnvInt("FEED_FETCH_MAX_BODY_SIZE", int(cfg.MaxBodySize)))
	cfg.MaxRedirects = config.GetEnvInt("FEED_FETCH_MAX_REDIRECTS", cfg.MaxRedirects)
	cfg.DenyPrivateIPs = config.GetEnvBool("FEED_FETCH_DENY_PRIVATE_IPS", cfg.DenyPrivateIPs)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
