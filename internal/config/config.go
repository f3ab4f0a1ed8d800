package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Per-connection relay event rate limiting parameters.
type RateLimitConfig struct {
	EventsPerSecond float64
	Burst           int
}

// Config holds the server settings consumed at startup. Load it once
// with FromEnv and pass it to the components that need it.
type Config struct {
	Port           string
	DBPath         string
	AllowedOrigins []string
	RateLimit      RateLimitConfig

	allowAll bool
	origins  map[string]struct{}
}

func defaults() *Config {
	return &Config{
		Port:           "8080",
		DBPath:         "./data/notively.db",
		AllowedOrigins: []string{"*"},
		RateLimit: RateLimitConfig{
			EventsPerSecond: 100,
			Burst:           200,
		},
	}
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for anything unset or unparseable.
func FromEnv() *Config {
	cfg := defaults()

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	if path := os.Getenv("NOTES_DB_PATH"); path != "" {
		cfg.DBPath = path
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitOrigins(origins)
	}

	if rate := os.Getenv("RATE_LIMIT_EVENTS_PER_SECOND"); rate != "" {
		if parsed, err := strconv.ParseFloat(rate, 64); err == nil && parsed > 0 {
			cfg.RateLimit.EventsPerSecond = parsed
		}
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if parsed, err := strconv.Atoi(burst); err == nil && parsed > 0 {
			cfg.RateLimit.Burst = parsed
		}
	}

	cfg.normalize()
	return cfg
}

// New returns a Config with default values, normalized and ready to
// use. Tests override fields and call Normalize afterwards.
func New() *Config {
	cfg := defaults()
	cfg.normalize()
	return cfg
}

// Normalize rebuilds the origin allow-list from AllowedOrigins. Must
// be called after mutating AllowedOrigins directly.
func (c *Config) Normalize() {
	c.normalize()
}

func (c *Config) normalize() {
	c.allowAll = false
	c.origins = make(map[string]struct{}, len(c.AllowedOrigins))

	kept := make([]string, 0, len(c.AllowedOrigins))
	for _, origin := range c.AllowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			c.allowAll = true
			kept = append(kept, trimmed)
			continue
		}

		normalized, ok := normalizeOrigin(trimmed)
		if !ok {
			log.Printf("Ignoring invalid origin in configuration: %q", origin)
			continue
		}
		c.origins[normalized] = struct{}{}
		kept = append(kept, normalized)
	}
	c.AllowedOrigins = kept
}

// OriginAllowed reports whether a browser Origin header value passes
// the configured allow-list. An empty Origin (non-browser client) is
// accepted.
func (c *Config) OriginAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	if c.allowAll {
		return true
	}

	normalized, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}

	_, exists := c.origins[normalized]
	return exists
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

func splitOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
