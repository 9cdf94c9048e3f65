// Package config handles CLI configuration: environment settings and org profiles.
package config

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultAPIVersion is the Metadata API version used when none is configured.
const DefaultAPIVersion = "60.0"

// Config holds settings read from the environment.
type Config struct {
	LogLevel  string // debug, info, warn, error (default "warn")
	LogFormat string // text or json (default "text")

	APIVersion  string        // Metadata API version, e.g. "60.0"
	HTTPTimeout time.Duration // per-request timeout; 0 disables it

	// Client-side pacing of API calls.
	RateLimitRPS   float64 // sustained calls per second (default 10, 0 = unlimited)
	RateLimitBurst int     // burst capacity (default 5)

	TargetOrg string // default org alias

	// Warnings collects non-fatal problems found while loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewLogger builds the process logger. Logs go to w so stdout stays clean
// for reports.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Load reads configuration through getenv. Unparseable values are replaced by
// their defaults and reported in Warnings.
func Load(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		LogLevel:   getenv("FIELDKIT_LOG_LEVEL"),
		LogFormat:  getenv("FIELDKIT_LOG_FORMAT"),
		APIVersion: getenv("FIELDKIT_API_VERSION"),
		TargetOrg:  strings.TrimSpace(getenv("FIELDKIT_TARGET_ORG")),
	}

	if v := getenv("FIELDKIT_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("ignoring FIELDKIT_HTTP_TIMEOUT=%q: %v", v, err))
		} else {
			cfg.HTTPTimeout = d
		}
	}

	cfg.RateLimitRPS = 10
	if v := getenv("FIELDKIT_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.RateLimitRPS = f
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("ignoring FIELDKIT_RATE_LIMIT_RPS=%q", v))
		}
	}
	cfg.RateLimitBurst = 5
	if v := getenv("FIELDKIT_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimitBurst = n
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("ignoring FIELDKIT_RATE_LIMIT_BURST=%q", v))
		}
	}

	// Defaults
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	if f := strings.ToLower(cfg.LogFormat); f != "text" && f != "json" {
		return nil, fmt.Errorf("FIELDKIT_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	if _, err := strconv.ParseFloat(cfg.APIVersion, 64); err != nil {
		return nil, fmt.Errorf("FIELDKIT_API_VERSION must look like 60.0, got %q", cfg.APIVersion)
	}

	return cfg, nil
}

// LookupChain returns a getenv that prefers the process environment and falls
// back to fallback (typically values read from a .env file).
func LookupChain(fallback map[string]string) func(string) string {
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return fallback[key]
	}
}

// ReadDotEnv reads a .env file into a map. Lines must be in KEY=VALUE format.
// Comments (#) and blank lines are skipped. A missing file yields an empty map.
// The process environment is never modified.
func ReadDotEnv(path string) (map[string]string, error) {
	values := map[string]string{}
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		values[key] = stripQuotes(strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
