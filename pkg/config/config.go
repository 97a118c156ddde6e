// Package config holds runtime configuration for the scanner. Values
// come from the environment, optionally seeded from a .env file;
// command-line flags override on top in cmd.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store backend names accepted by StoreBackend.
const (
	StoreMemory = "memory"
	StoreValkey = "valkey"
)

// Config holds all runtime configuration.
type Config struct {
	// Completion provider settings. APIKey is required to run a scan;
	// Model and BaseURL fall back to the provider defaults.
	CompletionAPIKey  string
	CompletionModel   string
	CompletionBaseURL string

	// OSINT provider credentials. Each is independently optional; a
	// missing key leaves that provider unconfigured rather than
	// failing the scan.
	VirusTotalAPIKey  string
	WhoisXMLAPIKey    string
	ShodanAPIKey      string
	CertSpotterAPIKey string

	// Store settings.
	StoreBackend string // memory or valkey
	ValkeyAddr   string

	// AssessConcurrency caps the severity-assessment fan-out.
	// Zero uses the assess package default.
	AssessConcurrency int

	// LogLevel is the minimum slog level (debug, info, warn, error).
	LogLevel slog.Level
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	// godotenv.Load never overrides variables already set.
	_ = godotenv.Load()

	cfg := &Config{
		CompletionAPIKey:  os.Getenv("OPENAI_API_KEY"),
		CompletionModel:   os.Getenv("VIGILANTE_MODEL"),
		CompletionBaseURL: os.Getenv("OPENAI_BASE_URL"),

		VirusTotalAPIKey:  os.Getenv("VIRUSTOTAL_API_KEY"),
		WhoisXMLAPIKey:    os.Getenv("WHOISXML_API_KEY"),
		ShodanAPIKey:      os.Getenv("SHODAN_API_KEY"),
		CertSpotterAPIKey: os.Getenv("CERTSPOTTER_API_KEY"),

		StoreBackend: envOr("VIGILANTE_STORE", StoreMemory),
		ValkeyAddr:   envOr("VALKEY_ADDR", "localhost:6379"),

		LogLevel: slog.LevelInfo,
	}

	if raw := os.Getenv("VIGILANTE_CONCURRENCY"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("config: invalid VIGILANTE_CONCURRENCY %q", raw)
		}
		cfg.AssessConcurrency = n
	}

	if raw := os.Getenv("VIGILANTE_LOG_LEVEL"); raw != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("config: invalid VIGILANTE_LOG_LEVEL %q", raw)
		}
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail deep inside the
// pipeline. OSINT credentials are deliberately not required.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreValkey:
	default:
		return fmt.Errorf("config: unknown store backend %q (want %s or %s)", c.StoreBackend, StoreMemory, StoreValkey)
	}
	if c.StoreBackend == StoreValkey && c.ValkeyAddr == "" {
		return fmt.Errorf("config: VALKEY_ADDR is required with the %s store", StoreValkey)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
