package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Session store.
	DBPath string

	// Remote forecast document store.
	SurfDBBaseURL      string
	SurfDBTimeout      time.Duration
	SurfDBDirectoryTTL time.Duration

	// Candidate regions probed when locating a beach, in priority order.
	Regions []string
}

// defaultRegions lists the remote partitions in probe-priority order.
var defaultRegions = []string{"jeju", "busan", "gangwon", "chungnam", "pohang"}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	surfdbTimeout, err := parseDuration("SURFDB_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	directoryTTL, err := parseDuration("SURFDB_DIRECTORY_TTL", "5m")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		DBPath:             envOrDefault("DB_PATH", "data/surfcast.db"),
		SurfDBBaseURL:      os.Getenv("SURFDB_BASE_URL"),
		SurfDBTimeout:      surfdbTimeout,
		SurfDBDirectoryTTL: directoryTTL,
		Regions:            parseRegions(os.Getenv("REGIONS")),
	}

	if cfg.SurfDBBaseURL == "" {
		return nil, errors.New("SURFDB_BASE_URL is required")
	}
	if len(cfg.Regions) == 0 {
		return nil, errors.New("REGIONS must name at least one region")
	}

	return cfg, nil
}

// parseRegions splits a comma-separated region list, preserving order.
// Empty input yields the default region set.
func parseRegions(s string) []string {
	if strings.TrimSpace(s) == "" {
		return defaultRegions
	}

	var regions []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			regions = append(regions, r)
		}
	}
	return regions
}

func parseDuration(name, fallback string) (time.Duration, error) {
	s := envOrDefault(name, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return d, nil
}

func envOrDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
