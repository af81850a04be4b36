package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr      string
	GRPCAddr      string
	ConfigDir     string
	LogLevel      slog.Level
	Seed          *uint64 // nil: crypto-backed randomness
	WatchInterval time.Duration
}

func Load() (Config, error) {
	c := Config{
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		GRPCAddr:      envOr("GRPC_ADDR", ":9090"),
		ConfigDir:     envOr("CONFIG_DIR", "./config"),
		WatchInterval: 2 * time.Second,
	}

	if v := os.Getenv("WATCH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid WATCH_INTERVAL %q: %w", v, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("WATCH_INTERVAL must be positive, got %s", d)
		}
		c.WatchInterval = d
	}

	seed, err := ParseSeed(os.Getenv("RNG_SEED"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid RNG_SEED: %w", err)
	}
	c.Seed = seed

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	return c, nil
}

// ParseSeed reads an optional RNG seed. Empty means unset (nil); any other
// value, 0 included, must parse as a uint64.
func ParseSeed(raw string) (*uint64, error) {
	if raw == "" {
		return nil, nil
	}
	seed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &seed, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
