package config

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
)

const maxWorkers = 1024

type Config struct {
	// RulesPath is a rule file in public suffix list format; empty means the embedded list.
	RulesPath      string
	IncludePrivate bool
	ExtraLevels    int
	Workers        int
	LogLevel       slog.Level
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() (Config, error) {
	cfg := Config{
		RulesPath: getenv("ETLD_RULES", ""),
	}

	privateStr := getenv("ETLD_PRIVATE", "true")
	private, err := strconv.ParseBool(privateStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid ETLD_PRIVATE=%q: %w", privateStr, err)
	}
	cfg.IncludePrivate = private

	levelsStr := getenv("ETLD_LEVELS", "0")
	levels, err := strconv.Atoi(levelsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid ETLD_LEVELS=%q: %w", levelsStr, err)
	}
	cfg.ExtraLevels = levels

	workersStr := getenv("ETLD_WORKERS", strconv.Itoa(runtime.GOMAXPROCS(0)))
	workers, err := strconv.Atoi(workersStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid ETLD_WORKERS=%q: %w", workersStr, err)
	}
	cfg.Workers = workers

	levelStr := getenv("ETLD_LOG_LEVEL", "warn")
	if err := cfg.LogLevel.UnmarshalText([]byte(levelStr)); err != nil {
		return Config{}, fmt.Errorf("invalid ETLD_LOG_LEVEL=%q: %w", levelStr, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that may also have been set from flags after Load.
func (c Config) Validate() error {
	if c.ExtraLevels < 0 {
		return fmt.Errorf("extra levels must not be negative, got %d", c.ExtraLevels)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers too small (%d), must be >=1", c.Workers)
	}
	if c.Workers > maxWorkers {
		return fmt.Errorf("workers too large (%d), must be <=%d", c.Workers, maxWorkers)
	}
	return nil
}
