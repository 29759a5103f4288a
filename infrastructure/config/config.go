package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "http://localhost:3000"

// Config holds every runtime setting of the runner
type Config struct {
	BaseURL           string
	Headless          bool
	Concurrency       int
	SettleDelay       time.Duration
	ActionTimeout     time.Duration
	NavigationTimeout time.Duration
	LoadTimeout       time.Duration
	AssertTimeout     time.Duration
	ReportPath        string
	MetricsPath       string
	LogLevel          logrus.Level
}

// Default - returns the settings used when nothing is configured
func Default() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Headless:          true,
		Concurrency:       1,
		ActionTimeout:     5 * time.Second,
		NavigationTimeout: 10 * time.Second,
		LoadTimeout:       3 * time.Second,
		AssertTimeout:     3 * time.Second,
		LogLevel:          logrus.InfoLevel,
	}
}

// Load - reads an optional .env file, then the FLOW_* environment variables
func Load() (Config, error) {
	// .env file is optional
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv - builds a config from a variable lookup, starting from Default
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var err error

	if v := getenv("FLOW_BASE_URL"); v != "" {
		// Kept as given: a trailing slash decides how relative step URLs resolve.
		cfg.BaseURL = strings.TrimSpace(v)
	}
	if v := getenv("FLOW_HEADLESS"); v != "" {
		if cfg.Headless, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("invalid FLOW_HEADLESS %q: %w", v, err)
		}
	}
	if v := getenv("FLOW_CONCURRENCY"); v != "" {
		if cfg.Concurrency, err = strconv.Atoi(v); err != nil || cfg.Concurrency < 1 {
			return Config{}, fmt.Errorf("invalid FLOW_CONCURRENCY %q: must be a positive integer", v)
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"FLOW_SETTLE_DELAY", &cfg.SettleDelay},
		{"FLOW_ACTION_TIMEOUT", &cfg.ActionTimeout},
		{"FLOW_NAVIGATION_TIMEOUT", &cfg.NavigationTimeout},
		{"FLOW_LOAD_TIMEOUT", &cfg.LoadTimeout},
		{"FLOW_ASSERT_TIMEOUT", &cfg.AssertTimeout},
	}
	for _, d := range durations {
		v := getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed < 0 {
			return Config{}, fmt.Errorf("invalid %s %q: must be a non-negative duration", d.key, v)
		}
		*d.dst = parsed
	}

	cfg.ReportPath = getenv("FLOW_REPORT_PATH")
	cfg.MetricsPath = getenv("FLOW_METRICS_PATH")

	if v := getenv("FLOW_LOG_LEVEL"); v != "" {
		if cfg.LogLevel, err = logrus.ParseLevel(v); err != nil {
			return Config{}, fmt.Errorf("invalid FLOW_LOG_LEVEL %q: %w", v, err)
		}
	}

	return cfg, nil
}

// NewLogger - builds the process logger the way every component expects it
func NewLogger(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}
