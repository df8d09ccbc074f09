package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/copperpitch/youthrank/internal/platform/logging"
	"github.com/copperpitch/youthrank/internal/platform/resilience"
)

const defaultUserAgent = "youthrank/1.0 (+github.com/copperpitch/youthrank)"

// Config stores runtime configuration for the pipeline. Everything is
// environment-driven; CLI flags override individual fields per invocation.
type Config struct {
	UserAgent       string        `validate:"required"`
	MaxWorkers      int           `validate:"min=1,max=64"`
	MaxRetries      int           `validate:"min=1,max=10"`
	HTTPTimeout     time.Duration `validate:"gte=1s"`
	BaseURL         string        `validate:"required,url"`
	RankingsBaseURL string        `validate:"required,url"`
	DataDir         string        `validate:"required"`
	CacheDir        string        `validate:"required"`
	FailThreshold   float64       `validate:"gt=0,lte=1"`
	WindowDays      int           `validate:"min=30,max=1095"`
	DivisionsFile   string
	LogLevel        logging.Level
	Breaker         resilience.BreakerConfig
}

func Load() (Config, error) {
	maxWorkers, err := getEnvAsInt("MAX_WORKERS", 6)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_WORKERS: %w", err)
	}

	maxRetries, err := getEnvAsInt("UPSTREAM_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPSTREAM_MAX_RETRIES: %w", err)
	}

	timeoutSeconds, err := getEnvAsInt("HTTP_TIMEOUT_SECONDS", 30)
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_TIMEOUT_SECONDS: %w", err)
	}

	failThreshold, err := getEnvAsFloat("FAIL_THRESHOLD", 0.10)
	if err != nil {
		return Config{}, fmt.Errorf("parse FAIL_THRESHOLD: %w", err)
	}

	windowDays, err := getEnvAsInt("WINDOW_DAYS", 365)
	if err != nil {
		return Config{}, fmt.Errorf("parse WINDOW_DAYS: %w", err)
	}

	breakerEnabled, err := strconv.ParseBool(getEnv("UPSTREAM_CB_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPSTREAM_CB_ENABLED: %w", err)
	}
	breakerFailures, err := getEnvAsInt("UPSTREAM_CB_FAILURES", 12)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPSTREAM_CB_FAILURES: %w", err)
	}
	breakerOpenSeconds, err := getEnvAsInt("UPSTREAM_CB_OPEN_SECONDS", 30)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPSTREAM_CB_OPEN_SECONDS: %w", err)
	}

	dataDir := strings.TrimSpace(getEnv("DATA_DIR", "."))
	cacheDir := strings.TrimSpace(getEnv("CACHE_DIR", ""))
	if cacheDir == "" {
		cacheDir = filepath.Join(dataDir, "cache")
	}

	cfg := Config{
		UserAgent:       strings.TrimSpace(getEnv("HTTP_USER_AGENT", defaultUserAgent)),
		MaxWorkers:      maxWorkers,
		MaxRetries:      maxRetries,
		HTTPTimeout:     time.Duration(timeoutSeconds) * time.Second,
		BaseURL:         strings.TrimRight(strings.TrimSpace(getEnv("UPSTREAM_BASE_URL", "https://system.gotsport.com")), "/"),
		RankingsBaseURL: strings.TrimRight(strings.TrimSpace(getEnv("RANKINGS_BASE_URL", "https://rankings.gotsport.com")), "/"),
		DataDir:         dataDir,
		CacheDir:        cacheDir,
		FailThreshold:   failThreshold,
		WindowDays:      windowDays,
		DivisionsFile:   strings.TrimSpace(getEnv("DIVISIONS_FILE", "")),
		LogLevel:        logging.ParseLevel(getEnv("LOG_LEVEL", "info")),
		Breaker: resilience.NormalizeBreakerConfig(resilience.BreakerConfig{
			Enabled:          breakerEnabled,
			FailureThreshold: breakerFailures,
			OpenFor:          time.Duration(breakerOpenSeconds) * time.Second,
		}),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// BronzeDir, GoldDir, LogsDir and OutputsDir are the artifact roots under
// DataDir; the cache root is configured independently.

func (c Config) BronzeDir() string  { return filepath.Join(c.DataDir, "bronze") }
func (c Config) GoldDir() string    { return filepath.Join(c.DataDir, "gold") }
func (c Config) LogsDir() string    { return filepath.Join(c.DataDir, "logs") }
func (c Config) OutputsDir() string { return filepath.Join(c.DataDir, "outputs") }

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}
