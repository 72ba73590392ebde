package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	HistoryModeCached = "cached"
	HistoryModeReread = "reread"
)

type AppConfig struct {
	Port     string `yaml:"port"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`

	// Model artifact and historical CSV; either may be a path or an http(s) URL.
	ModelArtifact     string `yaml:"model_artifact"`
	HistorySource     string `yaml:"history_source"`
	HistoryDateColumn string `yaml:"history_date_column"`
	HistoryMode       string `yaml:"history_mode"` // cached | reread

	DefaultHorizonDays int `yaml:"default_horizon_days"`
	MaxHorizonDays     int `yaml:"max_horizon_days"` // 0 = only the service ceiling applies

	CORSAllowOrigins string `yaml:"cors_allow_origins"`

	// AuditInterval controls how often sources are re-checked (0 = disabled).
	AuditInterval time.Duration `yaml:"audit_interval"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"` // 0 = disabled
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *AppConfig {
	return &AppConfig{
		Port:               "8080",
		Env:                "development",
		LogLevel:           "info",
		ModelArtifact:      "sarimax_model.json",
		HistorySource:      "dhaka_data_2.csv",
		HistoryDateColumn:  "date",
		HistoryMode:        HistoryModeCached,
		DefaultHorizonDays: 7,
		MaxHorizonDays:     30,
		CORSAllowOrigins:   "http://localhost:5173",
		AuditInterval:      time.Hour,
		HTTPTimeout:        15 * time.Second,
		RateLimitBurst:     10,
	}
}

// Load reads configuration: defaults, then the YAML file named by CONFIG_FILE,
// then .env and environment overrides.
func Load() (*AppConfig, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.Env = getenvDefault("APP_ENV", cfg.Env)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.ModelArtifact = getenvDefault("MODEL_ARTIFACT", cfg.ModelArtifact)
	cfg.HistorySource = getenvDefault("HISTORY_SOURCE", cfg.HistorySource)
	cfg.HistoryDateColumn = getenvDefault("HISTORY_DATE_COLUMN", cfg.HistoryDateColumn)
	cfg.HistoryMode = strings.ToLower(getenvDefault("HISTORY_MODE", cfg.HistoryMode))
	cfg.CORSAllowOrigins = getenvDefault("CORS_ALLOW_ORIGINS", cfg.CORSAllowOrigins)

	var err error
	if cfg.DefaultHorizonDays, err = getenvInt("DEFAULT_HORIZON_DAYS", cfg.DefaultHorizonDays); err != nil {
		return nil, err
	}
	if cfg.MaxHorizonDays, err = getenvInt("MAX_HORIZON_DAYS", cfg.MaxHorizonDays); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getenvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getenvFloat("RATE_LIMIT_RPS", cfg.RateLimitRPS); err != nil {
		return nil, err
	}
	if cfg.AuditInterval, err = getenvDuration("AUDIT_INTERVAL", cfg.AuditInterval); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *AppConfig) Validate() error {
	if c.ModelArtifact == "" {
		return fmt.Errorf("MODEL_ARTIFACT must be set")
	}
	if c.HistorySource == "" {
		return fmt.Errorf("HISTORY_SOURCE must be set")
	}
	if c.HistoryMode != HistoryModeCached && c.HistoryMode != HistoryModeReread {
		return fmt.Errorf("invalid HISTORY_MODE %q: use %q or %q", c.HistoryMode, HistoryModeCached, HistoryModeReread)
	}
	if c.DefaultHorizonDays < 1 {
		return fmt.Errorf("DEFAULT_HORIZON_DAYS must be >= 1, got %d", c.DefaultHorizonDays)
	}
	if c.MaxHorizonDays < 0 {
		return fmt.Errorf("MAX_HORIZON_DAYS must be >= 0, got %d", c.MaxHorizonDays)
	}
	if c.MaxHorizonDays > 0 && c.DefaultHorizonDays > c.MaxHorizonDays {
		return fmt.Errorf("DEFAULT_HORIZON_DAYS (%d) exceeds MAX_HORIZON_DAYS (%d)", c.DefaultHorizonDays, c.MaxHorizonDays)
	}
	if c.AuditInterval < 0 {
		return fmt.Errorf("AUDIT_INTERVAL must not be negative")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 1 when RATE_LIMIT_RPS is set, got %d", c.RateLimitBurst)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
