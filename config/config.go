// Package config loads the bot's configuration: infrastructure
// settings from environment variables, and the game content (points,
// levels, achievements, badges, cards) from a TOML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config holds all infrastructure configuration.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Telegram  TelegramConfig
	Scheduler SchedulerConfig
	Log       LogConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Timezone    string
	Location    *time.Location

	// ContentPath is the game content TOML file.
	ContentPath string

	// HealthAddr is the listen address of the health endpoint.
	// Empty disables the endpoint.
	HealthAddr string

	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds leaderboard cache settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	CacheTTL time.Duration

	// Disabled turns the cache off entirely; the bot works without it.
	Disabled bool
}

// TelegramConfig holds Bot API settings.
type TelegramConfig struct {
	Token          string
	BaseURL        string
	PollingTimeout int
}

// SchedulerConfig holds background job settings.
type SchedulerConfig struct {
	// ReportHour/ReportMinute is the local time of the daily report.
	ReportHour   int
	ReportMinute int
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	env := Environment(getEnv("APP_ENV", "development"))
	timezone := getEnv("APP_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid APP_TIMEZONE %q: %w", timezone, err)
	}
	cfg.App = AppConfig{
		Name:            getEnv("APP_NAME", "cookie-growth-bot"),
		Environment:     env,
		Timezone:        timezone,
		Location:        loc,
		ContentPath:     getEnv("APP_CONTENT_PATH", "content.toml"),
		HealthAddr:      getEnv("HEALTH_ADDR", ""),
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	cfg.Database = DatabaseConfig{
		URL: getEnv("DATABASE_URL", ""),
	}
	if cfg.Database.URL == "" {
		host := getEnv("DB_HOST", "")
		if host != "" {
			cfg.Database.URL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
				getEnv("DB_USER", "postgres"),
				getEnv("DB_PASSWORD", ""),
				host,
				getEnv("DB_PORT", "5432"),
				getEnv("DB_NAME", "cookiebot"),
				getEnv("DB_SSLMODE", "disable"))
		}
	}

	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnvInt("REDIS_PORT", 6379),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		CacheTTL: getEnvDuration("REDIS_CACHE_TTL", 30*time.Second),
		Disabled: getEnvBool("REDIS_DISABLED", false),
	}

	cfg.Telegram = TelegramConfig{
		Token:          getEnv("TELEGRAM_BOT_TOKEN", ""),
		BaseURL:        getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		PollingTimeout: getEnvInt("TELEGRAM_POLLING_TIMEOUT", 30),
	}

	cfg.Scheduler = SchedulerConfig{
		ReportHour:   getEnvInt("REPORT_HOUR", 9),
		ReportMinute: getEnvInt("REPORT_MINUTE", 0),
	}

	cfg.Log = LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL (or DB_HOST) is required")
	}
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Scheduler.ReportHour < 0 || c.Scheduler.ReportHour > 23 {
		return fmt.Errorf("REPORT_HOUR must be 0..23")
	}
	if c.Scheduler.ReportMinute < 0 || c.Scheduler.ReportMinute > 59 {
		return fmt.Errorf("REPORT_MINUTE must be 0..59")
	}
	return nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
