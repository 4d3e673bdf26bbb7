package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Run modes for the dispatcher process.
const (
	RunModeInterval = "interval" // internal minute ticker via gocron
	RunModeHTTP     = "http"     // external scheduler hits POST /jobs/dispatch
)

// Push backend identifiers.
const (
	BackendFCM       = "fcm"
	BackendOneSignal = "onesignal"
	BackendTelegram  = "telegram"
)

// Aggregation policies for the task query.
const (
	PolicyAllOpen   = "all-open"   // every incomplete task counts
	PolicyDueWindow = "due-window" // only tasks due within DueWindowDays
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL"` // Postgres DSN; empty means SQLite
	DBPath      string `envconfig:"DB_PATH" default:"data/hwnotify.db"`

	Timezone string `envconfig:"TIMEZONE" default:"Europe/Bucharest"` // reference TZ for slot matching
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	RunMode      string `envconfig:"RUN_MODE" default:"interval"`
	HTTPAddr     string `envconfig:"HTTP_ADDR" default:":8080"`
	TriggerToken string `envconfig:"TRIGGER_TOKEN"` // optional shared secret for the HTTP trigger

	PushBackend         string `envconfig:"PUSH_BACKEND" default:"fcm"`
	FirebaseCredentials string `envconfig:"FIREBASE_CREDENTIALS_PATH" default:"./serviceAccountKey.json"`
	OneSignalAppID      string `envconfig:"ONESIGNAL_APP_ID"`
	OneSignalAPIKey     string `envconfig:"ONESIGNAL_API_KEY"`
	TelegramToken       string `envconfig:"TELEGRAM_BOT_TOKEN"`

	AggregationPolicy string        `envconfig:"AGGREGATION_POLICY" default:"all-open"`
	DueWindowDays     int           `envconfig:"DUE_WINDOW_DAYS" default:"2"`
	UserTimeout       time.Duration `envconfig:"USER_TIMEOUT" default:"30s"`
}

// Load reads a .env file if present, then the environment, and validates the
// combinations that would otherwise fail deep inside a cycle.
func Load() (Config, error) {
	// A missing .env is fine; real deployments use plain environment variables.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	switch c.RunMode {
	case RunModeInterval, RunModeHTTP:
	default:
		return fmt.Errorf("invalid RUN_MODE %q", c.RunMode)
	}
	switch c.PushBackend {
	case BackendFCM, BackendOneSignal, BackendTelegram:
	default:
		return fmt.Errorf("invalid PUSH_BACKEND %q", c.PushBackend)
	}
	switch c.AggregationPolicy {
	case PolicyAllOpen, PolicyDueWindow:
	default:
		return fmt.Errorf("invalid AGGREGATION_POLICY %q", c.AggregationPolicy)
	}
	if c.DueWindowDays <= 0 {
		return fmt.Errorf("DUE_WINDOW_DAYS must be positive, got %d", c.DueWindowDays)
	}
	if c.UserTimeout <= 0 {
		return fmt.Errorf("USER_TIMEOUT must be positive, got %s", c.UserTimeout)
	}
	return nil
}

// Location returns the reference time zone. Safe after a successful Load.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
