package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the notification decision service.
// Environment variables are parsed from the LOOMPLAN_ prefix,
// e.g. LOOMPLAN_HTTP_PORT, LOOMPLAN_POSTGRES_DSN.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage: sqlite (default, local) or postgres
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`

	// Collaborators (all optional; the engine degrades without them)
	MemoryServiceURL string `envconfig:"MEMORY_SERVICE_URL" default:""`
	FusionURL        string `envconfig:"FUSION_URL" default:""`
	PushURL          string `envconfig:"PUSH_URL" default:""`
	CopywriterURL    string `envconfig:"COPYWRITER_URL" default:""`
	CopywriterModel  string `envconfig:"COPYWRITER_MODEL" default:"llama3.1"`

	// Collaborator read timeout; snapshot reads are bounded and fail soft.
	CollaboratorTimeoutSeconds int `envconfig:"COLLABORATOR_TIMEOUT_SECONDS" default:"2"`

	// Escalation: a type is suppressed after EscalationThreshold consecutive
	// dismissals until SuppressionWindowDays have passed since the last one.
	EscalationThreshold   int `envconfig:"ESCALATION_THRESHOLD" default:"3"`
	SuppressionWindowDays int `envconfig:"SUPPRESSION_WINDOW_DAYS" default:"7"`

	// Quota: per-plan daily caps (0 means unlimited) and the hard per-call cap.
	DailyLimitFree   int `envconfig:"DAILY_LIMIT_FREE" default:"5"`
	DailyLimitPro    int `envconfig:"DAILY_LIMIT_PRO" default:"15"`
	DailyLimitMax    int `envconfig:"DAILY_LIMIT_MAX" default:"0"`
	MaxPerEvaluation int `envconfig:"MAX_PER_EVALUATION" default:"5"`

	// Reminder leads in minutes before a schedule's start time. Matching is
	// exact-minute; the poller must call at least once per minute.
	ReminderLeadMinutes  int `envconfig:"REMINDER_LEAD_MINUTES" default:"10"`
	ImportantLeadMinutes int `envconfig:"IMPORTANT_LEAD_MINUTES" default:"20"`

	// Daily windows (hours, local to the evaluation timestamp)
	MorningStartHour   int `envconfig:"MORNING_START_HOUR" default:"7"`
	MorningEndHour     int `envconfig:"MORNING_END_HOUR" default:"10"`
	AfternoonStartHour int `envconfig:"AFTERNOON_START_HOUR" default:"15"`
	AfternoonEndHour   int `envconfig:"AFTERNOON_END_HOUR" default:"17"`
	EveningCheckinHour int `envconfig:"EVENING_CHECKIN_HOUR" default:"21"`

	// Goal nudges fire once a goal has been open this many days.
	GoalStaleDays int `envconfig:"GOAL_STALE_DAYS" default:"3"`

	// Recurring pattern mining
	MiningLookbackDays  int `envconfig:"MINING_LOOKBACK_DAYS" default:"60"`
	MiningMinOccurrence int `envconfig:"MINING_MIN_OCCURRENCE" default:"2"`
	MiningBucketMinutes int `envconfig:"MINING_BUCKET_MINUTES" default:"30"`

	// Preference suggestions are rate limited to one every this many hours.
	SuggestionGapHours int `envconfig:"SUGGESTION_GAP_HOURS" default:"3"`

	// Evening wind-down lead before the profile's sleep time.
	SleepPrepLeadMinutes int `envconfig:"SLEEP_PREP_LEAD_MINUTES" default:"45"`

	// Sweep worker: cron spec, concurrent group size, pause between groups.
	SweepCronSpec     string `envconfig:"SWEEP_CRON_SPEC" default:"* * * * *"`
	SweepGroupSize    int    `envconfig:"SWEEP_GROUP_SIZE" default:"3"`
	SweepPauseSeconds int    `envconfig:"SWEEP_PAUSE_SECONDS" default:"2"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults validates the driver selection and derives it when "auto".
// Postgres wins when a DSN is configured, otherwise a local SQLite file.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}
	switch c.DBDriver {
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			c.SQLitePath = "data/loomplan-notify.db"
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("LOOMPLAN", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("port", cfg.HTTPPort).
		Int("escalation_threshold", cfg.EscalationThreshold).
		Int("suppression_window_days", cfg.SuppressionWindowDays).
		Int("max_per_evaluation", cfg.MaxPerEvaluation).
		Str("memory_service_url", cfg.MemoryServiceURL).
		Str("copywriter_url", cfg.CopywriterURL).
		Msg("Configuration loaded")

	return &cfg, nil
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
