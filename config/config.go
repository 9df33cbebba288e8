package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultPort             = 5200
	DefaultLeaderboardLimit = 20
	DefaultAuditInterval    = 15 * time.Minute
)

type Config struct {
	Port           uint     `envconfig:"PORT"`
	DatabaseURL    string   `envconfig:"DATABASE_URL"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
	LogLevel       string   `envconfig:"LOG_LEVEL"`
	LogFormat      string   `envconfig:"LOG_FORMAT"`

	// Optional snapshot board; disabled when empty
	RedisURL string `envconfig:"REDIS_URL"`

	// Optional snapshot archive on Cloudflare R2; disabled when the bucket is empty
	R2AccountID       string `envconfig:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret string `envconfig:"R2_ACCESS_KEY_SECRET"`
	R2BucketName      string `envconfig:"R2_BUCKET_NAME"`

	// RFC3339 instants at which a global snapshot runs automatically
	SnapshotSchedule []string `envconfig:"SNAPSHOT_SCHEDULE"`
	// Three RFC3339 (or YYYY-MM-DD) cutoffs for the early signup bonus
	EarlyBonusCutoffs []string `envconfig:"EARLY_BONUS_CUTOFFS"`

	ScoreAuditInterval time.Duration `envconfig:"SCORE_AUDIT_INTERVAL"`
	LeaderboardLimit   int           `envconfig:"LEADERBOARD_LIMIT"`
}

func defaults() *Config {
	return &Config{
		Port:               DefaultPort,
		DatabaseURL:        "sqlite:waitlist.db",
		AllowedOrigins:     []string{"http://localhost:3000"},
		LogLevel:           "info",
		LogFormat:          "text",
		ScoreAuditInterval: DefaultAuditInterval,
		LeaderboardLimit:   DefaultLeaderboardLimit,
	}
}

// Load reads an optional .env file and then the process environment over the defaults.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading env file: %w", err)
	}
	cfg := defaults()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for i, origin := range c.AllowedOrigins {
		c.AllowedOrigins[i] = strings.TrimSpace(origin)
	}
	if c.LeaderboardLimit <= 0 || c.LeaderboardLimit > DefaultLeaderboardLimit {
		c.LeaderboardLimit = DefaultLeaderboardLimit
	}
	if c.ScoreAuditInterval < 0 {
		return fmt.Errorf("SCORE_AUDIT_INTERVAL must not be negative, got %s", c.ScoreAuditInterval)
	}
	if n := len(c.EarlyBonusCutoffs); n != 0 && n != 3 {
		return fmt.Errorf("EARLY_BONUS_CUTOFFS needs exactly 3 dates, got %d", n)
	}
	if _, err := c.SnapshotTimes(); err != nil {
		return err
	}
	if _, err := c.BonusCutoffs(); err != nil {
		return err
	}
	return nil
}

// SnapshotTimes parses SnapshotSchedule.
func (c *Config) SnapshotTimes() ([]time.Time, error) {
	return parseTimes("SNAPSHOT_SCHEDULE", c.SnapshotSchedule)
}

// BonusCutoffs parses EarlyBonusCutoffs; nil means use the built-in schedule.
func (c *Config) BonusCutoffs() ([]time.Time, error) {
	return parseTimes("EARLY_BONUS_CUTOFFS", c.EarlyBonusCutoffs)
}

func parseTimes(key string, values []string) ([]time.Time, error) {
	var out []time.Time
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			t, err = time.Parse(time.DateOnly, v)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", key, v, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// R2Enabled reports whether snapshot archiving is configured.
func (c *Config) R2Enabled() bool {
	return c.R2BucketName != "" && c.R2AccountID != ""
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
