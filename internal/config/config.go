package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hray3182/coursebot/internal/rrule"
	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	DataDir       string
	OperatorID    int64
	TestMode      bool
	ReminderTime  string // HH:MM local time of the daily digest, empty with REMINDER_RRULE
	ReminderRule  string // RRULE driving the daily digest
	Location      *time.Location
	UpdateTTL     time.Duration
	LogLevel      string
	Debug         bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	cfg := &Config{
		TelegramToken: getEnvOrDefault("TELEGRAM_TOKEN", os.Getenv("BOT_TOKEN")),
		DataDir:       getEnvOrDefault("DATA_DIR", "data"),
		TestMode:      isTrue(os.Getenv("TEST_MODE")),
		ReminderTime:  getEnvOrDefault("REMINDER_TIME", "10:00"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		Debug:         isTrue(os.Getenv("DEBUG")),
		Location:      time.Local,
	}

	if v := os.Getenv("OPERATOR_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OPERATOR_ID %q: %w", v, err)
		}
		cfg.OperatorID = id
	}

	if name := os.Getenv("TZ_NAME"); name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ_NAME %q: %w", name, err)
		}
		cfg.Location = loc
	}

	ttl, err := time.ParseDuration(getEnvOrDefault("UPDATE_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPDATE_TTL: %w", err)
	}
	cfg.UpdateTTL = ttl

	hour, minute, err := ParseClock(cfg.ReminderTime)
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_TIME: %w", err)
	}
	if rule := os.Getenv("REMINDER_RRULE"); rule != "" {
		now := time.Now().In(cfg.Location)
		next, err := rrule.NextOccurrence(rule, now, now)
		if err != nil {
			return nil, fmt.Errorf("invalid REMINDER_RRULE: %w", err)
		}
		if next == nil {
			return nil, fmt.Errorf("invalid REMINDER_RRULE %q: no future occurrences", rule)
		}
		cfg.ReminderRule = rule
		cfg.ReminderTime = ""
	} else {
		cfg.ReminderRule = rrule.DailyAt(hour, minute)
	}

	return cfg, nil
}

// Validate checks the settings needed to talk to Telegram
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

// ParseClock parses "HH:MM" into hour and minute
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func isTrue(v string) bool {
	switch strings.TrimSpace(v) {
	case "1", "true", "True", "yes", "on":
		return true
	}
	return false
}
