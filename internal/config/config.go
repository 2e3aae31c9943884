// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes bot tokens, the
// holiday workflow scope (chat + topic, admin list), storage paths, reminder
// windows, outbound rate limits, and the admin HTTP listener.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// ReminderConfig defines the daily reminder windows for the staff chat.
type ReminderConfig struct {
	ChatID       int64         // REMINDER_CHAT_ID (0 disables reminders)
	DeliveryHour int           // DELIVERY_REMINDER_HOUR (local time, 0-23)
	ReportHour   int           // REPORT_REMINDER_HOUR (local time, 0-23)
	Spread       time.Duration // REMINDER_SPREAD: random send-time jitter within the hour
}

// HolidayConfig scopes the holiday-request workflow.
type HolidayConfig struct {
	BotToken  string  // HOLIDAY_BOT_TOKEN; falls back to BOT_TOKEN (shared client)
	ChatID    int64   // HOLIDAY_CHAT_ID: the only chat the workflow listens to
	TopicID   int     // HOLIDAY_TOPIC_ID: forum topic within the chat (0 = whole chat)
	AdminIDs  []int64 // HOLIDAY_ADMIN_IDS: comma-separated user ids allowed to resolve
	StorePath string  // HOLIDAY_STORE_PATH: JSON document location
}

// Config holds all configuration values for the application.
type Config struct {
	// Telegram
	BotToken  string  // shop bot token (required)
	SendRPS   float64 // outbound message rate (tokens per second)
	SendBurst int     // outbound burst size

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// App
	DBPath       string // SQLite path for orders and shifts
	StaffChatID  int64  // chat notified about new orders
	FreeDates    int    // how many free dates /freedates suggests
	ScanHorizon  int    // max days scanned forward when collecting free dates
	Holiday      HolidayConfig
	Reminders    ReminderConfig

	// Admin HTTP
	AdminAddr string // loopback listener for /healthz and /metrics ("" disables)
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		BotToken:  getenv("BOT_TOKEN", ""),
		SendRPS:   getfloat("SEND_RPS", 20.0),
		SendBurst: getint("SEND_BURST", 5),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		DBPath:      getenv("DB_PATH", "shop.db"),
		StaffChatID: getint64("STAFF_CHAT_ID", 0),
		FreeDates:   getint("FREE_DATES_COUNT", 5),
		ScanHorizon: getint("FREE_DATES_HORIZON", 365),

		Holiday: HolidayConfig{
			BotToken:  getenv("HOLIDAY_BOT_TOKEN", ""),
			ChatID:    getint64("HOLIDAY_CHAT_ID", 0),
			TopicID:   getint("HOLIDAY_TOPIC_ID", 0),
			AdminIDs:  getids("HOLIDAY_ADMIN_IDS"),
			StorePath: getenv("HOLIDAY_STORE_PATH", "holidays.json"),
		},

		Reminders: ReminderConfig{
			ChatID:       getint64("REMINDER_CHAT_ID", 0),
			DeliveryHour: getint("DELIVERY_REMINDER_HOUR", 10),
			ReportHour:   getint("REPORT_REMINDER_HOUR", 21),
			Spread:       getdur("REMINDER_SPREAD", 30*time.Minute),
		},

		AdminAddr: getenv("ADMIN_ADDR", "127.0.0.1:8081"),
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	if cfg.Holiday.BotToken == "" {
		cfg.Holiday.BotToken = cfg.BotToken
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.BotToken) == "" {
		return cfg, errors.New("BOT_TOKEN must not be empty")
	}
	if cfg.SendRPS <= 0 {
		return cfg, errors.New("SEND_RPS must be > 0")
	}
	if cfg.SendBurst < 1 {
		return cfg, errors.New("SEND_BURST must be >= 1")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.Holiday.StorePath) == "" {
		return cfg, errors.New("HOLIDAY_STORE_PATH must not be empty")
	}
	if cfg.Holiday.ChatID == 0 {
		return cfg, errors.New("HOLIDAY_CHAT_ID must be set")
	}
	if len(cfg.Holiday.AdminIDs) == 0 {
		return cfg, errors.New("HOLIDAY_ADMIN_IDS must list at least one user id")
	}
	if cfg.FreeDates < 1 {
		return cfg, errors.New("FREE_DATES_COUNT must be >= 1")
	}
	if cfg.ScanHorizon < cfg.FreeDates {
		return cfg, errors.New("FREE_DATES_HORIZON must be >= FREE_DATES_COUNT")
	}
	if cfg.Reminders.DeliveryHour < 0 || cfg.Reminders.DeliveryHour > 23 ||
		cfg.Reminders.ReportHour < 0 || cfg.Reminders.ReportHour > 23 {
		return cfg, errors.New("reminder hours must be in [0,23]")
	}
	if cfg.Reminders.Spread < 0 || cfg.Reminders.Spread > time.Hour {
		return cfg, errors.New("REMINDER_SPREAD must be between 0 and 1h")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// getids parses a comma-separated list of numeric user ids.
// Malformed entries are skipped rather than failing the whole load.
func getids(k string) []int64 {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t == "" {
			continue
		}
		if id, err := strconv.ParseInt(t, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}
