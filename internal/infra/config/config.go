package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	AppName          string
	TelegramToken    string
	DatabaseURL      string
	AdminTelegramID  int64
	SendGridAPIKey   string
	FromEmail        string
	DeliveryChannels []string // which channels main wires up: telegram, email, console
	LogLevel         string
	Environment      string
	CronSpecDispatch string // sweep for overdue pending notifications
	CronSpecCache    string // sweep for expired analysis cache entries
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.AppName = os.Getenv("APP_NAME")
	if cfg.AppName == "" {
		cfg.AppName = "Wellbeing Alerts"
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.SendGridAPIKey = os.Getenv("SENDGRID_API_KEY")

	cfg.FromEmail = os.Getenv("FROM_EMAIL")
	if cfg.FromEmail == "" {
		cfg.FromEmail = "alerts@localhost"
	}

	channelsStr := os.Getenv("DELIVERY_CHANNELS")
	if channelsStr == "" {
		channelsStr = "telegram,email"
	}
	for _, ch := range strings.Split(channelsStr, ",") {
		ch = strings.TrimSpace(strings.ToLower(ch))
		if ch == "" {
			continue
		}
		switch ch {
		case "telegram", "email", "console":
			cfg.DeliveryChannels = append(cfg.DeliveryChannels, ch)
		default:
			return nil, fmt.Errorf("unknown delivery channel %q in DELIVERY_CHANNELS", ch)
		}
	}
	if len(cfg.DeliveryChannels) == 0 {
		return nil, fmt.Errorf("DELIVERY_CHANNELS resolved to an empty list")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecDispatch = os.Getenv("CRON_SPEC_DISPATCH_SWEEP")
	if cfg.CronSpecDispatch == "" {
		cfg.CronSpecDispatch = "* * * * *" // Default: every minute, catches lost timers
	}

	cfg.CronSpecCache = os.Getenv("CRON_SPEC_CACHE_SWEEP")
	if cfg.CronSpecCache == "" {
		cfg.CronSpecCache = "*/5 * * * *" // Default: every 5 minutes, matches the cache TTL
	}

	return cfg, nil
}
