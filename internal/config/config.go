package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string
	Port         string
	LogLevel     string
	LogFormat    string

	// AI helpers (optional)
	GeminiAPIKey string
	GeminiModel  string
	AITimeout    time.Duration

	// Ghost recipe blog (optional)
	GhostURL        string
	GhostContentKey string
	GhostAdminKey   string

	// Telegram Config (optional)
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables only.
func NewFromEnv() (*Config, error) {
	return Load("")
}

// Load reads an optional YAML config file and overlays environment variables.
// Keys in the file use the same names as the environment, lower-cased.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("database_path", "data/menu-planner.db")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("gemini_model", "gemini-1.5-flash")
	v.SetDefault("ai_timeout", "30s")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	aiTimeout, err := time.ParseDuration(v.GetString("ai_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid AI_TIMEOUT: %w", err)
	}

	allowed, err := parseIDList(v.GetString("telegram_allowed_user_ids"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	var adminID int64
	if raw := v.GetString("admin_telegram_id"); raw != "" {
		adminID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	ghostContentKey := v.GetString("ghost_content_api_key")
	ghostAdminKey := v.GetString("ghost_admin_api_key")
	if ghostAdminKey == "" {
		// Fallback to content key if only one is provided
		ghostAdminKey = ghostContentKey
	}

	cfg := &Config{
		DatabasePath:           v.GetString("database_path"),
		Port:                   v.GetString("port"),
		LogLevel:               v.GetString("log_level"),
		LogFormat:              v.GetString("log_format"),
		GeminiAPIKey:           v.GetString("gemini_api_key"),
		GeminiModel:            v.GetString("gemini_model"),
		AITimeout:              aiTimeout,
		GhostURL:               strings.TrimRight(v.GetString("ghost_api_url"), "/"),
		GhostContentKey:        ghostContentKey,
		GhostAdminKey:          ghostAdminKey,
		TelegramBotToken:       v.GetString("telegram_bot_token"),
		TelegramWebhookURL:     v.GetString("telegram_webhook_url"),
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports inconsistent combinations of settings.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return errors.New("DATABASE_PATH must not be empty")
	}
	if c.AITimeout <= 0 {
		return errors.New("AI_TIMEOUT must be positive")
	}
	if c.TelegramBotToken != "" && c.TelegramWebhookURL == "" {
		return errors.New("TELEGRAM_WEBHOOK_URL is required when TELEGRAM_BOT_TOKEN is set")
	}
	if c.GhostURL != "" && c.GhostContentKey == "" {
		return errors.New("GHOST_CONTENT_API_KEY is required when GHOST_API_URL is set")
	}
	return nil
}

// AIEnabled reports whether AI helpers can be constructed.
func (c *Config) AIEnabled() bool { return c.GeminiAPIKey != "" }

// GhostEnabled reports whether the Ghost blog integration is configured.
func (c *Config) GhostEnabled() bool { return c.GhostURL != "" }

// TelegramEnabled reports whether the Telegram bot should be started.
func (c *Config) TelegramEnabled() bool { return c.TelegramBotToken != "" }

func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
