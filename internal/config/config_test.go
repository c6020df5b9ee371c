package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "data/menu-planner.db", cfg.DatabasePath)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 30*time.Second, cfg.AITimeout)
		assert.False(t, cfg.AIEnabled())
		assert.False(t, cfg.TelegramEnabled())
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("DATABASE_PATH", "/tmp/menus.db")
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("AI_TIMEOUT", "5s")
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("TELEGRAM_WEBHOOK_URL", "https://bot.test/telegram/webhook")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "11, 22")
		t.Setenv("ADMIN_TELEGRAM_ID", "11")

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/menus.db", cfg.DatabasePath)
		assert.True(t, cfg.AIEnabled())
		assert.Equal(t, 5*time.Second, cfg.AITimeout)
		assert.Equal(t, []int64{11, 22}, cfg.TelegramAllowedUserIDs)
		assert.Equal(t, int64(11), cfg.AdminTelegramID)
	})

	t.Run("GhostAdminKeyFallsBackToContentKey", func(t *testing.T) {
		t.Setenv("GHOST_API_URL", "http://ghost.test/")
		t.Setenv("GHOST_CONTENT_API_KEY", "ghost_key")

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "http://ghost.test", cfg.GhostURL)
		assert.Equal(t, "ghost_key", cfg.GhostAdminKey)
	})

	t.Run("MissingWebhookURL", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "TELEGRAM_WEBHOOK_URL is required when TELEGRAM_BOT_TOKEN is set", err.Error())
	})

	t.Run("BadAllowedUserIDs", func(t *testing.T) {
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "12,abc")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TELEGRAM_ALLOWED_USER_IDS")
	})

	t.Run("BadTimeout", func(t *testing.T) {
		t.Setenv("AI_TIMEOUT", "soon")

		_, err := NewFromEnv()
		require.Error(t, err)
	})
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "database_path: /var/lib/menus.db\nport: \"9090\"\nlog_format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/menus.db", cfg.DatabasePath)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)

	t.Run("EnvWinsOverFile", func(t *testing.T) {
		t.Setenv("PORT", "7070")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.Port)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}
