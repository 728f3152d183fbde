package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.ApiServicePort)
	assert.EqualValues(t, 604800, cfg.TokenExpiration)
	assert.EqualValues(t, 20, cfg.GenerateTimeout)
	assert.EqualValues(t, 10, cfg.LoginRateLimit)
	assert.EqualValues(t, 60, cfg.LoginRateWindow)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("TOKEN_EXPIRATION", "3600")
	t.Setenv("ADMIN_EMAILS", " Root@Platform.Test , ops@platform.test ,")

	cfg := LoadConfig()

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.EqualValues(t, 3600, cfg.TokenExpiration)
	// Allowlist entries are trimmed and lowercased at load time.
	assert.Equal(t, []string{"root@platform.test", "ops@platform.test"}, cfg.AdminEmails)
}

func TestLoadConfig_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("TOKEN_EXPIRATION", "not-a-number")

	cfg := LoadConfig()
	assert.EqualValues(t, 604800, cfg.TokenExpiration)
}

func TestIsAdminEmail(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "root@platform.test")
	cfg := LoadConfig()

	assert.True(t, cfg.IsAdminEmail("root@platform.test"))
	assert.True(t, cfg.IsAdminEmail("  ROOT@platform.TEST  "))
	assert.False(t, cfg.IsAdminEmail("someone@else.test"))
	assert.False(t, cfg.IsAdminEmail(""))
}
