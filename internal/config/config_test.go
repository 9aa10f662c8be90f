package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_DefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("NOTIFY_EMAIL_WORKERS", "4")
	t.Setenv("REMINDERS_ENABLED", "false")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 4, cfg.Notifications.EmailWorkers)
	assert.False(t, cfg.Reminders.Enabled)
	assert.Equal(t, "internhub", cfg.Database.DBName)
	assert.Equal(t, "http://localhost:9090", cfg.PublicBaseURL())
	assert.False(t, cfg.SMTPEnabled())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "7000"
  base_url: "https://api.example.com/"
jwt:
  secret: "from-file"
catalog:
  page_size: 10
smtp:
  host: "smtp.example.com"
  username: "u"
  password: "p"
`)
	t.Setenv("CATALOG_PAGE_SIZE", "25")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 25, cfg.Catalog.PageSize)
	assert.Equal(t, "https://api.example.com", cfg.PublicBaseURL())
	assert.True(t, cfg.SMTPEnabled())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing secret", "server:\n  port: \"1\"\n"},
		{"bad duration", "jwt:\n  secret: s\n  access_token_expiration: soon\n"},
		{"inverted reminder window", "jwt:\n  secret: s\nreminders:\n  window_min_days: 5\n  window_max_days: 2\n"},
		{"zero page size", "jwt:\n  secret: s\ncatalog:\n  page_size: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_BadEnvValue(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, Duration("2s"))
	assert.Zero(t, Duration("garbage"))
}
