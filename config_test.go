package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STRAVA_CLIENT_ID", "STRAVA_CLIENT_SECRET", "STRAVA_REDIRECT_URI",
		"OPENAI_API_KEY", "OPENAI_MODEL", "PORT", "DATA_DIR", "ADMIN_IDS",
		"CSRF_KEY", "LOG_FILE", "GOOGLE_CALENDAR_ID", "GOOGLE_SERVICE_ACCOUNT",
		"TIMEZONE", "OUTPUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := loadConfig([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "Europe/Amsterdam", cfg.TimeZone)
	assert.Equal(t, "output/calendar.ics", cfg.Output)
	assert.Empty(t, cfg.StravaClientSecret)
	assert.Empty(t, cfg.AdminIDs)
}

func TestLoadConfigPrecedence(t *testing.T) {
	clearConfigEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"STRAVA_CLIENT_ID=123\nSTRAVA_CLIENT_SECRET=from-file\nPORT=9000\nDATA_DIR=/srv/file\nADMIN_IDS=42, 7,,99\n",
	), 0644))
	t.Setenv("STRAVA_CLIENT_SECRET", "from-env")
	t.Setenv("PORT", "9100")

	cfg, err := loadConfig([]string{"--env-file", envFile, "--port", "9200"})
	require.NoError(t, err)
	assert.Equal(t, "123", cfg.StravaClientID)
	assert.Equal(t, "from-env", cfg.StravaClientSecret)
	assert.Equal(t, "9200", cfg.Port)
	assert.Equal(t, "/srv/file", cfg.DataDir)
	assert.Equal(t, []string{"42", "7", "99"}, cfg.AdminIDs)
}

func TestLoadConfigRejectsUnknownFlag(t *testing.T) {
	clearConfigEnv(t)
	_, err := loadConfig([]string{"--nope"})
	assert.Error(t, err)
}

func TestCSRFKey(t *testing.T) {
	assert.Nil(t, csrfKey(""))
	assert.Len(t, csrfKey("short"), 32)
	assert.Equal(t, csrfKey("secret"), csrfKey("secret"))
}
