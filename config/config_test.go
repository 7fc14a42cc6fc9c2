package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutEnvFile(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.App.Port)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessExpiry)
	assert.Equal(t, int64(25<<20), cfg.AI.MaxAudioBytes)
	assert.False(t, cfg.Auth.RequireAdmin)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=8080\nAI_TIMEOUT=3s\nGROQ_API_KEY=file-key\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_REQUIRE_ADMIN", "true")

	cfg, err := load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 3*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "file-key", cfg.AI.GroqAPIKey)
	assert.True(t, cfg.Auth.RequireAdmin)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, AppConfig{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, time.UTC, AppConfig{}.Location())
	assert.Equal(t, "Asia/Jakarta", AppConfig{Timezone: "Asia/Jakarta"}.Location().String())
}
