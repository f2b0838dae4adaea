package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "DATABASE_URL", "RECENT_SUMMARY_LIMIT", "WS_PING_INTERVAL_MS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "file:mental_health_db.sqlite?mode=rwc", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.RecentSummaryLimit)
	assert.Equal(t, 30*time.Second, cfg.PingInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("RECENT_SUMMARY_LIMIT", "5")
	t.Setenv("WS_WRITE_TIMEOUT_MS", "250")
	t.Setenv("CONVERSATION_LIST_LIMIT", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, 5, cfg.RecentSummaryLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.WriteTimeout)
	assert.Equal(t, 5, cfg.ConversationListLimit)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_FORMAT=text\nHTTP_PORT=7070\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// The real environment wins over .env.
	t.Setenv("HTTP_PORT", "6060")
	t.Setenv("LOG_FORMAT", "")
	require.NoError(t, os.Unsetenv("LOG_FORMAT"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 6060, cfg.HTTPPort)
}

func TestLoadWithoutDotEnv(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = Load()
	assert.NoError(t, err)
}
