package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, uint(DefaultPort), cfg.Port)
	assert.Equal(t, DefaultLeaderboardLimit, cfg.LeaderboardLimit)
	assert.Equal(t, DefaultAuditInterval, cfg.ScoreAuditInterval)
	assert.False(t, cfg.R2Enabled())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ALLOWED_ORIGINS", "https://example.com, http://localhost:5173")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LEADERBOARD_LIMIT", "50")
	t.Setenv("SNAPSHOT_SCHEDULE", "2025-01-10T00:00:00Z,2025-02-07T00:00:00Z")
	t.Setenv("EARLY_BONUS_CUTOFFS", "2026-01-01,2026-01-10,2026-02-01")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, uint(8080), cfg.Port)
	assert.Equal(t, []string{"https://example.com", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, DefaultLeaderboardLimit, cfg.LeaderboardLimit)

	times, err := cfg.SnapshotTimes()
	require.NoError(t, err)
	require.Len(t, times, 2)
	assert.Equal(t, time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC), times[1])

	cutoffs, err := cfg.BonusCutoffs()
	require.NoError(t, err)
	require.Len(t, cutoffs, 3)
	assert.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), cutoffs[1])
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("R2_ACCOUNT_ID=acct\nR2_BUCKET_NAME=snapshots\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("R2_ACCOUNT_ID")
		os.Unsetenv("R2_BUCKET_NAME")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.R2Enabled())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("EARLY_BONUS_CUTOFFS", "2026-01-01,2026-01-10")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)

	t.Setenv("EARLY_BONUS_CUTOFFS", "")
	t.Setenv("SNAPSHOT_SCHEDULE", "next tuesday")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}
