package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "access-secret-for-tests-0123456789")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret-for-tests-0123456789")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 5, cfg.LockoutAttempts)
	assert.Equal(t, 2*time.Hour, cfg.LockoutDuration)
	assert.True(t, cfg.DBAutoMigrate)
	assert.False(t, cfg.IsProduction())
	assert.Contains(t, cfg.CORSOrigins, "http://localhost:3000")
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")
}

func TestLoad_SecretsMustDiffer(t *testing.T) {
	t.Setenv("JWT_SECRET", "same-secret")
	t.Setenv("JWT_REFRESH_SECRET", "same-secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestLoad_ProductionRequiresDatabase(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_URI", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_URI")
}

func TestLoad_DayDurationsAndOrigins(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_REFRESH_EXPIRE", "7d")
	t.Setenv("CORS_ORIGIN", "https://a.example, https://b.example,http://localhost:3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, []string{"http://localhost:3000", "https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadRateLimitConfig_DerivesRefill(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "100")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "900000")

	rl := LoadRateLimitConfig()
	assert.Equal(t, 100, rl.Capacity)
	assert.Equal(t, 9*time.Second, rl.RefillInterval)
	assert.InDelta(t, 1.0/9.0, rl.PerSecond(), 1e-9)
}
