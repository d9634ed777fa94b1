package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USERNAME", "DB_PASSWORD", "DB_DATABASE",
	"REDIS_URL", "EVENTS_CHANNEL", "JWT_SECRET", "JWT_EXPIRES_IN", "BCRYPT_COST",
	"CORS_ALLOWED_ORIGINS", "AUTH_RATE_LIMIT_RPS", "MAX_BODY_BYTES", "LOG_LEVEL",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := loadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "broadcast", cfg.EventsChannel)
	assert.Equal(t, 24*time.Hour, cfg.Token.TTL)
	assert.True(t, cfg.Token.UsesInsecureDefault())
	assert.Equal(t, []string{"http://localhost:3001"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5, cfg.AuthRateLimitRPS)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("AUTH_RATE_LIMIT_RPS", "not-a-number")

	cfg, err := loadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres://u:p@localhost/db", cfg.DatabaseURL)
	assert.False(t, cfg.Token.UsesInsecureDefault())
	assert.Equal(t, 2*time.Hour, cfg.Token.TTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5, cfg.AuthRateLimitRPS)
}

func TestLoadConfig_DatabaseFromParts(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := loadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://postgres:pw@db:5432/watchplay", cfg.DatabaseURL)

	t.Setenv("DATABASE_URL", "postgres://override")
	cfg, err = loadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://override", cfg.DatabaseURL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("BCRYPT_COST", "3")
	_, err := loadConfigFromEnv()
	assert.Error(t, err)

	clearConfigEnv(t)
	t.Setenv("JWT_EXPIRES_IN", "soon")
	_, err = loadConfigFromEnv()
	assert.Error(t, err)
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"1d", 24 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{" 24h ", 24 * time.Hour, false},
		{"0d", 0, true},
		{"xd", 0, true},
		{"-1h", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTTL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	const key = "WATCHPLAY_TEST_ENV_FILE_KEY"
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv(key))

	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
