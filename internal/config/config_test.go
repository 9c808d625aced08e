package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_SECRET_KEY", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.Env)
	assert.True(t, cfg.Server.IsDevelopment())

	assert.Equal(t, TokenSchemeJWT, cfg.Auth.TokenScheme)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)

	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=accounts sslmode=disable",
		cfg.Database.ConnectionString())
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_SECRET_KEY", testSecret)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("ACCESS_TOKEN_TTL", "300")
	t.Setenv("TRUSTED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.TrustedOrigins)
}

func TestLoad_SecretKeyValidation(t *testing.T) {
	t.Run("jwt key too short", func(t *testing.T) {
		t.Setenv("AUTH_SECRET_KEY", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 bytes")
	})

	t.Run("jwt key over 32 bytes is fine", func(t *testing.T) {
		t.Setenv("AUTH_SECRET_KEY", testSecret+"extra")

		_, err := Load()
		require.NoError(t, err)
	})

	t.Run("paseto key must be exactly 32 bytes", func(t *testing.T) {
		t.Setenv("AUTH_TOKEN_SCHEME", TokenSchemePaseto)
		t.Setenv("AUTH_SECRET_KEY", testSecret+"extra")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly 32 bytes")
	})

	t.Run("paseto key of 32 bytes is accepted", func(t *testing.T) {
		t.Setenv("AUTH_TOKEN_SCHEME", TokenSchemePaseto)
		t.Setenv("AUTH_SECRET_KEY", testSecret)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, TokenSchemePaseto, cfg.Auth.TokenScheme)
	})

	t.Run("unknown scheme is rejected", func(t *testing.T) {
		t.Setenv("AUTH_TOKEN_SCHEME", "opaque")
		t.Setenv("AUTH_SECRET_KEY", testSecret)

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown AUTH_TOKEN_SCHEME")
	})
}
