package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PASETO_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.Env)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, "shoply", cfg.Database.DBName)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.Equal(t, "http://localhost:3000", cfg.Email.ClientURL)
	assert.Equal(t, "./files", cfg.Uploads.Dir)
}

func TestLoadRejectsBadPasetoKey(t *testing.T) {
	t.Setenv("PASETO_KEY", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PASETO_KEY")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PASETO_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("ACCESS_TOKEN_DURATION", "3600")
	t.Setenv("TRUSTED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.TrustedOrigins)
}

func TestConnectionString(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "pw",
		DBName: "shoply", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=app password=pw dbname=shoply sslmode=disable",
		c.ConnectionString(),
	)
}
