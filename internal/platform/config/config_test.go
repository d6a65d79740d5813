package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "https://greensquirrel.dev", cfg.SiteBaseURL)
	assert.Equal(t, cfg.SiteBaseURL, cfg.JWT.Issuer)
	assert.Equal(t, cfg.SiteBaseURL, cfg.JWT.Audience)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.ExtensionTokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.PairingSessionTTL)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORTFOLIO_ADDR", ":9090")
	t.Setenv("SITE_BASE_URL", "https://staging.greensquirrel.dev")
	t.Setenv("JWT_SIGNING_KEY", "staging-key")
	t.Setenv("ACCESS_TOKEN_TTL", "1h")
	t.Setenv("EXTENSION_TOKEN_TTL", "168h")
	t.Setenv("PAIRING_SESSION_TTL", "5m")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_POOL_SIZE", "25")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "https://staging.greensquirrel.dev", cfg.SiteBaseURL)
	assert.Equal(t, "staging-key", cfg.JWT.SigningKey)
	assert.Equal(t, "https://staging.greensquirrel.dev", cfg.JWT.Issuer)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.ExtensionTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.PairingSessionTTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 25, cfg.Redis.PoolSize)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "not-a-duration")
	t.Setenv("REDIS_POOL_SIZE", "lots")

	cfg := FromEnv()

	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}
