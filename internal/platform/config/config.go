package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures everything cmd/server needs to wire the process.
type Server struct {
	Addr            string
	SiteBaseURL     string
	ShutdownTimeout time.Duration

	JWT    JWTConfig
	Google GoogleConfig

	// PairingSessionTTL bounds the extension pairing window.
	PairingSessionTTL time.Duration

	DatabaseURL string
	Redis       RedisConfig
}

// JWTConfig holds signing parameters for session tokens.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
	// AccessTokenTTL applies to direct sign-in tokens, ExtensionTokenTTL to
	// tokens minted through the pairing flow. Two lifetimes is policy.
	AccessTokenTTL    time.Duration
	ExtensionTokenTTL time.Duration
}

// GoogleConfig identifies this application to Google's token verifier.
type GoogleConfig struct {
	ClientID string
}

// RedisConfig tunes the optional Redis-backed pairing session store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("PORTFOLIO_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	siteBaseURL := os.Getenv("SITE_BASE_URL")
	if siteBaseURL == "" {
		siteBaseURL = "https://greensquirrel.dev"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = siteBaseURL
	}
	jwtAudience := os.Getenv("JWT_AUDIENCE")
	if jwtAudience == "" {
		jwtAudience = siteBaseURL
	}

	return Server{
		Addr:            addr,
		SiteBaseURL:     siteBaseURL,
		ShutdownTimeout: durationFromEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
		JWT: JWTConfig{
			SigningKey:        jwtSigningKey,
			Issuer:            jwtIssuer,
			Audience:          jwtAudience,
			AccessTokenTTL:    durationFromEnv("ACCESS_TOKEN_TTL", 24*time.Hour),
			ExtensionTokenTTL: durationFromEnv("EXTENSION_TOKEN_TTL", 30*24*time.Hour),
		},
		Google: GoogleConfig{
			ClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		},
		PairingSessionTTL: durationFromEnv("PAIRING_SESSION_TTL", 10*time.Minute),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intFromEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: intFromEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationFromEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationFromEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationFromEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func intFromEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
