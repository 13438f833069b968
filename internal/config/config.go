package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries everything the server needs from the environment.
type Config struct {
	Addr        string
	PostgresDSN string

	AuthSecret string
	TokenTTL   time.Duration

	UploadDir     string
	MaxUploadSize int64

	RateBurst  int
	RatePerSec int

	LogLevel string
}

// Defaults used when the corresponding environment variable is unset.
const (
	defaultAddr       = ":8080"
	defaultTokenTTL   = 24 * time.Hour
	defaultUploadDir  = "uploads"
	defaultMaxUpload  = 5 << 20
	defaultRateBurst  = 50
	defaultRatePerSec = 25
)

// FromEnv reads SOCIETY_* variables. The auth secret is required; everything
// else falls back to a sane default.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:          envOr("SOCIETY_ADDR", defaultAddr),
		PostgresDSN:   os.Getenv("SOCIETY_PG_DSN"),
		AuthSecret:    os.Getenv("SOCIETY_AUTH_SECRET"),
		TokenTTL:      defaultTokenTTL,
		UploadDir:     envOr("SOCIETY_UPLOAD_DIR", defaultUploadDir),
		MaxUploadSize: defaultMaxUpload,
		RateBurst:     defaultRateBurst,
		RatePerSec:    defaultRatePerSec,
		LogLevel:      envOr("SOCIETY_LOG_LEVEL", "info"),
	}

	if cfg.AuthSecret == "" {
		return Config{}, fmt.Errorf("SOCIETY_AUTH_SECRET is required")
	}

	if raw := os.Getenv("SOCIETY_TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("SOCIETY_TOKEN_TTL: invalid duration %q", raw)
		}
		cfg.TokenTTL = ttl
	}
	if raw := os.Getenv("SOCIETY_RATE_BURST"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("SOCIETY_RATE_BURST: invalid value %q", raw)
		}
		cfg.RateBurst = n
	}
	if raw := os.Getenv("SOCIETY_RATE_PER_SEC"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("SOCIETY_RATE_PER_SEC: invalid value %q", raw)
		}
		cfg.RatePerSec = n
	}
	if raw := os.Getenv("SOCIETY_MAX_UPLOAD_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("SOCIETY_MAX_UPLOAD_BYTES: invalid value %q", raw)
		}
		cfg.MaxUploadSize = n
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
