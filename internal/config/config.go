// Package config reads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/msomdec/limur-users/internal/remote"
)

// MinSecretLength is the shortest accepted PROFILE_SECRET.
const MinSecretLength = 32

type Config struct {
	Port            string
	DatabasePath    string
	ProfileSecret   string
	CookieSecure    bool
	UsersEndpoint   string
	FetchTimeout    time.Duration
	RateLimitRPS    float64
	RateLimitBurst  float64
	IssueRPS        float64
	IssueBurst      float64
	ShutdownTimeout time.Duration
}

// Load reads the configuration. Unset variables take their defaults;
// malformed values are errors.
func Load() (Config, error) {
	cfg := Config{
		Port:          envOrDefault("PORT", "8080"),
		DatabasePath:  envOrDefault("DATABASE_PATH", "limur-users.db"),
		ProfileSecret: os.Getenv("PROFILE_SECRET"),
		// Secure cookies unless explicitly disabled for local development.
		CookieSecure:  os.Getenv("COOKIE_SECURE") != "false",
		UsersEndpoint: envOrDefault("USERS_ENDPOINT", remote.DefaultEndpoint),
	}

	if cfg.ProfileSecret == "" {
		return Config{}, errors.New("PROFILE_SECRET environment variable is required")
	}
	if len(cfg.ProfileSecret) < MinSecretLength {
		return Config{}, fmt.Errorf("PROFILE_SECRET must be at least %d characters", MinSecretLength)
	}

	var err error
	if cfg.FetchTimeout, err = getdur("FETCH_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getdur("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = getfloat("RATE_LIMIT_RPS", 2); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = getfloat("RATE_LIMIT_BURST", 10); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst < 1 {
		return Config{}, fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %v", cfg.RateLimitBurst)
	}
	if cfg.IssueRPS, err = getfloat("PROFILE_ISSUE_RPS", 0.1); err != nil {
		return Config{}, err
	}
	if cfg.IssueBurst, err = getfloat("PROFILE_ISSUE_BURST", 20); err != nil {
		return Config{}, err
	}
	if cfg.IssueBurst < 1 {
		return Config{}, fmt.Errorf("PROFILE_ISSUE_BURST must be at least 1, got %v", cfg.IssueBurst)
	}
	return cfg, nil
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getdur(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

func getfloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if f < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %v", key, f)
	}
	return f, nil
}
