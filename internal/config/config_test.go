package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/msomdec/limur-users/internal/config"
	"github.com/msomdec/limur-users/internal/remote"
)

const testSecret = "test-secret-key-for-unit-tests-0123456789"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PROFILE_SECRET", testSecret)
	for _, key := range []string{"PORT", "DATABASE_PATH", "COOKIE_SECURE", "USERS_ENDPOINT",
		"FETCH_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "PROFILE_ISSUE_RPS", "PROFILE_ISSUE_BURST",
		"SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := config.Config{
		Port:            "8080",
		DatabasePath:    "limur-users.db",
		ProfileSecret:   testSecret,
		CookieSecure:    true,
		UsersEndpoint:   remote.DefaultEndpoint,
		FetchTimeout:    30 * time.Second,
		RateLimitRPS:    2,
		RateLimitBurst:  10,
		IssueRPS:        0.1,
		IssueBurst:      20,
		ShutdownTimeout: 5 * time.Second,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PROFILE_SECRET", testSecret)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_PATH", "/tmp/users.db")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("USERS_ENDPOINT", "http://localhost:3000/users")
	t.Setenv("FETCH_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("RATE_LIMIT_BURST", "3")
	t.Setenv("PROFILE_ISSUE_RPS", "1")
	t.Setenv("PROFILE_ISSUE_BURST", "5")
	t.Setenv("SHUTDOWN_TIMEOUT", "1m")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := config.Config{
		Port:            "9090",
		DatabasePath:    "/tmp/users.db",
		ProfileSecret:   testSecret,
		CookieSecure:    false,
		UsersEndpoint:   "http://localhost:3000/users",
		FetchTimeout:    2 * time.Second,
		RateLimitRPS:    0.5,
		RateLimitBurst:  3,
		IssueRPS:        1,
		IssueBurst:      5,
		ShutdownTimeout: time.Minute,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing secret", map[string]string{"PROFILE_SECRET": ""}, "PROFILE_SECRET"},
		{"short secret", map[string]string{"PROFILE_SECRET": "too-short"}, "at least 32"},
		{"bad timeout", map[string]string{"FETCH_TIMEOUT": "soon"}, "FETCH_TIMEOUT"},
		{"zero timeout", map[string]string{"SHUTDOWN_TIMEOUT": "0s"}, "SHUTDOWN_TIMEOUT"},
		{"bad rps", map[string]string{"RATE_LIMIT_RPS": "fast"}, "RATE_LIMIT_RPS"},
		{"negative rps", map[string]string{"RATE_LIMIT_RPS": "-1"}, "RATE_LIMIT_RPS"},
		{"zero burst", map[string]string{"RATE_LIMIT_BURST": "0"}, "RATE_LIMIT_BURST"},
		{"zero issue burst", map[string]string{"PROFILE_ISSUE_BURST": "0"}, "PROFILE_ISSUE_BURST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PROFILE_SECRET", testSecret)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
