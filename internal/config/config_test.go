package config_test

import (
	"testing"
	"time"

	"github.com/nextera/workforce-api/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Env:                "test",
		JWTSecret:          "some-secret",
		JWTAlgorithm:       "HS256",
		AccessTokenExpires: 30 * time.Minute,
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{
			name:   "missing_secret",
			mutate: func(c *config.Config) { c.JWTSecret = "" },
		},
		{
			name:   "unknown_algorithm",
			mutate: func(c *config.Config) { c.JWTAlgorithm = "none" },
		},
		{
			name:   "non_hmac_algorithm",
			mutate: func(c *config.Config) { c.JWTAlgorithm = "RS256" },
		},
		{
			name:   "zero_expiry",
			mutate: func(c *config.Config) { c.AccessTokenExpires = 0 },
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()

	if cfg.Port == 0 {
		t.Fatalf("expected a default port")
	}

	if cfg.MongoDB == "" {
		t.Fatalf("expected a default database name")
	}

	if cfg.JWTAlgorithm != "HS256" {
		t.Fatalf("got default algorithm %q, want HS256", cfg.JWTAlgorithm)
	}

	if cfg.AccessTokenExpires != 30*time.Minute {
		t.Fatalf("got default expiry %v, want 30m", cfg.AccessTokenExpires)
	}
}
