package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func load(t *testing.T, env map[string]string) *Config {
	t.Helper()
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("LoadWith error: %v", err)
	}
	return cfg
}

func TestLoadWith_Defaults(t *testing.T) {
	cfg := load(t, map[string]string{})

	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.Auth.JWTSecret != FallbackJWTSecret {
		t.Fatalf("expected fallback secret, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.Store.Driver)
	}
	if cfg.Redis.Enabled || cfg.Auth.UsersRequireToken {
		t.Fatalf("expected optional features off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate in development: %v", err)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg := load(t, map[string]string{
		"STORE_DRIVER":        " Postgres ",
		"TOKEN_TTL":           "15m",
		"BCRYPT_COST":         "12",
		"USERS_REQUIRE_TOKEN": "true",
		"REDIS_ENABLED":       "true",
		"REDIS_CACHE_TTL":     "30s",
	})

	if cfg.Store.Driver != DriverPostgres {
		t.Fatalf("expected normalized postgres driver, got %q", cfg.Store.Driver)
	}
	if cfg.Auth.TokenTTL != 15*time.Minute || cfg.Auth.BcryptCost != 12 {
		t.Fatalf("unexpected auth config: %+v", cfg.Auth)
	}
	if !cfg.Auth.UsersRequireToken || !cfg.Redis.Enabled || cfg.Redis.CacheTTL != 30*time.Second {
		t.Fatalf("unexpected feature flags: auth=%+v redis=%+v", cfg.Auth, cfg.Redis)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"fallback secret in production", map[string]string{"ENV": "production"}, "JWT_SECRET must be set in production"},
		{"real secret in production", map[string]string{"ENV": "production", "JWT_SECRET": "s3cr3t-value"}, ""},
		{"bcrypt cost too low", map[string]string{"BCRYPT_COST": "2"}, "BCRYPT_COST"},
		{"bcrypt cost too high", map[string]string{"BCRYPT_COST": "40"}, "BCRYPT_COST"},
		{"non-positive ttl", map[string]string{"TOKEN_TTL": "0s"}, "TOKEN_TTL"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "cassandra"}, "unknown STORE_DRIVER"},
		{"memory driver", map[string]string{"STORE_DRIVER": "memory"}, ""},
		{"mongo driver", map[string]string{"STORE_DRIVER": "mongo"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := load(t, tt.env).Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
