package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.QueryCacheTTL != 5*time.Minute {
		t.Fatalf("unexpected query cache ttl: %v", cfg.QueryCacheTTL)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("unexpected session ttl: %v", cfg.SessionTTL)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Fatalf("unexpected poll interval: %v", cfg.PollInterval)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected http timeout: %v", cfg.HTTPTimeout)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("unexpected idempotency ttl: %v", cfg.IdempotencyTTL)
	}
	if cfg.Port != "8080" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(KeyBackendBaseURL, " https://tasks.example.com/api ")
	t.Setenv(KeyPollInterval, "45s")
	t.Setenv(KeyDebug, "true")
	t.Setenv(KeyAllowedOrigins, "https://a.example.com, https://b.example.com")

	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BackendBaseURL != "https://tasks.example.com/api" {
		t.Fatalf("unexpected base url: %q", cfg.BackendBaseURL)
	}
	if cfg.PollInterval != 45*time.Second {
		t.Fatalf("unexpected poll interval: %v", cfg.PollInterval)
	}
	if !cfg.Debug {
		t.Fatalf("expected debug")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskboard.yaml")
	data := "backend_base_url: https://file.example.com/api\nquery_cache_ttl: 90s\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BackendBaseURL != "https://file.example.com/api" {
		t.Fatalf("unexpected base url: %q", cfg.BackendBaseURL)
	}
	if cfg.QueryCacheTTL != 90*time.Second {
		t.Fatalf("unexpected query cache ttl: %v", cfg.QueryCacheTTL)
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	for _, raw := range []string{"soon", "0s", "-1m"} {
		t.Run(raw, func(t *testing.T) {
			t.Setenv(KeySessionTTL, raw)
			_, err := Load(newViper())
			if err == nil || !strings.Contains(err.Error(), KeySessionTTL) {
				t.Fatalf("expected %s error, got %v", KeySessionTTL, err)
			}
		})
	}
}

func TestValidateServe(t *testing.T) {
	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	err = cfg.ValidateServe()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, key := range []string{KeyBackendBaseURL, KeyRedisConnection, KeyJWTSecret} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in %v", key, err)
		}
	}

	cfg.BackendBaseURL = "https://tasks.example.com/api"
	cfg.RedisConnection = "localhost:6379"
	cfg.JWKSURL = "https://auth.example.com/.well-known/jwks.json"
	if err := cfg.ValidateServe(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseRedisOptions(t *testing.T) {
	tests := []struct {
		name     string
		conn     string
		addr     string
		password string
		tls      bool
		wantErr  bool
	}{
		{name: "url", conn: "redis://:secret@cache:6380/0", addr: "cache:6380", password: "secret"},
		{name: "tls url", conn: "rediss://cache:6380", addr: "cache:6380", tls: true},
		{name: "azure style", conn: "cache.redis.cache.windows.net:6380,password=abc=,ssl=True,abortConnect=False", addr: "cache.redis.cache.windows.net:6380", password: "abc=", tls: true},
		{name: "host only", conn: "localhost:6379", addr: "localhost:6379"},
		{name: "empty", conn: "", wantErr: true},
		{name: "no host", conn: "password=abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseRedisOptions(tt.conn)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if opts.Addr != tt.addr || opts.Password != tt.password || (opts.TLSConfig != nil) != tt.tls {
				t.Fatalf("unexpected options: addr=%s password=%s tls=%v", opts.Addr, opts.Password, opts.TLSConfig != nil)
			}
		})
	}
}
