// Package config reads the BFF settings from the environment and an optional
// YAML file.
package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const (
	KeyBackendBaseURL    = "BACKEND_BASE_URL"
	KeyRedisConnection   = "REDIS_CONNECTION_STRING"
	KeyJWTSecret         = "JWT_SECRET"
	KeyJWKSURL           = "JWKS_URL"
	KeyJWTAudience       = "JWT_AUDIENCE"
	KeyJWTIssuer         = "JWT_ISSUER"
	KeyJWKSCacheTTL      = "JWKS_CACHE_TTL"
	KeyQueryCacheTTL     = "QUERY_CACHE_TTL"
	KeySessionTTL        = "SESSION_TTL"
	KeyPollInterval      = "NOTIFICATION_POLL_INTERVAL"
	KeyHTTPTimeout       = "HTTP_TIMEOUT"
	KeyPort              = "PORT"
	KeyDebug             = "DEBUG"
	KeyNotifyChannel     = "NOTIFICATION_CHANNEL"
	KeyAllowedOrigins    = "CORS_ALLOWED_ORIGINS"
	KeyShutdownTimeout   = "SHUTDOWN_TIMEOUT"
	KeyIdempotencyTTL    = "IDEMPOTENCY_TTL"
	defaultAllowedOrigin = "*"
)

// Config holds every setting of the service.
type Config struct {
	BackendBaseURL  string
	RedisConnection string
	JWTSecret       string
	JWKSURL         string
	JWTAudience     string
	JWTIssuer       string
	JWKSCacheTTL    time.Duration
	QueryCacheTTL   time.Duration
	SessionTTL      time.Duration
	PollInterval    time.Duration
	HTTPTimeout     time.Duration
	ShutdownTimeout time.Duration
	IdempotencyTTL  time.Duration
	Port            string
	Debug           bool
	NotifyChannel   string
	AllowedOrigins  []string
}

// SetDefaults registers the default of every optional key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyJWKSCacheTTL, "15m")
	v.SetDefault(KeyQueryCacheTTL, "5m")
	v.SetDefault(KeySessionTTL, "24h")
	v.SetDefault(KeyPollInterval, "30s")
	v.SetDefault(KeyHTTPTimeout, "15s")
	v.SetDefault(KeyShutdownTimeout, "10s")
	v.SetDefault(KeyIdempotencyTTL, "24h")
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyNotifyChannel, "notifications:nudge")
	v.SetDefault(KeyAllowedOrigins, defaultAllowedOrigin)
}

// Load reads the settings from v. Durations must be positive.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		BackendBaseURL:  strings.TrimSpace(v.GetString(KeyBackendBaseURL)),
		RedisConnection: strings.TrimSpace(v.GetString(KeyRedisConnection)),
		JWTSecret:       v.GetString(KeyJWTSecret),
		JWKSURL:         strings.TrimSpace(v.GetString(KeyJWKSURL)),
		JWTAudience:     v.GetString(KeyJWTAudience),
		JWTIssuer:       v.GetString(KeyJWTIssuer),
		Port:            strings.TrimSpace(v.GetString(KeyPort)),
		Debug:           v.GetBool(KeyDebug),
		NotifyChannel:   v.GetString(KeyNotifyChannel),
	}
	for _, o := range strings.Split(v.GetString(KeyAllowedOrigins), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{KeyJWKSCacheTTL, &cfg.JWKSCacheTTL},
		{KeyQueryCacheTTL, &cfg.QueryCacheTTL},
		{KeySessionTTL, &cfg.SessionTTL},
		{KeyPollInterval, &cfg.PollInterval},
		{KeyHTTPTimeout, &cfg.HTTPTimeout},
		{KeyShutdownTimeout, &cfg.ShutdownTimeout},
		{KeyIdempotencyTTL, &cfg.IdempotencyTTL},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(strings.TrimSpace(v.GetString(d.key)))
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("invalid %s: %q", d.key, v.GetString(d.key))
		}
		*d.dst = parsed
	}
	return cfg, nil
}

// ValidateServe checks the settings the HTTP server cannot start without.
func (c Config) ValidateServe() error {
	var errs []error
	if c.BackendBaseURL == "" {
		errs = append(errs, fmt.Errorf("missing %s", KeyBackendBaseURL))
	}
	if c.RedisConnection == "" {
		errs = append(errs, fmt.Errorf("missing %s", KeyRedisConnection))
	}
	if c.JWTSecret == "" && c.JWKSURL == "" {
		errs = append(errs, fmt.Errorf("missing %s or %s", KeyJWTSecret, KeyJWKSURL))
	}
	if c.Port == "" {
		errs = append(errs, fmt.Errorf("missing %s", KeyPort))
	}
	return errors.Join(errs...)
}

// ParseRedisOptions accepts either a redis:// URL or an Azure-style
// "host:port,password=...,ssl=true" connection string.
func ParseRedisOptions(conn string) (*redis.Options, error) {
	if conn == "" {
		return nil, fmt.Errorf("missing %s", KeyRedisConnection)
	}
	if opts, err := redis.ParseURL(conn); err == nil {
		return opts, nil
	}
	parts := strings.Split(conn, ",")
	opts := &redis.Options{Addr: strings.TrimSpace(parts[0])}
	if opts.Addr == "" || strings.Contains(opts.Addr, "=") {
		return nil, fmt.Errorf("invalid %s", KeyRedisConnection)
	}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(strings.TrimSpace(kv[1]), "true") {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts, nil
}
