package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskboard/api"
	"taskboard/backend"
	"taskboard/config"
	"taskboard/notify"
	"taskboard/query"
	"taskboard/session"
	"taskboard/views"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newLogger(debug bool) *log.Logger {
	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func newAuthenticator(cfg config.Config, logger *log.Logger) (*api.Auth, func(), error) {
	if cfg.JWTSecret != "" {
		auth, err := api.NewAuth(api.AuthConfig{
			Secret:   cfg.JWTSecret,
			Audience: cfg.JWTAudience,
			Issuer:   cfg.JWTIssuer,
		})
		return auth, func() {}, err
	}
	jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
		RefreshInterval: cfg.JWKSCacheTTL,
		RefreshErrorHandler: func(err error) {
			logger.WithError(err).Warn("jwks refresh failed")
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("jwks: %w", err)
	}
	auth, err := api.NewAuth(api.AuthConfig{
		JWKS:        jwks,
		Audience:    cfg.JWTAudience,
		Issuer:      cfg.JWTIssuer,
		KeyCacheTTL: cfg.JWKSCacheTTL,
	})
	if err != nil {
		jwks.EndBackground()
		return nil, nil, err
	}
	return auth, jwks.EndBackground, nil
}

func runServe(parent context.Context) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	logger := newLogger(cfg.Debug)

	redisOpts, err := config.ParseRedisOptions(cfg.RedisConnection)
	if err != nil {
		return err
	}
	rc := redis.NewClient(redisOpts)
	defer rc.Close()

	auth, stopAuth, err := newAuthenticator(cfg, logger)
	if err != nil {
		return err
	}
	defer stopAuth()

	client := backend.New(cfg.BackendBaseURL, &http.Client{Timeout: cfg.HTTPTimeout}, logger)
	cache := query.NewCache(rc, cfg.QueryCacheTTL, query.DefaultGraph(), logger)
	svc := views.New(client, cache, session.NewRedisStore(rc, cfg.SessionTTL), logger)

	hub := notify.NewHub(cfg.PollInterval, logger)
	defer hub.Close()
	bridge := notify.NewBridge(hub, rc, cfg.NotifyChannel, logger)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go bridge.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentEncoding, api.HeaderIdempotencyKey},
	}))
	e.Use(api.GzipRequestMiddleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := api.Instrument(e, reg, hub); err != nil {
		return err
	}
	srv := api.Register(e, svc, auth, hub, bridge, logger)
	srv.UseDeduper(api.NewRedisDeduper(rc, cfg.IdempotencyTTL))

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Info("taskboard listening")
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	// Ends open unread streams so Shutdown does not wait on them.
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
