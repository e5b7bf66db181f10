package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"pizzapos/internal/cache"
	"pizzapos/internal/config"
	"pizzapos/internal/httpapi"
	"pizzapos/internal/service"
	"pizzapos/internal/store"
	"pizzapos/internal/store/memory"
	pgstore "pizzapos/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	if err := configureLogging(logrus.StandardLogger(), cfg); err != nil {
		logrus.WithError(err).Fatal("invalid logging configuration")
	}
	if err := validateSecurityConfig(cfg); err != nil {
		logrus.WithError(err).Fatal("invalid security configuration")
	}
	loc, err := cfg.Location()
	if err != nil {
		logrus.WithError(err).WithField("tz_name", cfg.TZName).Fatal("unknown time zone")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL, pgstore.Options{MaxOpenConns: cfg.DBMaxOpenConns})
		if err != nil {
			logrus.WithError(err).Fatal("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback")
		}
		if cfg.MigrateOnStart {
			if err := pg.Migrate(); err != nil {
				logrus.WithError(err).Fatal("schema migration failed")
			}
			logrus.Info("schema migrations applied")
		}
		repo = pg
		closers = append(closers, pg.Close)
		logrus.Info("repository: postgres")
	} else {
		repo = memory.NewSeeded()
		logrus.Info("repository: in-memory")
	}

	dashboardCache := cache.DashboardCache(cache.NoopDashboardCache{})
	switch {
	case cfg.RedisAddr != "" && cfg.DashboardCacheTTL() <= 0:
		logrus.Info("cache: disabled by DASHBOARD_CACHE_TTL_SECONDS=0")
	case cfg.RedisAddr != "":
		redisCache := cache.NewRedisDashboardCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("redis unavailable, using noop cache")
			_ = redisCache.Close()
		} else {
			dashboardCache = redisCache
			closers = append(closers, redisCache.Close)
			logrus.Info("cache: redis")
		}
	default:
		logrus.Info("cache: noop")
	}

	svc := service.New(repo,
		service.WithLocation(loc),
		service.WithDashboardCache(dashboardCache, cfg.DashboardCacheTTL()),
		service.WithLogger(logrus.StandardLogger()),
	)

	var auth *httpapi.AuthManager
	if cfg.AuthSecret != "" {
		auth = httpapi.NewAuthManager(cfg.AuthSecret, cfg.AccessTokenTTL(), repo)
		if cfg.AdminPassword != "" {
			if err := auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
				logrus.WithError(err).Fatal("could not provision admin account")
			}
		}
		logrus.Info("auth: enabled")
	} else {
		logrus.Warn("auth: disabled, AUTH_SECRET is empty and every route is open")
	}

	api := httpapi.New(svc, auth, httpapi.Options{
		AllowedOrigin: cfg.AllowedOrigin,
		Development:   cfg.Development(),
		Logger:        logrus.StandardLogger(),
	})

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.Address()).Info("pizzapos listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("shutdown error")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logrus.WithError(err).Warn("close error")
		}
	}

	logrus.Info("server stopped")
}

func configureLogging(log *logrus.Logger, cfg config.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(cfg.LogFormat)) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return nil
}

// validateSecurityConfig only applies when authentication is enabled.
func validateSecurityConfig(cfg config.Config) error {
	if cfg.AuthSecret == "" {
		return nil
	}
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be at least 32 characters")
	}
	if cfg.AdminPassword != "" && len(cfg.AdminPassword) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
	}
	if cfg.AdminPassword != "" && strings.TrimSpace(cfg.AdminUsername) == "" {
		return fmt.Errorf("ADMIN_USERNAME must be set when ADMIN_PASSWORD is")
	}
	return nil
}
