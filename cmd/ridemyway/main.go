package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ridemyway/ridemyway/api"
	"github.com/ridemyway/ridemyway/config"
	"github.com/ridemyway/ridemyway/health"
	"github.com/ridemyway/ridemyway/identity"
	"github.com/ridemyway/ridemyway/logger"
	"github.com/ridemyway/ridemyway/persistence"
	"github.com/ridemyway/ridemyway/ride"
	"github.com/ridemyway/ridemyway/sweeper"
	"github.com/ridemyway/ridemyway/telemetry"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	defer logger.Log.Sync()

	logger.Log.Info("Starting RideMyWay service",
		zap.Int("port", cfg.Port),
		zap.String("db_type", cfg.DBType),
		zap.String("environment", cfg.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repository
	open := persistence.NewStorage
	if cfg.SkipAutoMigrate {
		open = persistence.Open
	}
	repo, err := open(cfg.DBType, cfg.DSN, nil)
	if err != nil {
		logger.Log.Fatal("failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	// Telemetry
	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = version
	tcfg.Environment = cfg.Environment
	tcfg.OTLPEndpoint = cfg.OTLPEndpoint
	tcfg.Enabled = cfg.TelemetryEnabled
	tp, err := telemetry.NewProvider(tcfg)
	if err != nil {
		logger.Log.Fatal("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Log.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	// Health
	hm := health.NewManager(version, health.WithTimeout(cfg.DBTimeout))
	hm.Register(health.NewPingChecker("database", repo.Ping))

	// Identity
	idOpts := []identity.Option{
		identity.WithClientURL(cfg.ClientURL),
		identity.WithRecorder(tp),
	}
	if cfg.RedisURL != "" {
		rdb, err := identity.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		idOpts = append(idOpts, identity.WithRateLimiter(
			identity.NewRedisRateLimiter(rdb, "ridemyway:ratelimit:"),
			identity.DefaultLoginLimit, identity.DefaultLoginWindow,
		))
		hm.Register(health.NewPingChecker("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
	}
	tokens := identity.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	idp := identity.NewProvider(repo, identity.NewBcryptHasher(cfg.BcryptCost), tokens, idOpts...)

	rides := ride.NewService(repo, ride.WithRecorder(tp))

	// Expiry sweeper
	cleanupLog, closeCleanupLog, err := sweeper.NewCleanupLog(cfg.CleanupLog)
	if err != nil {
		logger.Log.Fatal("failed to open cleanup log", zap.Error(err), zap.String("path", cfg.CleanupLog))
	}
	defer closeCleanupLog()

	sw := sweeper.New(repo,
		sweeper.WithInterval(cfg.SweepInterval),
		sweeper.WithGrace(cfg.SweepGrace),
		sweeper.WithAuditLog(cleanupLog),
		sweeper.WithRecorder(tp),
	)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sw.Start(ctx)
	}()

	// Setup Echo
	e := echo.New()
	e.HideBanner = true

	allowed, err := originMatcher(cfg.ClientURL, cfg.ClientURLRegex)
	if err != nil {
		logger.Log.Fatal("invalid CLIENT_URL_REGEX", zap.Error(err))
	}

	// Middleware
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc:  allowed,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Routes
	e.GET("/healthz", echo.WrapHandler(hm.LiveHandler()))
	e.GET("/ready", echo.WrapHandler(hm.ReadyHandler()))
	e.GET("/health", echo.WrapHandler(hm.FullHandler()))
	e.GET("/metrics", echo.WrapHandler(tp.Handler()))

	g := e.Group("/api", middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: cfg.DBTimeout,
	}))
	h := api.NewHandler(rides, idp, api.WithSecureCookies(cfg.Environment == "production"))
	h.RegisterRoutes(g)

	go func() {
		logger.Log.Info("Server is starting", zap.Int("port", cfg.Port))
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server shutdown failed", zap.Error(err))
	}
	<-sweepDone
}

// originMatcher allows the configured client URL, anything matching
// pattern, and the local Vite dev server.
func originMatcher(clientURL, pattern string) (func(string) (bool, error), error) {
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		if re, err = regexp.Compile(pattern); err != nil {
			return nil, err
		}
	}
	return func(origin string) (bool, error) {
		switch {
		case origin == "":
			return true, nil
		case origin == clientURL, origin == "http://localhost:5173":
			return true, nil
		case re != nil && re.MatchString(origin):
			return true, nil
		}
		return false, nil
	}, nil
}
