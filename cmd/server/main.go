package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/infrastructure/bootstrap"
	"github.com/complyance/governance/infrastructure/config"
	"github.com/complyance/governance/infrastructure/http/handler"
	"github.com/complyance/governance/infrastructure/http/middleware"
	"github.com/complyance/governance/infrastructure/http/server"
	"github.com/complyance/governance/infrastructure/http/sse"
	"github.com/complyance/governance/infrastructure/service/jwt"
	"github.com/complyance/governance/infrastructure/service/logger"
	"github.com/complyance/governance/infrastructure/service/metrics"
	"github.com/complyance/governance/infrastructure/service/ratelimit"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "governance-service",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env":          cfg.Environment,
		"storage":      cfg.StorageDriver,
		"grace_period": cfg.GracePeriod.String(),
	})

	storage, err := bootstrap.OpenStorage(ctx, cfg, structuredLogger)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to open storage", err, map[string]interface{}{
			"driver": cfg.StorageDriver,
		})
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer storage.Close()

	// Metrics
	var (
		registry  *prometheus.Registry
		collector *metrics.Collector
		lifecycle outbound.LifecycleMetrics = outbound.NoopLifecycleMetrics{}
		observer  middleware.RequestObserver
	)
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector()
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collector,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		lifecycle = collector
		observer = collector
	}

	streamer := sse.NewStreamer(structuredLogger, sse.DefaultHeartbeat)

	useCases := bootstrap.NewUseCases(storage, bootstrap.Options{
		GracePeriod: cfg.GracePeriod,
		Clock:       clock.WallClock,
		Metrics:     lifecycle,
		Events:      streamer,
		Logger:      structuredLogger,
	})

	// Initialize rate limiting service (Redis-backed or noop based on config)
	rlLogger := logrus.New()
	rlLogger.SetFormatter(&logrus.JSONFormatter{})
	rateLimitService, err := ratelimit.NewRateLimitService(ratelimit.RateLimitConfig{
		Enabled:           cfg.RateLimitEnabled,
		RedisURL:          cfg.RedisURL,
		IPAttempts:        cfg.RateLimitIPAttempts,
		IPWindow:          cfg.RateLimitIPWindow,
		LifecycleAttempts: cfg.RateLimitLifecycleAttempts,
		LifecycleWindow:   cfg.RateLimitLifecycleWindow,
		BlockDuration:     cfg.RateLimitBlockDuration,
	}, rlLogger)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize rate limit service, continuing without limits", err, map[string]interface{}{
			"redis_url": cfg.RedisURL,
		})
		rateLimitService = ratelimit.NoopRateLimitService{}
	}
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(rateLimitService, middleware.RateLimitPolicy{
		GeneralLimit:    cfg.RateLimitIPAttempts,
		GeneralWindow:   cfg.RateLimitIPWindow,
		LifecycleLimit:  cfg.RateLimitLifecycleAttempts,
		LifecycleWindow: cfg.RateLimitLifecycleWindow,
		BlockDuration:   cfg.RateLimitBlockDuration,
	}, structuredLogger)

	// Bearer tokens only identify actors when a secret is configured
	var tokenService outbound.TokenService
	if cfg.JWTSecret != "" {
		tokenService, err = jwt.NewJWTService(cfg.JWTSecret, cfg.JWTAccessTokenTTL, clock.WallClock)
		if err != nil {
			log.Fatalf("Failed to initialize JWT service: %v", err)
		}
	}

	srv := server.NewServer(server.ServerConfig{
		Addr:           cfg.Addr(),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		CORSEnabled:    cfg.CORSEnabled && len(cfg.CORSAllowedOrigins) > 0,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowCreds:     cfg.CORSAllowCredentials,
	}, server.Dependencies{
		Users:       handler.NewUserHandler(useCases.Users),
		Posts:       handler.NewPostHandler(useCases.Posts),
		Preferences: handler.NewPreferenceHandler(useCases.Preferences),
		System:      handler.NewSystemHandler(useCases.System),
		Actor:       middleware.NewActorMiddleware(tokenService),
		RateLimit:   rateLimitMiddleware,
		Events:      streamer,
		Metrics:     observer,
		Registry:    registry,
		Logger:      structuredLogger,
	})

	go func() {
		if err := srv.Start(); err != nil {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{
				"addr": cfg.Addr(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}
