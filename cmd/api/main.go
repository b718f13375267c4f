package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"
	"shareit/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := logging.Component(baseLogger, "api-main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, ready, closeStore, err := initStore(cfg, baseLogger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("init store")
		return err
	}
	defer closeStore()

	if err := startBackups(ctx, cfg, baseLogger); err != nil {
		return err
	}

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}
	window := initWindowLimiter(ctx, cfg, redisClient, baseLogger)

	bus := events.NewEventBus()
	subscribeEventLog(bus, logging.Component(baseLogger, "events"))
	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		metrics.Subscribe(bus)
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
	}

	serviceLogger := logging.Component(baseLogger, "service")
	services := api.Services{
		Bookings: service.NewBookingService(store, bus, serviceLogger),
		Items:    service.NewItemService(store, bus, serviceLogger),
		Users:    service.NewUserService(store, serviceLogger),
		Requests: service.NewRequestService(store, serviceLogger),
	}

	httpServer := api.NewHTTPServer(cfg.API, services, window, ready, logging.Component(baseLogger, "http"))
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Str("driver", cfg.Database.Driver).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func initStore(cfg *config.Config, logger *zerolog.Logger) (domain.Store, api.ReadinessCheck, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn().Msg("using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), nil, func() {}, nil
	}

	db, err := database.Open(cfg.Database, logging.Component(logger, "database"))
	if err != nil {
		return nil, nil, nil, err
	}
	return db, db.PingContext, func() { _ = db.Close() }, nil
}

// startBackups rejects an invalid schedule up front and runs the backup loop in
// the background until ctx is cancelled.
func startBackups(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	if !cfg.Backup.Enabled {
		return nil
	}
	if _, err := cron.ParseStandard(cfg.Backup.Schedule); err != nil {
		return fmt.Errorf("start backups: invalid schedule %q: %w", cfg.Backup.Schedule, err)
	}

	backupLogger := logging.Component(logger, "backup")
	backups := database.NewBackupService(cfg.Database.Path, cfg.Backup, backupLogger)
	go func() {
		if err := backups.Start(ctx); err != nil {
			backupLogger.Error().Err(err).Msg("backup service stopped")
		}
	}()
	return nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, window limits fall back to memory until it recovers")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return client
}

// initWindowLimiter returns nil when no window limit is configured.
func initWindowLimiter(ctx context.Context, cfg *config.Config, client *redis.Client, logger *zerolog.Logger) domain.RateLimiter {
	if cfg.API.RateLimit.WindowLimit <= 0 {
		return nil
	}

	memory := repository.NewMemoryRateLimiter()
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@every 1m", memory.Sweep); err == nil {
		sweeper.Start()
		go func() {
			<-ctx.Done()
			sweeper.Stop()
		}()
	}

	if client == nil {
		return memory
	}
	return repository.NewFailoverRateLimiter(repository.NewRedisRateLimiter(client), memory, logging.Component(logger, "rate-limit"))
}

func subscribeEventLog(bus *events.EventBus, logger *zerolog.Logger) {
	logEvent := func(e *events.Event) error {
		logger.Info().Str("type", e.Type).RawJSON("payload", e.Payload).Msg("domain event")
		return nil
	}
	for _, t := range []string{
		events.EventBookingCreated,
		events.EventBookingApproved,
		events.EventBookingRejected,
		events.EventCommentCreated,
	} {
		bus.Subscribe(t, logEvent)
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
