package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"bstn/internal/api"
	"bstn/internal/catalog"
	"bstn/internal/config"
	"bstn/internal/database"
	"bstn/internal/domain"
	"bstn/internal/events"
	"bstn/internal/export"
	"bstn/internal/google"
	"bstn/internal/logging"
	"bstn/internal/metrics"
	"bstn/internal/repository"
	"bstn/internal/service"
	"bstn/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	cache := initCache(redisClient, &logger)

	if err := seedCatalog(ctx, cfg, db, cache, &logger); err != nil {
		return err
	}

	eventBus := events.NewEventBus(&logger)
	eventBus.Subscribe(events.AllEvents, func(e *events.Event) error {
		metrics.IncBookingEvent(e.Type)
		return nil
	})

	var syncWorker domain.SyncWorker
	if sheetsWorker := initLedger(ctx, cfg, db, redisClient, &logger); sheetsWorker != nil {
		go sheetsWorker.Start(ctx)
		syncWorker = sheetsWorker
	}

	bookingService := service.NewBookingService(db, eventBus, syncWorker, &logger,
		service.WithLocation(cfg.App.Location()),
		service.WithCache(cache, cfg.Booking.RateLimit, cfg.Booking.RateLimitWindow),
	)
	services := api.Services{
		Bookings:     bookingService,
		Availability: service.NewAvailabilityService(db, cache, cfg.Booking.SearchCacheTTL, &logger),
		Listings:     service.NewListingService(db, cache, &logger),
		Providers:    db,
		Exporter:     export.NewExporter(cfg.Exports.Path, &logger),
		Store:        db,
	}

	go worker.NewSweeper(bookingService, cfg.Booking.SweepInterval, &logger).Start(ctx)

	if cfg.Database.Backup.Enabled {
		backupService := database.NewBackupService(db, cfg.Database.Backup, &logger)
		go backupService.Start(ctx)
	}

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(&cfg.API, services, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	httpServer := api.NewHTTPServer(&cfg.API, services, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, grpcServer, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// seedCatalog applies the catalog seed file, if any. The search cache may
// outlive the process, so it is invalidated after the seed.
func seedCatalog(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	cache domain.CacheRepository,
	logger *zerolog.Logger,
) error {
	path := cfg.Catalog.SeedFile
	if env := os.Getenv("CATALOG_PATH"); env != "" {
		path = env
	}
	if path == "" {
		return nil
	}

	c, err := catalog.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn().Str("catalog_path", path).Msg("catalog seed file not found, skipping")
		return nil
	}
	if err != nil {
		logger.Error().Err(err).Str("catalog_path", path).Msg("load catalog")
		return err
	}
	if _, err := c.Apply(ctx, db, logger); err != nil {
		logger.Error().Err(err).Str("catalog_path", path).Msg("apply catalog")
		return err
	}
	if err := cache.BumpGeneration(ctx); err != nil {
		logger.Warn().Err(err).Msg("search cache invalidation after seed failed")
	}
	return nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := redisClient.Ping(pingCtx).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initCache prefers Redis and falls back to process memory when Redis is
// missing or fails.
func initCache(redisClient *redis.Client, logger *zerolog.Logger) domain.CacheRepository {
	fallback := repository.NewMemoryCacheRepository()
	if redisClient == nil {
		return fallback
	}
	primary := repository.NewRedisCacheRepository(redisClient)
	return repository.NewFailoverCacheRepository(primary, fallback, logger)
}

func initLedger(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	redisClient *redis.Client,
	logger *zerolog.Logger,
) *worker.SheetsWorker {
	if !cfg.Google.Enabled() {
		return nil
	}

	ledger, err := google.NewSheetsLedger(ctx, cfg.Google.CredentialsFile, cfg.Google.BookingsSpreadsheetID,
		cfg.Google.BookingsSheet, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without ledger sync")
		return nil
	}
	if err := ledger.TestConnection(ctx); err != nil {
		email, _ := google.ServiceAccountEmail(cfg.Google.CredentialsFile)
		logger.Warn().Err(err).Str("share_with", email).Msg("google sheets not reachable, continuing without ledger sync")
		return nil
	}
	if err := ledger.EnsureHeader(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to write ledger header")
	}

	if resync, _ := strconv.ParseBool(os.Getenv("LEDGER_RESYNC")); resync {
		bookings, err := db.ListBookings(ctx)
		if err == nil {
			err = ledger.ReplaceBookings(ctx, bookings)
		}
		if err != nil {
			logger.Error().Err(err).Msg("ledger resync failed")
		} else {
			logger.Info().Int("bookings", len(bookings)).Msg("ledger resynced")
		}
	}
	go ledger.StartCacheRefresh(ctx, 0)

	logger.Info().Msg("google sheets connected")
	return worker.NewSheetsWorker(db, ledger, redisClient, worker.DefaultRetryPolicy(), logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Bool("grpc", grpcServer != nil).Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
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
