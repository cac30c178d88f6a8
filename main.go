package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/socialscraper/config"
	"sjsage522/socialscraper/internal/crawler"
	"sjsage522/socialscraper/internal/orchestrator"
	"sjsage522/socialscraper/internal/provider"
	"sjsage522/socialscraper/internal/record"
	"sjsage522/socialscraper/internal/server"
	"sjsage522/socialscraper/logger"
	"sjsage522/socialscraper/services/cache"
	"sjsage522/socialscraper/services/collector"
	"sjsage522/socialscraper/services/publisher"
	"sjsage522/socialscraper/services/store"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.ProviderAPIKey == "" {
		log.Warn().Msg("BRIGHTDATA_API_KEY is not set, TikTok collection will fail")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("store_backend", cfg.StoreBackend).
		Dur("poll_interval", cfg.PollInterval).
		Int("poll_max_attempts", cfg.PollMaxAttempts).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	jobs := orchestrator.NewOrchestrator(
		provider.NewBrightData(cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.ProviderDatasetID),
		record.PlatformTikTok,
		orchestrator.WithInterval(cfg.PollInterval),
		orchestrator.WithMaxAttempts(cfg.PollMaxAttempts),
	)
	pages := crawler.NewMetaCrawler(record.PlatformYouTube, services.Cache, cfg.PageCacheTTL, cfg.PageBlockTime)
	coll := collector.NewCollector(jobs, pages, services.Store, services.Publisher)

	srv := server.New(coll, services.Store,
		server.WithRateLimiter(server.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)),
	)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	serverDone := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("Starting HTTP server")
		serverDone <- httpServer.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server exited with error")
		}
	}

	// Graceful shutdown; in-flight collections are canceled with ctx
	log.Info().Msg("Shutting down gracefully...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Store     *store.Store
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Store != nil {
		s.Store.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg config.Config) (*Services, error) {
	services := &Services{}

	// Page cache is optional
	if cfg.MemcacheAddr != "" {
		cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := cacheService.Ping(); err != nil {
			logger.Warn("Memcache at %s unreachable, page cache disabled: %v", cfg.MemcacheAddr, err)
		} else {
			services.Cache = cacheService
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	persister, err := newPersister(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, persister, store.WithCapacity(cfg.StoreCapacity))
	if err != nil {
		persister.Close()
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	services.Store = st
	logger.Info("Record store opened (backend: %s, records: %d)", cfg.StoreBackend, st.Len())

	// Record events are optional
	services.Publisher = publisher.Nop{}
	if cfg.RedisStream != "" {
		redisPublisher := publisher.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
		if err := redisPublisher.Ping(ctx); err != nil {
			redisPublisher.Close()
			logger.Warn("Redis at %s unreachable, record events disabled: %v", cfg.RedisAddr, err)
		} else {
			services.Publisher = redisPublisher
			logger.Info("Publishing records to Redis at %s (DB: %d, Stream: %s)",
				cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	return services, nil
}

// newPersister builds the durable backend selected by STORE_BACKEND
func newPersister(ctx context.Context, cfg config.Config) (store.Persister, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		p := store.NewRedisPersister(cfg.RedisAddr, cfg.RedisDB, cfg.RedisKey)
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return p, nil
	case config.BackendPostgres:
		p, err := store.NewPostgresPersister(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.BackendSQLite:
		p, err := store.NewSQLitePersister(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		p, err := store.NewFilePersister(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
