package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/shopassist/backend/config"
	httpDelivery "github.com/shopassist/backend/internal/delivery/http"
	"github.com/shopassist/backend/internal/domain"
	"github.com/shopassist/backend/internal/infrastructure/assistant"
	"github.com/shopassist/backend/internal/infrastructure/cache"
	"github.com/shopassist/backend/internal/infrastructure/catalog"
	"github.com/shopassist/backend/internal/infrastructure/logging"
	"github.com/shopassist/backend/internal/usecase"
)

const configFileEnvName = "SHOPASSIST_CONFIG_FILE"

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

// configPath returns the --config flag, overridden by SHOPASSIST_CONFIG_FILE
func configPath() string {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	path := flags.String("config", "", "path to a config file (default: search for config.yaml)")
	_ = flags.Parse(os.Args[1:])

	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env
	}
	return *path
}

func run(ctx context.Context, cfg *config.Config) error {
	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("catalog_source", cfg.Catalog.Source).
		Str("cache", cfg.Cache.Type).
		Bool("assistant", cfg.Assistant.Enabled).
		Msg("starting ShopAssist backend")

	// Initialize infrastructure dependencies
	cacheRepo, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeQuietly("cache", cacheRepo)

	repo, err := newCatalogRepository(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := repo.(io.Closer); ok {
		defer closeQuietly("catalog", closer)
	}

	// Initialize usecase layer
	catalogService := usecase.NewCatalogService(repo, cacheRepo, usecase.CatalogServiceConfig{
		CacheTTL:        cfg.Cache.TTL,
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	})

	if products, err := catalogService.Snapshot(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog warm-up failed, will retry on first request")
	} else {
		log.Info().Int("products", len(products)).Msg("catalog loaded")
	}

	assistantService := usecase.NewAssistantService(
		newAssistantClient(cfg),
		catalogService,
		usecase.NewIntentClassifier(
			usecase.NewQueryPreprocessor(nil, cfg.IsDevelopment()),
			usecase.NewMatchingService(usecase.MatchConfig{EnableDebugLogging: cfg.IsDevelopment()}),
			nil,
		),
		usecase.AssistantServiceConfig{Timeout: cfg.Assistant.Timeout},
	)

	handler := httpDelivery.NewHandler(catalogService, assistantService, usecase.NewMockLLM(cfg.Assistant.MockLatency))
	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

type closableCache interface {
	domain.CacheRepository
	io.Closer
}

func newCache(ctx context.Context, cfg *config.Config) (closableCache, error) {
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:    cfg.Cache.RedisURL,
			Prefix: cfg.Cache.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("ttl", cfg.Cache.TTL.String()).Msg("using redis cache")
		return redisCache, nil
	}

	log.Info().Str("ttl", cfg.Cache.TTL.String()).Msg("using in-memory cache")
	return cache.NewMemoryCache(0), nil
}

func newCatalogRepository(ctx context.Context, cfg *config.Config) (domain.CatalogRepository, error) {
	switch cfg.Catalog.Source {
	case "file":
		return catalog.NewFileRepository(cfg.Catalog.Path), nil
	case "api":
		client := catalog.NewAPIClient(catalog.APIConfig{
			BaseURL:  cfg.Catalog.APIBaseURL,
			PageSize: cfg.Catalog.APIPageSize,
		})
		client.SetDebug(cfg.IsDevelopment())
		return client, nil
	case "postgres":
		return catalog.NewPostgresRepository(ctx, catalog.PostgresConfig{
			DSN:          cfg.Catalog.DatabaseURL,
			MaxOpenConns: cfg.Catalog.MaxConnections,
		})
	default:
		return catalog.NewSeedRepository(), nil
	}
}

// newAssistantClient returns nil when the remote assistant is disabled so
// every turn is answered by the local rules
func newAssistantClient(cfg *config.Config) domain.AssistantClient {
	if !cfg.Assistant.Enabled {
		log.Info().Msg("remote assistant disabled, answering with local rules")
		return nil
	}

	client := assistant.NewClient(assistant.Config{
		URL:             cfg.Assistant.BaseURL,
		Timeout:         cfg.Assistant.Timeout,
		RequestsPerHour: cfg.Assistant.RequestsPerHour,
	})
	client.SetDebug(cfg.IsDevelopment())

	log.Info().Str("url", redactURL(cfg.Assistant.BaseURL)).Msg("remote assistant configured")
	return client
}

// redactURL drops any query string, which may carry credentials
func redactURL(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}

func closeQuietly(name string, closer io.Closer) {
	if err := closer.Close(); err != nil {
		log.Warn().Err(err).Str("resource", name).Msg("close failed")
	}
}
