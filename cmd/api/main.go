package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"headlinewall/internal/adapter/repo"
	"headlinewall/internal/http/handlers"
	"headlinewall/internal/http/httpapi"
	"headlinewall/internal/infra"
	"headlinewall/internal/infra/geoip"
	"headlinewall/internal/middleware"
	"headlinewall/internal/providers/replicate"
	"headlinewall/internal/providers/runway"
	"headlinewall/internal/relay"
	"headlinewall/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	headlines := repo.NewHeadlineRepository(pool)
	if err := headlines.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure database schema")
	}

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	replicateClient, err := replicate.NewClient(replicate.Options{
		APIToken: cfg.ReplicateAPIToken,
		BaseURL:  cfg.ReplicateBaseURL,
		Wait:     true,
		Logger:   &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure replicate client")
	}
	runwayClient, err := runway.NewClient(runway.Options{
		APISecret: cfg.RunwayAPISecret,
		BaseURL:   cfg.RunwayBaseURL,
		Version:   cfg.RunwayVersion,
		Model:     cfg.RunwayModel,
		Logger:    &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure runway client")
	}

	app := &handlers.App{
		Config:    cfg,
		Logger:    logger,
		Replicate: replicateClient,
		Runway:    runwayClient,
		Relay:     relay.NewFetcher(relay.Options{}),
		Headlines: headlines,
		Store:     fileStore,
	}

	router := httpapi.NewRouter(app, cfg, logger, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if resolver != nil {
		if closer, ok := resolver.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}
	logger.Info().Msg("server stopped")
}
