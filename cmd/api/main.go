package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/scoutlabs/retail-pulse/internal/api"
	"github.com/scoutlabs/retail-pulse/internal/cache"
	"github.com/scoutlabs/retail-pulse/internal/config"
	"github.com/scoutlabs/retail-pulse/internal/datalake"
	"github.com/scoutlabs/retail-pulse/internal/filters"
	"github.com/scoutlabs/retail-pulse/internal/insights"
	"github.com/scoutlabs/retail-pulse/internal/logger"
	"github.com/scoutlabs/retail-pulse/internal/remote"
	"github.com/scoutlabs/retail-pulse/internal/source"
	"github.com/scoutlabs/retail-pulse/internal/static"
)

func main() {
	// Initialize logger
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	// Primary tier: the Azure-hosted analytics API.
	primary := remote.NewClient(cfg.APIBaseURL,
		remote.WithMetadata(cfg.Platform, cfg.Version),
		remote.WithClientLogger(logger.Component(log, "remote")),
	)

	// Fallback tiers, in priority order.
	var fallbacks []source.Provider

	if cfg.UseDataLake {
		accessor, err := buildDataLake(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build data lake accessor")
		}
		fallbacks = append(fallbacks, accessor)
	} else {
		log.Warn().Msg("Data lake tier disabled")
	}

	if cfg.UseMockFallback {
		fallbacks = append(fallbacks, static.NewProvider())
	} else {
		log.Warn().Msg("Mock fallback tier disabled")
	}

	selector := source.NewSelector(primary, fallbacks,
		source.WithFailureThreshold(cfg.FailureThreshold),
		source.WithPlatformInfo(cfg.Platform, cfg.APIBaseURL),
		source.WithFeatures(map[string]bool{
			"dataLake":     cfg.UseDataLake,
			"mockFallback": cfg.UseMockFallback,
			"aiInsights":   true,
		}),
		source.WithMetrics(source.NewMetrics(prometheus.DefaultRegisterer)),
		source.WithLogger(logger.Component(log, "selector")),
	)

	router := api.NewRouter(selector, filters.NewStore(), logger.Component(log, "http"))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("api_url", cfg.APIBaseURL).Msg("Starting dashboard API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// buildDataLake assembles the blob-backed tier: fetcher, table cache,
// and the insight generator used when the remote AI endpoint is out of
// reach.
func buildDataLake(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*datalake.Accessor, error) {
	var fetcher datalake.BlobFetcher
	if cfg.GCSBucket != "" {
		gcs, err := datalake.NewGCSFetcher(ctx, cfg.GCSBucket, true)
		if err != nil {
			return nil, err
		}
		fetcher = gcs
		log.Info().Str("bucket", cfg.GCSBucket).Msg("Data lake backed by GCS")
	} else {
		fetcher = datalake.NewAzureFetcher(cfg.StorageAccount, cfg.Container, cfg.SASToken)
		log.Info().Str("account", cfg.StorageAccount).Str("container", cfg.Container).Msg("Data lake backed by Azure blob storage")
	}

	var gen datalake.InsightsGenerator
	if cfg.UseGemini {
		gen = insights.NewGenerator(cfg.GeminiModel)
	} else {
		gen = insights.NewRuleBased()
	}

	return datalake.NewAccessor(fetcher, cache.New(),
		datalake.WithTableTTL(cfg.TableTTL),
		datalake.WithInsights(gen),
		datalake.WithAccessorLogger(logger.Component(log, "datalake")),
	), nil
}
