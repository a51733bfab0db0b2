// Package app assembles the application from configuration: platform
// strategies, cache, archive, matcher, projector, and the pipeline.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gsaugg/compare/internal/config"
	"github.com/gsaugg/compare/internal/domain"
	"github.com/gsaugg/compare/internal/frontend"
	"github.com/gsaugg/compare/internal/infrastructure/cache"
	"github.com/gsaugg/compare/internal/infrastructure/fetch"
	"github.com/gsaugg/compare/internal/infrastructure/normalize"
	"github.com/gsaugg/compare/internal/infrastructure/storage"
	"github.com/gsaugg/compare/internal/logging"
	"github.com/gsaugg/compare/internal/matching"
	"github.com/gsaugg/compare/internal/platform"
	"github.com/gsaugg/compare/internal/ports"
	"github.com/gsaugg/compare/internal/usecase"
)

// Application wires configs to use cases.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	archive  ports.RunArchive
	logger   *slog.Logger
}

// New builds a runnable application instance. The run archive is optional:
// if it cannot be opened the run proceeds without it.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	stores, err := config.LoadStores(cfg.Paths.StoresFile)
	if err != nil {
		return nil, fmt.Errorf("load stores: %w", err)
	}
	if len(stores) == 0 {
		return nil, fmt.Errorf("no enabled stores in %s", cfg.Paths.StoresFile)
	}

	registry := platform.NewRegistry()
	registry.RegisterFetcher(fetch.NewShopify(cfg.Fetch, baseLogger.With("component", "fetch.shopify")))
	registry.RegisterFetcher(fetch.NewWooCommerce(cfg.Fetch, baseLogger.With("component", "fetch.woocommerce")))
	registry.RegisterFetcher(fetch.NewSquarespace(cfg.Fetch, baseLogger.With("component", "fetch.squarespace")))
	registry.RegisterNormalizer(normalize.NewShopify(cfg.Quality, baseLogger.With("component", "normalize.shopify")))
	registry.RegisterNormalizer(normalize.NewWooCommerce(cfg.Quality, baseLogger.With("component", "normalize.woocommerce")))
	registry.RegisterNormalizer(normalize.NewSquarespace(cfg.Quality, baseLogger.With("component", "normalize.squarespace")))

	var archive ports.RunArchive
	if cfg.Paths.RunArchive != "" {
		sqlArchive, err := storage.OpenSQLiteArchive(cfg.Paths.RunArchive)
		if err != nil {
			baseLogger.Warn("run archive unavailable", "error", err)
		} else {
			archive = sqlArchive
		}
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Config:    cfg,
		Stores:    stores,
		Registry:  registry,
		Validator: normalize.NewKeywordValidator(cfg.Quality),
		Cache:     cache.NewDir(cfg.Paths.CacheDir, baseLogger.With("component", "cache")),
		Archive:   archive,
		Matcher:   matching.New(cfg.Quality.FuzzyThreshold, baseLogger.With("component", "matcher")),
		Projector: frontend.New(cfg.Quality.MaxTags, cfg.History.LowestStaleDays, baseLogger.With("component", "projector")),
		Logger:    baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, archive: archive, logger: baseLogger}, nil
}

// Run performs a single scrape run.
func (a *Application) Run(ctx context.Context, offline bool) error {
	return a.pipeline.Run(ctx, offline)
}

// RecentRuns reads the newest entries from the run archive.
func (a *Application) RecentRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if a.archive == nil {
		return nil, fmt.Errorf("run archive is not configured")
	}
	return a.archive.RecentRuns(ctx, limit)
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.archive != nil {
		return a.archive.Close()
	}
	return nil
}
