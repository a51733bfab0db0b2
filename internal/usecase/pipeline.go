// Package usecase orchestrates a full scrape run: fetch every store, build
// the item catalog, match across vendors, roll the price ledger forward, and
// project the frontend artifacts.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gsaugg/compare/internal/catalog"
	"github.com/gsaugg/compare/internal/config"
	"github.com/gsaugg/compare/internal/domain"
	"github.com/gsaugg/compare/internal/frontend"
	"github.com/gsaugg/compare/internal/history"
	"github.com/gsaugg/compare/internal/matching"
	"github.com/gsaugg/compare/internal/platform"
	"github.com/gsaugg/compare/internal/ports"
)

// maxDroppedListings caps how many filtered listings a store reports in
// detail; the count is always exact.
const maxDroppedListings = 50

// PipelineDeps wires all collaborators into the scrape pipeline.
type PipelineDeps struct {
	Config    config.Config
	Stores    []config.Store
	Registry  *platform.Registry
	Validator ports.Validator
	Cache     ports.SnapshotCache
	Archive   ports.RunArchive
	Matcher   *matching.Matcher
	Projector *frontend.Projector
	Logger    *slog.Logger
}

// Pipeline implements the scrape-match-track-project workflow.
type Pipeline struct {
	cfg       config.Config
	stores    []config.Store
	registry  *platform.Registry
	validator ports.Validator
	cache     ports.SnapshotCache
	archive   ports.RunArchive
	matcher   *matching.Matcher
	projector *frontend.Projector
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		cfg:       deps.Config,
		stores:    deps.Stores,
		registry:  deps.Registry,
		validator: deps.Validator,
		cache:     deps.Cache,
		archive:   deps.Archive,
		matcher:   deps.Matcher,
		projector: deps.Projector,
		logger:    deps.Logger,
	}
}

type storeResult struct {
	stats domain.StoreRunStats
	items []domain.Item
}

// Run executes one full scrape. With offline set, stores replay their cached
// snapshots instead of hitting the network.
func (p *Pipeline) Run(ctx context.Context, offline bool) error {
	start := time.Now()
	p.logger.Info("run started", "stores", len(p.stores), "offline", offline)

	results := p.processStores(ctx, offline)

	pool := catalog.NewStore()
	for _, res := range results {
		for _, item := range res.items {
			if err := pool.Add(item); err != nil {
				p.logger.Warn("rejected item", "error", err)
			}
		}
	}

	lastUpdated := time.Now().UTC().Format(time.RFC3339)
	groups, matchStats := p.matcher.Match(pool.Items())

	historyPath := filepath.Join(p.cfg.Paths.DataDir, "item-history.json")
	ledger := history.Load(historyPath, p.logger)
	trackStats := ledger.TrackItems(pool.Items())
	pruned := ledger.PruneOlderThan(p.cfg.History.RetentionDays)
	orphans := ledger.RemoveOrphans(pool.LiveIDs())
	if err := ledger.Save(historyPath); err != nil {
		return fmt.Errorf("save item history: %w", err)
	}
	p.logger.Info("history updated",
		"new", trackStats.New, "changed", trackStats.Changed, "unchanged", trackStats.Unchanged,
		"pruned_entries", pruned, "removed_orphans", orphans)

	storeNames := config.StoreNames(p.stores)
	productsFile, trendFile := p.projector.Project(
		pool.Items(), groups, ledger, lastUpdated, storeNames, len(p.stores))

	if err := p.writeArtifacts(pool, groups, productsFile, trendFile, lastUpdated); err != nil {
		return err
	}

	storeStats := make([]domain.StoreRunStats, 0, len(results))
	for _, res := range results {
		storeStats = append(storeStats, res.stats)
	}
	if err := p.writeStats(storeStats, pool.Len(), groups, trackStats, pruned, orphans, lastUpdated, start); err != nil {
		return err
	}

	p.archiveRun(ctx, storeStats, pool.Len(), groups, matchStats, offline, lastUpdated, start)

	p.logger.Info("run complete",
		"items", pool.Len(), "groups", len(groups), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// processStores crawls all stores with a bounded worker pool. Results come
// back indexed by store position so aggregation order is stable.
func (p *Pipeline) processStores(ctx context.Context, offline bool) []storeResult {
	results := make([]storeResult, len(p.stores))
	sem := make(chan struct{}, p.workers())
	var wg sync.WaitGroup

	for i, store := range p.stores {
		wg.Add(1)
		go func(i int, store config.Store) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = p.processStore(ctx, store, offline)
		}(i, store)
	}
	wg.Wait()

	return results
}

// processStore fetches (or replays) and normalizes one store. Errors are
// recorded in the stats, never propagated: a failing store must not sink the
// run, and a partial crawl still contributes items.
func (p *Pipeline) processStore(ctx context.Context, store config.Store, offline bool) storeResult {
	start := time.Now()
	stats := domain.StoreRunStats{
		StoreID:  store.ID,
		Name:     store.Name,
		URL:      store.URL,
		Platform: store.Platform,
	}
	logger := p.logger.With("store", store.Name)

	normalizer, err := p.registry.Normalizer(store.Platform)
	if err != nil {
		stats.Error = err.Error()
		stats.DurationMS = time.Since(start).Milliseconds()
		logger.Error("store skipped", "error", err)
		return storeResult{stats: stats}
	}

	var raw []json.RawMessage
	if offline {
		raw, err = p.cache.Load(store)
		if err != nil {
			stats.Error = err.Error()
			logger.Error("no cached snapshot", "error", err)
		}
	} else {
		var fetcher ports.Fetcher
		fetcher, err = p.registry.Fetcher(store.Platform)
		if err != nil {
			stats.Error = err.Error()
			stats.DurationMS = time.Since(start).Milliseconds()
			logger.Error("store skipped", "error", err)
			return storeResult{stats: stats}
		}

		raw, err = fetcher.Fetch(ctx, store)
		if err != nil {
			stats.Error = err.Error()
			logger.Error("fetch incomplete", "error", err, "products", len(raw))
		}
		if len(raw) > 0 && p.cache != nil {
			if err := p.cache.Save(store, raw); err != nil {
				logger.Warn("snapshot not cached", "error", err)
			}
		}
	}

	stats.Fetched = len(raw)
	var items []domain.Item
	for _, payload := range raw {
		normalized, err := normalizer.Normalize(store, payload)
		if err != nil {
			logger.Debug("payload skipped", "error", err)
			continue
		}
		for _, item := range normalized {
			if dropped := p.validator.Validate(item); dropped != nil {
				stats.Filtered++
				if len(stats.Dropped) < maxDroppedListings {
					stats.Dropped = append(stats.Dropped, *dropped)
				}
				continue
			}
			if item.InStock {
				stats.InStock++
			} else {
				stats.OutOfStock++
			}
			items = append(items, item)
		}
	}

	stats.Final = len(items)
	stats.DurationMS = time.Since(start).Milliseconds()
	logger.Info("store processed",
		"fetched", stats.Fetched, "filtered", stats.Filtered, "final", stats.Final,
		"duration", time.Since(start).Round(time.Millisecond))

	return storeResult{stats: stats, items: items}
}

func (p *Pipeline) writeArtifacts(pool *catalog.Store, groups []domain.MatchGroup, products domain.ProductsFile, trend domain.TrendFile, lastUpdated string) error {
	dataDir := p.cfg.Paths.DataDir

	if err := pool.Save(filepath.Join(dataDir, "items.json"), lastUpdated); err != nil {
		return fmt.Errorf("save items: %w", err)
	}
	matches := domain.MatchesFile{LastUpdated: lastUpdated, Matches: groups}
	if err := catalog.WriteJSON(filepath.Join(dataDir, "matches.json"), matches, true); err != nil {
		return fmt.Errorf("save matches: %w", err)
	}
	if err := catalog.WriteJSON(filepath.Join(dataDir, "products.json"), products, true); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	if err := catalog.WriteJSON(filepath.Join(dataDir, "tracker-data.json"), trend, false); err != nil {
		return fmt.Errorf("save tracker data: %w", err)
	}
	return nil
}

func (p *Pipeline) writeStats(stores []domain.StoreRunStats, itemCount int, groups []domain.MatchGroup, track history.TrackStats, pruned, orphans int, lastUpdated string, start time.Time) error {
	stats := struct {
		LastUpdated    string                 `json:"lastUpdated"`
		Stores         []domain.StoreRunStats `json:"stores"`
		Items          int                    `json:"items"`
		Matching       matching.GroupStats    `json:"matching"`
		Tracking       history.TrackStats     `json:"tracking"`
		PrunedEntries  int                    `json:"prunedEntries"`
		RemovedOrphans int                    `json:"removedOrphans"`
		DurationMS     int64                  `json:"durationMs"`
	}{
		LastUpdated:    lastUpdated,
		Stores:         stores,
		Items:          itemCount,
		Matching:       matching.Summarize(groups),
		Tracking:       track,
		PrunedEntries:  pruned,
		RemovedOrphans: orphans,
		DurationMS:     time.Since(start).Milliseconds(),
	}

	if err := catalog.WriteJSON(filepath.Join(p.cfg.Paths.DataDir, "stats.json"), stats, true); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

// archiveRun records the run in the SQLite archive. Best effort: archive
// failures are logged, the artifacts on disk are already complete.
func (p *Pipeline) archiveRun(ctx context.Context, stores []domain.StoreRunStats, itemCount int, groups []domain.MatchGroup, matchStats matching.Stats, offline bool, startedAt string, start time.Time) {
	if p.archive == nil {
		return
	}

	run := domain.RunSummary{
		StartedAt:    startedAt,
		DurationMS:   time.Since(start).Milliseconds(),
		StoreCount:   len(stores),
		ItemCount:    itemCount,
		GroupCount:   len(groups),
		SKUMatches:   matchStats.SKUMatches,
		TitleMatches: matchStats.FuzzyMatches,
		Offline:      offline,
		Stores:       stores,
	}
	if err := p.archive.SaveRun(ctx, run); err != nil {
		p.logger.Warn("run not archived", "error", err)
	}
}

func (p *Pipeline) workers() int {
	if p.cfg.Fetch.Workers > 0 {
		return p.cfg.Fetch.Workers
	}
	return 1
}
