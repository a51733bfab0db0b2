package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gsaugg/compare/internal/config"
	"github.com/gsaugg/compare/internal/domain"
	"github.com/gsaugg/compare/internal/frontend"
	"github.com/gsaugg/compare/internal/infrastructure/normalize"
	"github.com/gsaugg/compare/internal/matching"
	"github.com/gsaugg/compare/internal/platform"
)

type stubCache struct {
	snapshots map[string][]json.RawMessage
}

func (c stubCache) Save(config.Store, []json.RawMessage) error { return nil }

func (c stubCache) Load(store config.Store) ([]json.RawMessage, error) {
	raw, ok := c.snapshots[store.ID]
	if !ok {
		return nil, fmt.Errorf("no snapshot for %s", store.ID)
	}
	return raw, nil
}

func shopifyPayload(id int, price string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"id": %d,
		"title": "Widget X Gel Blaster",
		"handle": "widget-x",
		"product_type": "Gel Blaster",
		"variants": [{"id": %d, "title": "Default Title", "sku": "WX-100", "price": %q, "available": true}]
	}`, id, id*10, price))
}

func TestPipelineOfflineRun(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dataDir := filepath.Join(t.TempDir(), "data")

	cfg := config.Config{
		Paths: config.PathsConfig{DataDir: dataDir},
		Fetch: config.FetchConfig{
			RequestDelay:   time.Millisecond,
			ShopifyDelay:   time.Millisecond,
			RequestTimeout: time.Second,
			MaxPages:       5,
			Workers:        2,
		},
		Quality: config.QualityConfig{MinPrice: 0.50, FuzzyThreshold: 90, MaxTags: 10},
		History: config.HistoryConfig{RetentionDays: 30},
	}
	stores := []config.Store{
		{ID: "s1", Name: "Store One", URL: "https://one.example", Platform: "shopify"},
		{ID: "s2", Name: "Store Two", URL: "https://two.example", Platform: "shopify"},
	}

	registry := platform.NewRegistry()
	registry.RegisterNormalizer(normalize.NewShopify(cfg.Quality, logger))

	pipeline := NewPipeline(PipelineDeps{
		Config:    cfg,
		Stores:    stores,
		Registry:  registry,
		Validator: normalize.NewKeywordValidator(cfg.Quality),
		Cache: stubCache{snapshots: map[string][]json.RawMessage{
			"s1": {shopifyPayload(1, "49.95")},
			"s2": {shopifyPayload(2, "44.95")},
		}},
		Matcher:   matching.New(cfg.Quality.FuzzyThreshold, logger),
		Projector: frontend.New(cfg.Quality.MaxTags, cfg.History.LowestStaleDays, logger),
		Logger:    logger,
	})

	if err := pipeline.Run(context.Background(), true); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	for _, name := range []string{
		"items.json", "matches.json", "item-history.json",
		"products.json", "tracker-data.json", "stats.json",
	} {
		if _, err := os.Stat(filepath.Join(dataDir, name)); err != nil {
			t.Fatalf("artifact %s missing: %v", name, err)
		}
	}

	var items domain.ItemsFile
	mustReadJSON(t, filepath.Join(dataDir, "items.json"), &items)
	if len(items.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items.Items))
	}

	var matches domain.MatchesFile
	mustReadJSON(t, filepath.Join(dataDir, "matches.json"), &matches)
	if len(matches.Matches) != 1 || matches.Matches[0].ID != "sku-WX-100" {
		t.Fatalf("unexpected match groups: %+v", matches.Matches)
	}

	var products domain.ProductsFile
	mustReadJSON(t, filepath.Join(dataDir, "products.json"), &products)
	if products.ProductCount != 1 || products.StoreCount != 2 {
		t.Fatalf("unexpected product counts: %+v", products)
	}
	prod := products.Products[0]
	if prod.LowestPrice != 44.95 {
		t.Fatalf("lowestPrice = %v, want 44.95", prod.LowestPrice)
	}
	if len(prod.Vendors) != 2 || prod.Vendors[0].Name != "Store Two" {
		t.Fatalf("unexpected vendors: %+v", prod.Vendors)
	}

	var trend domain.TrendFile
	mustReadJSON(t, filepath.Join(dataDir, "tracker-data.json"), &trend)
	gt, ok := trend.History["sku-WX-100"]
	if !ok {
		t.Fatalf("trend data missing for match group")
	}
	if len(gt.Vendors["Store One"]) != 1 || len(gt.Lowest) == 0 {
		t.Fatalf("unexpected trend series: %+v", gt)
	}
}

func TestPipelineOfflineRunIsIdempotentForHistory(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dataDir := filepath.Join(t.TempDir(), "data")

	cfg := config.Config{
		Paths:   config.PathsConfig{DataDir: dataDir},
		Fetch:   config.FetchConfig{Workers: 1},
		Quality: config.QualityConfig{MinPrice: 0.50, FuzzyThreshold: 90, MaxTags: 10},
		History: config.HistoryConfig{RetentionDays: 30},
	}
	stores := []config.Store{{ID: "s1", Name: "Store One", URL: "https://one.example", Platform: "shopify"}}

	registry := platform.NewRegistry()
	registry.RegisterNormalizer(normalize.NewShopify(cfg.Quality, logger))

	pipeline := NewPipeline(PipelineDeps{
		Config:    cfg,
		Stores:    stores,
		Registry:  registry,
		Validator: normalize.NewKeywordValidator(cfg.Quality),
		Cache: stubCache{snapshots: map[string][]json.RawMessage{
			"s1": {shopifyPayload(1, "49.95")},
		}},
		Matcher:   matching.New(cfg.Quality.FuzzyThreshold, logger),
		Projector: frontend.New(cfg.Quality.MaxTags, 0, logger),
		Logger:    logger,
	})

	ctx := context.Background()
	if err := pipeline.Run(ctx, true); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := pipeline.Run(ctx, true); err != nil {
		t.Fatalf("second run: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dataDir, "item-history.json"))
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	var ledger struct {
		History map[string][]domain.HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(raw, &ledger); err != nil {
		t.Fatalf("parse history: %v", err)
	}
	entries := ledger.History["s1|1|10"]
	if len(entries) != 1 {
		t.Fatalf("unchanged price must not append entries, got %d", len(entries))
	}
}

func mustReadJSON(t *testing.T, path string, v any) {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
}
