// Package cache persists each store's raw fetch payloads so a run can be
// replayed offline, exercising normalization, matching, and history without
// touching the network.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gsaugg/compare/internal/config"
)

// Snapshot is the cached form of one store's crawl.
type Snapshot struct {
	StoreID   string            `json:"storeId"`
	StoreName string            `json:"storeName"`
	Platform  string            `json:"platform"`
	FetchedAt string            `json:"fetchedAt"`
	Products  []json.RawMessage `json:"products"`
}

// Dir is a per-store raw response cache rooted at one directory.
type Dir struct {
	root   string
	logger *slog.Logger
}

// NewDir builds a cache rooted at root; the directory is created on first save.
func NewDir(root string, logger *slog.Logger) *Dir {
	return &Dir{root: root, logger: logger}
}

// Save writes a store snapshot, replacing any previous one.
func (d *Dir) Save(store config.Store, products []json.RawMessage) error {
	snap := Snapshot{
		StoreID:   store.ID,
		StoreName: store.Name,
		Platform:  store.Platform,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		Products:  products,
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot for %s: %w", store.ID, err)
	}

	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(d.path(store), raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot for %s: %w", store.ID, err)
	}
	return nil
}

// Load returns the cached payloads for a store, or an error when no usable
// snapshot exists.
func (d *Dir) Load(store config.Store) ([]json.RawMessage, error) {
	raw, err := os.ReadFile(d.path(store))
	if err != nil {
		return nil, fmt.Errorf("read snapshot for %s: %w", store.ID, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot for %s: %w", store.ID, err)
	}
	if d.logger != nil {
		d.logger.Info("loaded cached snapshot", "store", store.Name, "fetched_at", snap.FetchedAt, "products", len(snap.Products))
	}
	return snap.Products, nil
}

func (d *Dir) path(store config.Store) string {
	return filepath.Join(d.root, sanitizeName(store.ID)+".json")
}

// sanitizeName keeps snapshot filenames safe regardless of what stores.json
// uses as ids.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "store"
	}
	return b.String()
}
