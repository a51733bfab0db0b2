// Package history maintains the persisted per-item price ledger: an
// append-only diff log of price/stock observations keyed by item id.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gsaugg/compare/internal/domain"
)

// priceEpsilon is the smallest movement that counts as a change after
// rounding to cents.
const priceEpsilon = 0.01

var timeNow = time.Now

// Ledger is the in-memory form of item-history.json. It survives across runs;
// items and match groups do not.
type Ledger struct {
	LastUpdated *string                          `json:"lastUpdated"`
	History     map[string][]domain.HistoryEntry `json:"history"`
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{History: map[string][]domain.HistoryEntry{}}
}

// Load reconstructs the ledger from disk. A missing or corrupt file is a
// recoverable condition: it logs and starts fresh, never failing the run.
func Load(path string, logger *slog.Logger) *Ledger {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) && logger != nil {
			logger.Warn("error loading item history, starting fresh", "error", err)
		}
		return NewLedger()
	}

	var ledger Ledger
	if err := json.Unmarshal(raw, &ledger); err != nil {
		if logger != nil {
			logger.Warn("error parsing item history, starting fresh", "error", err)
		}
		return NewLedger()
	}
	if ledger.History == nil {
		ledger.History = map[string][]domain.HistoryEntry{}
	}

	if logger != nil {
		logger.Info("loaded item history", "items", len(ledger.History))
	}
	return &ledger
}

// LastPrice returns the most recent recorded price for an item.
func (l *Ledger) LastPrice(itemID string) (float64, bool) {
	entries := l.History[itemID]
	if len(entries) == 0 {
		return 0, false
	}
	return entries[len(entries)-1].Price, true
}

// RecordObservation appends a new entry when this is the item's first
// observation or when price or regular price moved by at least a cent
// (regular price also changes when it appears or disappears). The stock flag
// is stamped onto appended entries but never triggers one by itself. Returns
// whether an entry was written.
func (l *Ledger) RecordObservation(itemID string, price float64, regularPrice *float64, inStock bool) bool {
	if l.History == nil {
		l.History = map[string][]domain.HistoryEntry{}
	}

	price = round2(price)
	var rp *float64
	if regularPrice != nil && *regularPrice > 0 {
		v := round2(*regularPrice)
		rp = &v
	}

	entries := l.History[itemID]
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		priceChanged := math.Abs(price-last.Price) >= priceEpsilon
		rpChanged := (rp == nil) != (last.RegularPrice == nil) ||
			(rp != nil && last.RegularPrice != nil && math.Abs(*rp-*last.RegularPrice) >= priceEpsilon)
		if !priceChanged && !rpChanged {
			return false
		}
	}

	stock := inStock
	entry := domain.HistoryEntry{
		Unix:         timeNow().Unix(),
		Price:        price,
		RegularPrice: rp,
		InStock:      &stock,
	}
	l.History[itemID] = append(entries, entry)
	return true
}

// PruneOlderThan drops entries older than the retention window and deletes
// items whose series become empty. Returns the number of entries removed.
func (l *Ledger) PruneOlderThan(retentionDays int) int {
	cutoff := timeNow().Unix() - int64(retentionDays)*86400
	removed := 0

	for itemID, entries := range l.History {
		kept := entries[:0]
		for _, e := range entries {
			if e.Unix >= cutoff {
				kept = append(kept, e)
			}
		}
		removed += len(entries) - len(kept)
		if len(kept) == 0 {
			delete(l.History, itemID)
			continue
		}
		l.History[itemID] = kept
	}

	return removed
}

// RemoveOrphans deletes every tracked item not present in the live set,
// handling vendor delistings. Returns the number of items removed.
func (l *Ledger) RemoveOrphans(liveItemIDs map[string]struct{}) int {
	removed := 0
	for itemID := range l.History {
		if _, live := liveItemIDs[itemID]; !live {
			delete(l.History, itemID)
			removed++
		}
	}
	return removed
}

// Save persists the ledger with a refreshed lastUpdated stamp.
func (l *Ledger) Save(path string) error {
	stamp := timeNow().UTC().Format(time.RFC3339)
	l.LastUpdated = &stamp

	raw, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal item history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write item history: %w", err)
	}
	return nil
}

// TrackStats counts ledger activity over one run.
type TrackStats struct {
	New       int `json:"new"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
}

// TrackItems records an observation for every item with a positive price.
func (l *Ledger) TrackItems(items map[string]domain.Item) TrackStats {
	var stats TrackStats
	for id, item := range items {
		if item.Price <= 0 {
			continue
		}
		_, seen := l.LastPrice(id)
		switch {
		case !seen:
			l.RecordObservation(id, item.Price, item.RegularPrice, item.InStock)
			stats.New++
		case l.RecordObservation(id, item.Price, item.RegularPrice, item.InStock):
			stats.Changed++
		default:
			stats.Unchanged++
		}
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
