// Package catalog holds the current run's universe of items as id -> Item.
// It is rebuilt from scratch every run and read-only once handed to the
// matcher and ledger.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gsaugg/compare/internal/domain"
	"github.com/gsaugg/compare/internal/matching"
)

// Store is the flat pool of store-specific variants for one run.
type Store struct {
	items map[string]domain.Item
}

// NewStore returns an empty item store.
func NewStore() *Store {
	return &Store{items: map[string]domain.Item{}}
}

// Add inserts an item. Items with an empty id or non-positive price are
// rejected; duplicates by id overwrite, which never happens when vendor
// identifiers are stable.
func (s *Store) Add(item domain.Item) error {
	if item.ID == "" {
		return fmt.Errorf("item with empty id")
	}
	if item.Price <= 0 {
		return fmt.Errorf("item %s has non-positive price %.2f", item.ID, item.Price)
	}
	s.items[item.ID] = item
	return nil
}

// Items exposes the id -> Item mapping. Callers must not mutate it.
func (s *Store) Items() map[string]domain.Item {
	return s.items
}

// Len returns the number of items.
func (s *Store) Len() int {
	return len(s.items)
}

// LiveIDs returns the id set for ledger orphan cleanup.
func (s *Store) LiveIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.items))
	for id := range s.items {
		ids[id] = struct{}{}
	}
	return ids
}

// SortedIDs returns ids in the canonical (normalized title, id) order the
// matcher processes them in.
func (s *Store) SortedIDs() []string {
	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ti := matching.NormalizeTitle(s.items[ids[i]].Title)
		tj := matching.NormalizeTitle(s.items[ids[j]].Title)
		if ti != tj {
			return ti < tj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Save persists the item store as items.json.
func (s *Store) Save(path, lastUpdated string) error {
	return WriteJSON(path, domain.ItemsFile{LastUpdated: lastUpdated, Items: s.items}, false)
}

// WriteJSON writes a JSON artifact, creating parent directories. Indented
// output is used for the human-inspected files, compact for the bulky ones.
func WriteJSON(path string, v any, indent bool) error {
	var (
		raw []byte
		err error
	)
	if indent {
		raw, err = json.MarshalIndent(v, "", "  ")
	} else {
		raw, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
