package matching

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/gsaugg/compare/internal/domain"
)

// Stats counts what the matcher did during one run.
type Stats struct {
	NewGroups      int
	SKUMatches     int
	FuzzyMatches   int
	SameStoreSkips int
}

// Matcher groups a run's items into cross-vendor product clusters using SKU
// equality first and fuzzy title similarity second. Matching is deterministic:
// items are processed sorted by (normalized title, id), so the same item pool
// always regenerates the same group ids and membership.
type Matcher struct {
	threshold int
	logger    *slog.Logger
}

// New builds a matcher with the given fuzzy score cutoff (0-100).
func New(threshold int, logger *slog.Logger) *Matcher {
	if threshold <= 0 {
		threshold = 90
	}
	return &Matcher{threshold: threshold, logger: logger}
}

// group is the single owned record behind every index entry. The SKU and
// title indices hold pointers into it, so rewriting the public id on
// promotion updates every view at once.
type group struct {
	id        string
	matchedBy string
	items     []string
	stores    map[string]struct{}
}

func (g *group) hasStore(storeID string) bool {
	_, ok := g.stores[storeID]
	return ok
}

// Match partitions the item pool into match groups, returned in creation
// order. Within a group no two items share a storeId; a store is never
// matched against itself.
func (m *Matcher) Match(items map[string]domain.Item) ([]domain.MatchGroup, Stats) {
	var stats Stats

	skuIndex := map[string]*group{}
	titleIndex := map[string]*group{}
	titleKeys := make([]string, 0, len(items))
	usedIDs := map[string]struct{}{}
	groups := make([]*group, 0, len(items))

	for _, id := range sortedIDs(items) {
		item := items[id]
		normalized := NormalizeTitle(item.Title)
		placed := false

		// SKU path. A same-store collision is not a match; the item falls
		// through to the title path.
		if IsValidSKU(item.SKU) {
			key := NormalizeSKU(item.SKU)
			if g, ok := skuIndex[key]; ok {
				if g.hasStore(item.StoreID) {
					stats.SameStoreSkips++
				} else {
					g.items = append(g.items, id)
					g.stores[item.StoreID] = struct{}{}
					stats.SKUMatches++
					placed = true
				}
			}
		}

		// Fuzzy title path.
		if !placed && len(titleKeys) > 0 {
			if g := m.bestTitleMatch(normalized, titleIndex, titleKeys); g != nil {
				if g.hasStore(item.StoreID) {
					stats.SameStoreSkips++
				} else {
					g.items = append(g.items, id)
					g.stores[item.StoreID] = struct{}{}

					// Register this item's SKU for future lookups, promoting
					// the group from title to sku on first registration.
					if IsValidSKU(item.SKU) {
						key := NormalizeSKU(item.SKU)
						if _, taken := skuIndex[key]; !taken {
							skuIndex[key] = g
							if g.matchedBy == domain.MatchedByTitle {
								delete(usedIDs, g.id)
								g.matchedBy = domain.MatchedBySKU
								g.id = "sku-" + key
								usedIDs[g.id] = struct{}{}
							}
						}
					}

					stats.FuzzyMatches++
					placed = true
				}
			}
		}

		// New-group path.
		if !placed {
			g := &group{
				items:  []string{id},
				stores: map[string]struct{}{item.StoreID: {}},
			}
			if IsValidSKU(item.SKU) {
				key := NormalizeSKU(item.SKU)
				g.matchedBy = domain.MatchedBySKU
				g.id = uniqueID("sku-"+key, usedIDs)
				skuIndex[key] = g
			} else {
				g.matchedBy = domain.MatchedByTitle
				base := TitleID(item.Title, false)
				if _, taken := usedIDs[base]; taken {
					base = TitleID(item.Title, true)
				}
				g.id = uniqueID(base, usedIDs)
			}
			usedIDs[g.id] = struct{}{}

			titleIndex[normalized] = g
			titleKeys = append(titleKeys, normalized)
			groups = append(groups, g)
			stats.NewGroups++
		}
	}

	if m.logger != nil {
		m.logger.Info("matching complete",
			"groups", stats.NewGroups,
			"sku_matches", stats.SKUMatches,
			"fuzzy_matches", stats.FuzzyMatches,
			"same_store_skipped", stats.SameStoreSkips)
	}

	result := make([]domain.MatchGroup, 0, len(groups))
	for _, g := range groups {
		result = append(result, domain.MatchGroup{
			ID:        g.id,
			MatchedBy: g.matchedBy,
			Items:     g.items,
		})
	}
	return result, stats
}

// bestTitleMatch finds the group whose registered title best matches the
// normalized title. Exact equality is the fast path; otherwise the fuzzy
// scorer runs over every previously seen title, keeping the first candidate
// with the highest score at or above the cutoff.
func (m *Matcher) bestTitleMatch(normalized string, titleIndex map[string]*group, titleKeys []string) *group {
	if g, ok := titleIndex[normalized]; ok {
		return g
	}

	bestScore := -1
	var best *group
	for _, key := range titleKeys {
		score := TokenSortRatio(normalized, key)
		if score >= m.threshold && score > bestScore {
			bestScore = score
			best = titleIndex[key]
		}
	}
	return best
}

// uniqueID returns base, or the first counter-suffixed variant ("-2", "-3",
// ...) not yet in use.
func uniqueID(base string, used map[string]struct{}) string {
	id := base
	for counter := 2; ; counter++ {
		if _, taken := used[id]; !taken {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, counter)
	}
}

// sortedIDs orders items by (normalized title, id); group identity and
// collision handling depend on this processing order.
func sortedIDs(items map[string]domain.Item) []string {
	type sortKey struct {
		id    string
		title string
	}
	keys := make([]sortKey, 0, len(items))
	for id, item := range items {
		keys = append(keys, sortKey{id: id, title: NormalizeTitle(item.Title)})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].title != keys[j].title {
			return keys[i].title < keys[j].title
		}
		return keys[i].id < keys[j].id
	})

	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = k.id
	}
	return ids
}

// GroupStats summarizes match groups for the stats artifact.
type GroupStats struct {
	Total        int `json:"total"`
	SKUMatched   int `json:"skuMatched"`
	TitleMatched int `json:"titleMatched"`
	MultiVendor  int `json:"multiVendor"`
	SingleVendor int `json:"singleVendor"`
}

// Summarize counts group compositions after a run.
func Summarize(groups []domain.MatchGroup) GroupStats {
	var s GroupStats
	s.Total = len(groups)
	for _, g := range groups {
		if g.MatchedBy == domain.MatchedBySKU {
			s.SKUMatched++
		} else {
			s.TitleMatched++
		}
		if len(g.Items) >= 2 {
			s.MultiVendor++
		} else {
			s.SingleVendor++
		}
	}
	return s
}
