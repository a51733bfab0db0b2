// Package frontend joins items, match groups, and the price ledger into the
// denormalized artifacts the static frontend consumes.
package frontend

import (
	"log/slog"
	"math"
	"sort"

	"github.com/gsaugg/compare/internal/domain"
	"github.com/gsaugg/compare/internal/history"
)

const (
	uncategorized = "Uncategorized"
	priceEpsilon  = 0.01
)

// Projector builds products.json and tracker-data.json structures.
type Projector struct {
	maxTags         int
	lowestStaleDays int
	logger          *slog.Logger
}

// New builds a projector. lowestStaleDays controls when a silent vendor's
// carried-forward price stops counting toward the consolidated lowest series;
// zero keeps it forever.
func New(maxTags, lowestStaleDays int, logger *slog.Logger) *Projector {
	if maxTags <= 0 {
		maxTags = 10
	}
	return &Projector{maxTags: maxTags, lowestStaleDays: lowestStaleDays, logger: logger}
}

// Project produces the product list and the trend data for one run.
// storeNames maps storeId to the vendor display name.
func (p *Projector) Project(
	items map[string]domain.Item,
	groups []domain.MatchGroup,
	ledger *history.Ledger,
	lastUpdated string,
	storeNames map[string]string,
	storeCount int,
) (domain.ProductsFile, domain.TrendFile) {
	products := make([]domain.Product, 0, len(groups))
	for _, g := range groups {
		if product, ok := p.buildProduct(g, items, storeNames); ok {
			products = append(products, product)
		}
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].LowestPrice < products[j].LowestPrice
	})

	trend := domain.TrendFile{
		LastUpdated: lastUpdated,
		History:     map[string]domain.GroupTrend{},
	}
	for _, g := range groups {
		if gt, ok := p.buildGroupTrend(g, items, ledger, storeNames); ok {
			trend.History[g.ID] = gt
		}
	}

	if p.logger != nil {
		p.logger.Info("frontend projection complete",
			"products", len(products), "tracked_groups", len(trend.History))
	}

	return domain.ProductsFile{
		LastUpdated:  lastUpdated,
		StoreCount:   storeCount,
		ProductCount: len(products),
		Products:     products,
	}, trend
}

// buildProduct denormalizes one match group. Canonical display fields are
// seeded from the group's first item and backfilled first-non-empty-wins from
// the rest. Groups with no resolvable items or no positive price are dropped.
func (p *Projector) buildProduct(g domain.MatchGroup, items map[string]domain.Item, storeNames map[string]string) (domain.Product, bool) {
	groupItems := make([]domain.Item, 0, len(g.Items))
	for _, id := range g.Items {
		if item, ok := items[id]; ok {
			groupItems = append(groupItems, item)
		}
	}
	if len(groupItems) == 0 {
		return domain.Product{}, false
	}

	first := groupItems[0]
	product := domain.Product{
		ID:       g.ID,
		Title:    first.Title,
		Image:    first.Image,
		Category: categoryOrDefault(first.Category),
		Tags:     capTags(append([]string(nil), first.Tags...), p.maxTags),
	}

	seenVendors := map[string]struct{}{}
	for _, item := range groupItems {
		name := vendorName(item, storeNames)
		// The matcher already prevents same-store members; guard anyway.
		if _, dup := seenVendors[name]; dup {
			continue
		}
		seenVendors[name] = struct{}{}

		if product.Image == "" && item.Image != "" {
			product.Image = item.Image
		}
		if product.Category == uncategorized && categoryOrDefault(item.Category) != uncategorized {
			product.Category = item.Category
		}
		product.Tags = capTags(mergeTags(product.Tags, item.Tags), p.maxTags)

		product.Vendors = append(product.Vendors, domain.Vendor{
			Name:         name,
			Price:        item.Price,
			RegularPrice: item.RegularPrice,
			URL:          item.URL,
			InStock:      item.InStock,
			SKU:          item.SKU,
		})
	}

	if len(product.Vendors) == 0 {
		return domain.Product{}, false
	}

	// In-stock vendors first, then ascending price; stable, so equal-rank
	// vendors keep their append order.
	sort.SliceStable(product.Vendors, func(i, j int) bool {
		a, b := product.Vendors[i], product.Vendors[j]
		if a.InStock != b.InStock {
			return a.InStock
		}
		return a.Price < b.Price
	})

	lowest, ok := lowestPrice(product.Vendors)
	if !ok {
		return domain.Product{}, false
	}
	product.LowestPrice = lowest

	for _, v := range product.Vendors {
		if v.InStock {
			product.InStock = true
			break
		}
	}

	return product, true
}

// lowestPrice prefers the cheapest positive in-stock price, falling back to
// the cheapest positive price overall. ok is false when no vendor has a
// positive price at all.
func lowestPrice(vendors []domain.Vendor) (float64, bool) {
	var all, inStock []float64
	for _, v := range vendors {
		if v.Price <= 0 {
			continue
		}
		all = append(all, v.Price)
		if v.InStock {
			inStock = append(inStock, v.Price)
		}
	}
	if len(all) == 0 {
		return 0, false
	}
	if len(inStock) > 0 {
		return minOf(inStock), true
	}
	return minOf(all), true
}

// buildGroupTrend emits each vendor's ledger series annotated with price and
// stock transitions, plus the consolidated lowest-price series.
func (p *Projector) buildGroupTrend(g domain.MatchGroup, items map[string]domain.Item, ledger *history.Ledger, storeNames map[string]string) (domain.GroupTrend, bool) {
	gt := domain.GroupTrend{
		Vendors: map[string][]domain.TrendEntry{},
		Lowest:  []domain.TrendEntry{},
	}

	for _, id := range g.Items {
		item, ok := items[id]
		if !ok {
			continue
		}
		entries := ledger.History[id]
		if len(entries) == 0 {
			continue
		}
		gt.Vendors[vendorName(item, storeNames)] = annotateSeries(entries)
	}

	if len(gt.Vendors) == 0 {
		return domain.GroupTrend{}, false
	}

	gt.Lowest = p.consolidateLowest(gt.Vendors)
	return gt, true
}

// annotateSeries converts a ledger series to trend entries, adding prev on
// price moves of at least a cent and stockPrev on stock flips.
func annotateSeries(entries []domain.HistoryEntry) []domain.TrendEntry {
	out := make([]domain.TrendEntry, 0, len(entries))
	var prevPrice *float64
	var prevStock *bool

	for _, e := range entries {
		te := domain.TrendEntry{
			Unix:         e.Unix,
			Price:        e.Price,
			RegularPrice: e.RegularPrice,
			InStock:      e.InStock,
		}
		if prevPrice != nil && math.Abs(e.Price-*prevPrice) >= priceEpsilon {
			v := *prevPrice
			te.Prev = &v
		}
		if e.InStock != nil {
			if prevStock != nil && *e.InStock != *prevStock {
				v := *prevStock
				te.StockPrev = &v
			}
			prevStock = e.InStock
		}
		out = append(out, te)

		price := e.Price
		prevPrice = &price
	}
	return out
}

// consolidateLowest merges all vendor series into one lowest-price-over-time
// series: a last-value-forward join emitting one point per distinct
// timestamp. Ties on price go to the lexicographically smallest vendor name
// so reruns are deterministic.
func (p *Projector) consolidateLowest(vendors map[string][]domain.TrendEntry) []domain.TrendEntry {
	type point struct {
		t      int64
		price  float64
		vendor string
	}

	var all []point
	for name, entries := range vendors {
		for _, e := range entries {
			all = append(all, point{t: e.Unix, price: e.Price, vendor: name})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].t != all[j].t {
			return all[i].t < all[j].t
		}
		return all[i].vendor < all[j].vendor
	})

	var timestamps []int64
	for _, pt := range all {
		if len(timestamps) == 0 || timestamps[len(timestamps)-1] != pt.t {
			timestamps = append(timestamps, pt.t)
		}
	}

	staleCutoff := int64(p.lowestStaleDays) * 86400
	latest := map[string]point{}
	lowest := make([]domain.TrendEntry, 0, len(timestamps))
	var prevLowest *float64
	next := 0

	for _, ts := range timestamps {
		for next < len(all) && all[next].t == ts {
			latest[all[next].vendor] = all[next]
			next++
		}

		var best point
		found := false
		for _, pt := range latest {
			if staleCutoff > 0 && ts-pt.t > staleCutoff {
				continue
			}
			if !found || pt.price < best.price || (pt.price == best.price && pt.vendor < best.vendor) {
				best = pt
				found = true
			}
		}
		if !found {
			continue
		}

		entry := domain.TrendEntry{Unix: ts, Price: best.price, Vendor: best.vendor}
		if prevLowest != nil && math.Abs(best.price-*prevLowest) >= priceEpsilon {
			v := *prevLowest
			entry.Prev = &v
		}
		lowest = append(lowest, entry)

		price := best.price
		prevLowest = &price
	}

	return lowest
}

func vendorName(item domain.Item, storeNames map[string]string) string {
	if name, ok := storeNames[item.StoreID]; ok && name != "" {
		return name
	}
	if item.Vendor != "" {
		return item.Vendor
	}
	return item.StoreID
}

func categoryOrDefault(category string) string {
	if category == "" {
		return uncategorized
	}
	return category
}

// mergeTags appends additions not already present, preserving order.
func mergeTags(base, additions []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, t := range base {
		seen[t] = struct{}{}
	}
	for _, t := range additions {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		base = append(base, t)
	}
	return base
}

func capTags(tags []string, max int) []string {
	if len(tags) > max {
		return tags[:max]
	}
	return tags
}

func minOf(values []float64) float64 {
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}
