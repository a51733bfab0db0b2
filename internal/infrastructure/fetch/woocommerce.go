package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gsaugg/compare/internal/config"
)

const wooPageSize = 100

// wooAPIPaths are the Store API roots in detection order; older WooCommerce
// installs expose the unversioned path only.
var wooAPIPaths = []string{
	"/wp-json/wc/store/v1/products",
	"/wp-json/wc/store/products",
}

// WooCommerce crawls the Store API, fetching simple and variable products
// first and then their variations in a second pass. Variations inherit
// categories and tags from their parent when they carry none of their own.
type WooCommerce struct {
	client   *Client
	maxPages int
	logger   *slog.Logger
}

// NewWooCommerce builds the WooCommerce fetcher.
func NewWooCommerce(cfg config.FetchConfig, logger *slog.Logger) *WooCommerce {
	return &WooCommerce{
		client:   NewClient(cfg, cfg.RequestDelay),
		maxPages: cfg.MaxPages,
		logger:   logger,
	}
}

// Platform identifies the strategy inside the registry.
func (f *WooCommerce) Platform() string {
	return "woocommerce"
}

// Fetch returns simple products followed by parent-enriched variations. On
// error it returns what was collected so far together with the error.
func (f *WooCommerce) Fetch(ctx context.Context, store config.Store) ([]json.RawMessage, error) {
	apiPath := f.detectAPIPath(ctx, store)

	raw, err := f.fetchPages(ctx, store.URL+apiPath, "")
	if err != nil {
		return raw, err
	}

	// Split variable parents from simple products; parents only contribute
	// lookup data, their variations are fetched separately.
	type parentInfo struct {
		categories json.RawMessage
		tags       json.RawMessage
	}
	parents := map[int64]parentInfo{}
	var products []json.RawMessage

	for _, payload := range raw {
		var probe struct {
			ID         int64           `json:"id"`
			Type       string          `json:"type"`
			Categories json.RawMessage `json:"categories"`
			Tags       json.RawMessage `json:"tags"`
		}
		if err := json.Unmarshal(payload, &probe); err != nil {
			continue
		}
		if probe.Type == "variable" {
			parents[probe.ID] = parentInfo{categories: probe.Categories, tags: probe.Tags}
			continue
		}
		products = append(products, payload)
	}

	if len(parents) == 0 {
		return products, nil
	}

	f.logger.Info("fetching woocommerce variations", "store", store.Name, "variable_products", len(parents))
	variations, err := f.fetchPages(ctx, store.URL+apiPath, "type=variation")
	if err != nil {
		// Variations are best effort: keep what we have, as a partial catalog
		// beats losing the store's simple products.
		f.logger.Warn("variation fetch incomplete", "store", store.Name, "error", err)
	}

	for _, payload := range variations {
		patched, ok := f.enrichVariation(payload, func(parentID int64) (json.RawMessage, json.RawMessage, bool) {
			p, found := parents[parentID]
			return p.categories, p.tags, found
		})
		if !ok {
			continue
		}
		products = append(products, patched)
	}

	return products, nil
}

// detectAPIPath probes the known Store API roots and returns the first one
// responding 200, defaulting to the versioned path.
func (f *WooCommerce) detectAPIPath(ctx context.Context, store config.Store) string {
	for _, path := range wooAPIPaths {
		probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		resp, err := f.client.Get(probeCtx, fmt.Sprintf("%s%s?per_page=1", store.URL, path))
		cancel()
		if err == nil && resp.IsSuccess() {
			return path
		}
	}
	return wooAPIPaths[0]
}

// fetchPages walks a Store API listing. A page shorter than the page size is
// the last one.
func (f *WooCommerce) fetchPages(ctx context.Context, baseURL, extraQuery string) ([]json.RawMessage, error) {
	var out []json.RawMessage

	for page := 1; page <= f.maxPages; page++ {
		url := fmt.Sprintf("%s?per_page=%d&page=%d", baseURL, wooPageSize, page)
		if extraQuery != "" {
			url = fmt.Sprintf("%s?%s&per_page=%d&page=%d", baseURL, extraQuery, wooPageSize, page)
		}

		resp, err := f.client.Get(ctx, url)
		if err != nil {
			return out, fmt.Errorf("page %d: %w", page, err)
		}
		if !resp.IsSuccess() {
			return out, fmt.Errorf("page %d: unexpected status %s", page, resp.Status())
		}

		var pageItems []json.RawMessage
		if err := json.Unmarshal(resp.Body(), &pageItems); err != nil {
			return out, fmt.Errorf("page %d: decode: %w", page, err)
		}
		if len(pageItems) == 0 {
			break
		}

		out = append(out, pageItems...)
		if len(pageItems) < wooPageSize {
			break
		}
	}

	return out, nil
}

// enrichVariation copies the parent's categories and tags into a variation
// that has none, re-marshaling the patched payload.
func (f *WooCommerce) enrichVariation(payload json.RawMessage, lookup func(int64) (json.RawMessage, json.RawMessage, bool)) (json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, false
	}

	var parentID int64
	if raw, ok := fields["parent"]; ok {
		if err := json.Unmarshal(raw, &parentID); err != nil {
			return payload, true
		}
	}
	categories, tags, found := lookup(parentID)
	if !found {
		return payload, true
	}

	patched := false
	if emptyJSONList(fields["categories"]) && len(categories) > 0 {
		fields["categories"] = categories
		patched = true
	}
	if emptyJSONList(fields["tags"]) && len(tags) > 0 {
		fields["tags"] = tags
		patched = true
	}
	if !patched {
		return payload, true
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return payload, true
	}
	return out, true
}

// emptyJSONList reports whether a raw field is absent, null, or an empty array.
func emptyJSONList(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return false
	}
	return len(items) == 0
}
