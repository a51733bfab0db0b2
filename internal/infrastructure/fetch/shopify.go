package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/gsaugg/compare/internal/config"
)

const (
	shopifyPageSize          = 250
	shopifyDefaultRetryAfter = 30 * time.Second
)

// Shopify crawls the public /products.json endpoint. Shopify rate-limits
// aggressively, so 429 responses are honored with a single Retry-After wait.
type Shopify struct {
	client   *Client
	maxPages int
	logger   *slog.Logger
}

// NewShopify builds the Shopify fetcher with its own (slower) rate limit.
func NewShopify(cfg config.FetchConfig, logger *slog.Logger) *Shopify {
	return &Shopify{
		client:   NewClient(cfg, cfg.ShopifyDelay),
		maxPages: cfg.MaxPages,
		logger:   logger,
	}
}

// Platform identifies the strategy inside the registry.
func (f *Shopify) Platform() string {
	return "shopify"
}

// Fetch pages through the catalog until an empty page or the page cap.
// On error it returns the products collected so far together with the error,
// so a partially crawled store still contributes to the run.
func (f *Shopify) Fetch(ctx context.Context, store config.Store) ([]json.RawMessage, error) {
	var products []json.RawMessage

	for page := 1; page <= f.maxPages; page++ {
		url := fmt.Sprintf("%s/products.json?limit=%d&page=%d", store.URL, shopifyPageSize, page)

		resp, err := f.client.Get(ctx, url)
		if err != nil {
			return products, fmt.Errorf("page %d: %w", page, err)
		}
		if resp.StatusCode() == http.StatusTooManyRequests {
			resp, err = f.retryAfter(ctx, resp, url)
			if err != nil {
				return products, fmt.Errorf("page %d: %w", page, err)
			}
		}
		if !resp.IsSuccess() {
			return products, fmt.Errorf("page %d: unexpected status %s", page, resp.Status())
		}

		var payload struct {
			Products []json.RawMessage `json:"products"`
		}
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			return products, fmt.Errorf("page %d: decode: %w", page, err)
		}
		if len(payload.Products) == 0 {
			break
		}

		products = append(products, payload.Products...)
		f.logger.Debug("shopify page fetched", "store", store.Name, "page", page, "products", len(payload.Products))
	}

	return products, nil
}

// retryAfter waits out the server-requested backoff and retries once.
func (f *Shopify) retryAfter(ctx context.Context, resp *resty.Response, url string) (*resty.Response, error) {
	wait := shopifyDefaultRetryAfter
	if v := resp.Header().Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			wait = time.Duration(secs) * time.Second
		}
	}
	f.logger.Warn("shopify rate limited", "wait", wait)
	if err := sleepCtx(ctx, wait); err != nil {
		return nil, err
	}
	return f.client.Get(ctx, url)
}
