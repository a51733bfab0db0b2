// Package normalize converts raw platform payloads into the variant-level
// item schema. Each platform has its own decoder; per-payload failures drop
// that payload and never abort a store.
package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gsaugg/compare/internal/classify"
	"github.com/gsaugg/compare/internal/config"
	"github.com/gsaugg/compare/internal/domain"
)

const defaultVariantTitle = "Default Title"

type shopifyVariant struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	SKU            string  `json:"sku"`
	Price          string  `json:"price"`
	CompareAtPrice *string `json:"compare_at_price"`
	Available      bool    `json:"available"`
}

type shopifyProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Handle      string           `json:"handle"`
	ProductType string           `json:"product_type"`
	Tags        json.RawMessage  `json:"tags"` // string or array, varies by store
	Variants    []shopifyVariant `json:"variants"`
	Images      []struct {
		Src string `json:"src"`
	} `json:"images"`
}

// Shopify decodes /products.json payloads, emitting one item per variant.
type Shopify struct {
	maxTags int
	logger  *slog.Logger
}

// NewShopify builds the Shopify normalizer.
func NewShopify(cfg config.QualityConfig, logger *slog.Logger) *Shopify {
	return &Shopify{maxTags: cfg.MaxTags, logger: logger}
}

// Platform identifies the strategy inside the registry.
func (n *Shopify) Platform() string {
	return "shopify"
}

// Normalize expands a Shopify product into per-variant items. Variant titles
// other than the placeholder "Default Title" are appended to the product
// title so distinct colorways stay distinguishable.
func (n *Shopify) Normalize(store config.Store, raw json.RawMessage) ([]domain.Item, error) {
	var product shopifyProduct
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, fmt.Errorf("decode shopify product: %w", err)
	}
	if product.ID == 0 || len(product.Variants) == 0 {
		return nil, fmt.Errorf("shopify product missing id or variants")
	}

	tags := capTags(shopifyTags(product.Tags), n.maxTags)
	var image string
	if len(product.Images) > 0 {
		image = product.Images[0].Src
	}
	productID := strconv.FormatInt(product.ID, 10)
	baseURL := fmt.Sprintf("%s/products/%s", store.URL, product.Handle)

	items := make([]domain.Item, 0, len(product.Variants))
	for _, v := range product.Variants {
		price, err := strconv.ParseFloat(v.Price, 64)
		if err != nil {
			n.logger.Debug("skipping variant with unparsable price", "store", store.Name, "product", product.Title)
			continue
		}

		title := product.Title
		url := baseURL
		variantID := strconv.FormatInt(v.ID, 10)
		if v.Title != "" && v.Title != defaultVariantTitle {
			title = product.Title + " - " + v.Title
			url = baseURL + "?variant=" + variantID
		}

		var regular *float64
		if v.CompareAtPrice != nil {
			if cp, err := strconv.ParseFloat(*v.CompareAtPrice, 64); err == nil && cp > price {
				regular = &cp
			}
		}

		items = append(items, domain.Item{
			ID:           domain.ItemID(store.ID, productID, variantID),
			StoreID:      store.ID,
			ProductID:    productID,
			VariantID:    variantID,
			Title:        title,
			SKU:          strings.TrimSpace(v.SKU),
			Price:        price,
			RegularPrice: regular,
			Category:     classify.BestCategory(product.ProductType, title, tags),
			Tags:         tags,
			InStock:      v.Available,
			URL:          url,
			Image:        image,
			Vendor:       store.Name,
		})
	}

	return items, nil
}

// shopifyTags accepts both tag encodings Shopify emits: a comma-separated
// string or a JSON array.
func shopifyTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err != nil {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(joined, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func capTags(tags []string, max int) []string {
	if max > 0 && len(tags) > max {
		return tags[:max]
	}
	return tags
}
