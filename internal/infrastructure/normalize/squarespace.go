package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/gsaugg/compare/internal/classify"
	"github.com/gsaugg/compare/internal/config"
	"github.com/gsaugg/compare/internal/domain"
)

type sqspMoney struct {
	Value string `json:"value"`
}

type sqspVariant struct {
	ID             string            `json:"id"`
	SKU            string            `json:"sku"`
	PriceMoney     sqspMoney         `json:"priceMoney"`
	SalePriceMoney sqspMoney         `json:"salePriceMoney"`
	Attributes     map[string]string `json:"attributes"`
	QtyInStock     int64             `json:"qtyInStock"`
	Unlimited      bool              `json:"unlimited"`
}

type sqspProduct struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	AssetURL          string   `json:"assetUrl"`
	URLID             string   `json:"urlId"`
	Categories        []string `json:"categories"`
	StructuredContent struct {
		Variants []sqspVariant `json:"variants"`
	} `json:"structuredContent"`
}

// Squarespace decodes /store?format=json items, emitting one item per
// structured-content variant. Squarespace has no separate tag field, so
// categories double as tags.
type Squarespace struct {
	maxTags int
	logger  *slog.Logger
}

// NewSquarespace builds the Squarespace normalizer.
func NewSquarespace(cfg config.QualityConfig, logger *slog.Logger) *Squarespace {
	return &Squarespace{maxTags: cfg.MaxTags, logger: logger}
}

// Platform identifies the strategy inside the registry.
func (n *Squarespace) Platform() string {
	return "squarespace"
}

// Normalize expands a Squarespace product into per-variant items. A sale
// price below the list price becomes the current price, with the list price
// kept as the regular price.
func (n *Squarespace) Normalize(store config.Store, raw json.RawMessage) ([]domain.Item, error) {
	var product sqspProduct
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, fmt.Errorf("decode squarespace product: %w", err)
	}
	if product.ID == "" || len(product.StructuredContent.Variants) == 0 {
		return nil, fmt.Errorf("squarespace product missing id or variants")
	}

	tags := capTags(product.Categories, n.maxTags)
	var rawCategory string
	if len(product.Categories) > 0 {
		rawCategory = product.Categories[0]
	}
	var url string
	if product.URLID != "" {
		url = fmt.Sprintf("%s/store/%s", store.URL, product.URLID)
	}

	items := make([]domain.Item, 0, len(product.StructuredContent.Variants))
	for _, v := range product.StructuredContent.Variants {
		price, err := strconv.ParseFloat(v.PriceMoney.Value, 64)
		if err != nil {
			n.logger.Debug("skipping variant with unparsable price", "store", store.Name, "product", product.Title)
			continue
		}

		var regular *float64
		if v.SalePriceMoney.Value != "" {
			if sale, err := strconv.ParseFloat(v.SalePriceMoney.Value, 64); err == nil && sale > 0 && sale < price {
				list := price
				regular = &list
				price = sale
			}
		}

		title := product.Title
		if suffix := variantSuffix(v.Attributes); suffix != "" {
			title = product.Title + " - " + suffix
		}

		items = append(items, domain.Item{
			ID:           domain.ItemID(store.ID, product.ID, v.ID),
			StoreID:      store.ID,
			ProductID:    product.ID,
			VariantID:    v.ID,
			Title:        title,
			SKU:          strings.TrimSpace(v.SKU),
			Price:        price,
			RegularPrice: regular,
			Category:     classify.BestCategory(rawCategory, title, tags),
			Tags:         tags,
			InStock:      v.Unlimited || v.QtyInStock > 0,
			URL:          url,
			Image:        product.AssetURL,
			Vendor:       store.Name,
		})
	}

	return items, nil
}

// variantSuffix renders variant attributes ("Colour: Black") as a stable
// title suffix, sorted by attribute name.
func variantSuffix(attributes map[string]string) string {
	if len(attributes) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attributes))
	for k := range attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := strings.TrimSpace(attributes[k]); v != "" {
			values = append(values, v)
		}
	}
	return strings.Join(values, " ")
}
