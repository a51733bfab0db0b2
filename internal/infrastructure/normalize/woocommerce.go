package normalize

import (
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gsaugg/compare/internal/classify"
	"github.com/gsaugg/compare/internal/config"
	"github.com/gsaugg/compare/internal/domain"
)

type wooTerm struct {
	Name string `json:"name"`
}

type wooPrices struct {
	Price        string `json:"price"`
	RegularPrice string `json:"regular_price"`
}

type wooProduct struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	Parent           int64     `json:"parent"`
	Permalink        string    `json:"permalink"`
	SKU              string    `json:"sku"`
	Variation        string    `json:"variation"`
	ShortDescription string    `json:"short_description"`
	IsInStock        bool      `json:"is_in_stock"`
	Prices           wooPrices `json:"prices"`
	Images           []struct {
		Src string `json:"src"`
	} `json:"images"`
	Categories []wooTerm `json:"categories"`
	Tags       []wooTerm `json:"tags"`
}

// WooCommerce decodes Store API payloads. Simple products are their own
// variant; variation payloads keep their parent's product id so all
// variations of one product share it.
type WooCommerce struct {
	maxTags int
	logger  *slog.Logger
}

// NewWooCommerce builds the WooCommerce normalizer.
func NewWooCommerce(cfg config.QualityConfig, logger *slog.Logger) *WooCommerce {
	return &WooCommerce{maxTags: cfg.MaxTags, logger: logger}
}

// Platform identifies the strategy inside the registry.
func (n *WooCommerce) Platform() string {
	return "woocommerce"
}

// Normalize converts one Store API product or variation into an item.
// Store API prices are integer minor units (cents).
func (n *WooCommerce) Normalize(store config.Store, raw json.RawMessage) ([]domain.Item, error) {
	var product wooProduct
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, fmt.Errorf("decode woocommerce product: %w", err)
	}
	if product.ID == 0 {
		return nil, fmt.Errorf("woocommerce product missing id")
	}

	price, err := centsToDollars(product.Prices.Price)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", product.ID, err)
	}

	var regular *float64
	if rp, err := centsToDollars(product.Prices.RegularPrice); err == nil && rp > price {
		regular = &rp
	}

	title := html.UnescapeString(product.Name)
	if product.Variation != "" && !strings.Contains(title, product.Variation) {
		title = title + " - " + html.UnescapeString(product.Variation)
	}

	variantID := strconv.FormatInt(product.ID, 10)
	productID := variantID
	if product.Type == "variation" && product.Parent != 0 {
		productID = strconv.FormatInt(product.Parent, 10)
	}

	var rawCategory string
	if len(product.Categories) > 0 {
		rawCategory = product.Categories[0].Name
	}
	tags := make([]string, 0, len(product.Tags))
	for _, t := range product.Tags {
		if t.Name != "" {
			tags = append(tags, html.UnescapeString(t.Name))
		}
	}
	tags = capTags(tags, n.maxTags)

	var image string
	if len(product.Images) > 0 {
		image = product.Images[0].Src
	}

	item := domain.Item{
		ID:           domain.ItemID(store.ID, productID, variantID),
		StoreID:      store.ID,
		ProductID:    productID,
		VariantID:    variantID,
		Title:        title,
		SKU:          strings.TrimSpace(product.SKU),
		Price:        price,
		RegularPrice: regular,
		Category:     classify.BestCategory(rawCategory, title, tags, htmlText(product.ShortDescription)),
		Tags:         tags,
		InStock:      product.IsInStock,
		URL:          product.Permalink,
		Image:        image,
		Vendor:       store.Name,
	}
	return []domain.Item{item}, nil
}

func centsToDollars(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty price")
	}
	cents, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", raw, err)
	}
	return float64(cents) / 100, nil
}

// htmlText strips markup from a description snippet so the classifier can
// match keywords against plain text.
func htmlText(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
