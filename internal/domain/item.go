package domain

import (
	"fmt"
	"strings"
)

// Item is one sellable variant at one vendor, keyed by storeId|productId|variantId.
// The JSON field names are the persisted wire contract for the frontend.
type Item struct {
	ID           string   `json:"id"`
	StoreID      string   `json:"storeId"`
	ProductID    string   `json:"productId"`
	VariantID    string   `json:"variantId"`
	Title        string   `json:"title"`
	SKU          string   `json:"sku,omitempty"`
	Price        float64  `json:"price"`
	RegularPrice *float64 `json:"regularPrice,omitempty"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	InStock      bool     `json:"inStock"`
	URL          string   `json:"url"`
	Image        string   `json:"image,omitempty"`
	Vendor       string   `json:"vendor"`
}

// ItemID builds the composite identifier shared by matching and history.
func ItemID(storeID, productID, variantID string) string {
	return storeID + "|" + productID + "|" + variantID
}

// SplitItemID returns the three components of a composite item id.
func SplitItemID(id string) (storeID, productID, variantID string, err error) {
	parts := strings.SplitN(id, "|", 3)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("malformed item id %q", id)
	}
	return parts[0], parts[1], parts[2], nil
}

// ItemsFile is the persisted form of the item store.
type ItemsFile struct {
	LastUpdated string          `json:"lastUpdated"`
	Items       map[string]Item `json:"items"`
}
