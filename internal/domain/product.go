package domain

// Vendor is one store's offer inside a projected product.
type Vendor struct {
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	RegularPrice *float64 `json:"regularPrice,omitempty"`
	URL          string   `json:"url"`
	InStock      bool     `json:"inStock"`
	SKU          string   `json:"sku,omitempty"`
}

// Product is the denormalized frontend record for one match group.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Image       string   `json:"image,omitempty"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Vendors     []Vendor `json:"vendors"`
	LowestPrice float64  `json:"lowestPrice"`
	InStock     bool     `json:"inStock"`
}

// ProductsFile is the public products.json artifact.
type ProductsFile struct {
	LastUpdated  string    `json:"lastUpdated"`
	StoreCount   int       `json:"storeCount"`
	ProductCount int       `json:"productCount"`
	Products     []Product `json:"products"`
}

// TrendEntry is one point in a vendor or consolidated price series. Vendor
// points carry rp/s from the ledger; consolidated points carry the cheapest
// vendor's name in V. Prev/StockPrev mark changes from the preceding point
// in the same series.
type TrendEntry struct {
	Unix         int64    `json:"t"`
	Price        float64  `json:"p"`
	RegularPrice *float64 `json:"rp,omitempty"`
	Prev         *float64 `json:"prev,omitempty"`
	InStock      *bool    `json:"s,omitempty"`
	StockPrev    *bool    `json:"stockPrev,omitempty"`
	Vendor       string   `json:"v,omitempty"`
}

// GroupTrend is the per-match-group slice of tracker data.
type GroupTrend struct {
	Vendors map[string][]TrendEntry `json:"vendors"`
	Lowest  []TrendEntry            `json:"lowest"`
}

// TrendFile is the public tracker-data.json artifact.
type TrendFile struct {
	LastUpdated string                `json:"lastUpdated"`
	History     map[string]GroupTrend `json:"history"`
}
