package domain

// FilteredListing records one listing dropped by validation, for the stats
// report.
type FilteredListing struct {
	Title    string `json:"title"`
	Reason   string `json:"reason"`
	Keyword  string `json:"keyword,omitempty"`
	Category string `json:"filterCategory,omitempty"`
}

// StoreRunStats summarizes one store's crawl within a run.
type StoreRunStats struct {
	StoreID    string            `json:"storeId"`
	Name       string            `json:"name"`
	URL        string            `json:"url"`
	Platform   string            `json:"platform"`
	Fetched    int               `json:"fetched"`
	Filtered   int               `json:"filtered"`
	Final      int               `json:"final"`
	InStock    int               `json:"inStock"`
	OutOfStock int               `json:"outOfStock"`
	DurationMS int64             `json:"durationMs"`
	Error      string            `json:"error,omitempty"`
	Dropped    []FilteredListing `json:"filteredProducts,omitempty"`
}

// RunSummary is the whole-run record archived after every scrape.
type RunSummary struct {
	StartedAt    string          `json:"startedAt"`
	DurationMS   int64           `json:"durationMs"`
	StoreCount   int             `json:"storeCount"`
	ItemCount    int             `json:"itemCount"`
	GroupCount   int             `json:"groupCount"`
	SKUMatches   int             `json:"skuMatches"`
	TitleMatches int             `json:"titleMatches"`
	Offline      bool            `json:"offline"`
	Stores       []StoreRunStats `json:"stores"`
}
