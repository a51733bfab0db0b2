package domain

// MatchedBy records the basis a match group was formed on. A group formed on
// title similarity is promoted to sku once a member contributes a usable SKU;
// the promotion never reverses.
const (
	MatchedBySKU   = "sku"
	MatchedByTitle = "title"
)

// MatchGroup clusters item ids believed to be the same real-world product
// across vendors. Items keeps insertion order; it is never reordered.
type MatchGroup struct {
	ID        string   `json:"id"`
	MatchedBy string   `json:"matchedBy"`
	Items     []string `json:"items"`
}

// MatchesFile is the persisted form of a run's match groups.
type MatchesFile struct {
	LastUpdated string       `json:"lastUpdated"`
	Matches     []MatchGroup `json:"matches"`
}
