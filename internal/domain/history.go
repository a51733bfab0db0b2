package domain

// HistoryEntry is one recorded price observation for an item. Entries are
// appended only when the (p, rp) pair differs from the previous entry, so a
// series length equals the number of distinct price states ever seen. The
// stock flag rides along on whatever entries exist; it does not trigger one.
type HistoryEntry struct {
	Unix         int64    `json:"t"`
	Price        float64  `json:"p"`
	RegularPrice *float64 `json:"rp,omitempty"`
	InStock      *bool    `json:"s,omitempty"`
}
