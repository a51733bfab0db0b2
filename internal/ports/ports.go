package ports

import (
	"context"
	"encoding/json"

	"github.com/gsaugg/compare/internal/config"
	"github.com/gsaugg/compare/internal/domain"
)

// Fetcher pulls raw product payloads from one storefront platform.
type Fetcher interface {
	Platform() string
	Fetch(ctx context.Context, store config.Store) ([]json.RawMessage, error)
}

// Normalizer converts one raw platform payload into store-specific variants.
// A single payload may expand to several items (one per variant).
type Normalizer interface {
	Platform() string
	Normalize(store config.Store, raw json.RawMessage) ([]domain.Item, error)
}

// Validator decides whether a normalized item enters the catalog. A nil
// result keeps the item; otherwise the listing is dropped with the reason.
type Validator interface {
	Validate(item domain.Item) *domain.FilteredListing
}

// SnapshotCache persists raw fetch payloads so runs can replay offline.
type SnapshotCache interface {
	Save(store config.Store, products []json.RawMessage) error
	Load(store config.Store) ([]json.RawMessage, error)
}

// RunArchive keeps a history of run summaries for operational review.
type RunArchive interface {
	SaveRun(ctx context.Context, run domain.RunSummary) error
	RecentRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)
	Close() error
}
