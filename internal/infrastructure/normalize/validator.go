package normalize

import (
	"github.com/gsaugg/compare/internal/classify"
	"github.com/gsaugg/compare/internal/config"
	"github.com/gsaugg/compare/internal/domain"
)

// KeywordValidator drops listings below the price floor and listings whose
// title, category, or tags hit the exclusion lists (trading cards, RC gear,
// and other non-blaster stock the same shops sell).
type KeywordValidator struct {
	minPrice float64
}

// NewKeywordValidator builds the validator shared by all platforms.
func NewKeywordValidator(cfg config.QualityConfig) *KeywordValidator {
	return &KeywordValidator{minPrice: cfg.MinPrice}
}

// Validate returns nil to keep the item or the reason it was dropped.
func (v *KeywordValidator) Validate(item domain.Item) *domain.FilteredListing {
	if item.Price < v.minPrice {
		return &domain.FilteredListing{Title: item.Title, Reason: "price"}
	}
	if excl := classify.ExclusionFor(item.Title, item.Category, item.Tags); excl != nil {
		return &domain.FilteredListing{
			Title:    item.Title,
			Reason:   excl.Type,
			Keyword:  excl.Keyword,
			Category: excl.Category,
		}
	}
	return nil
}
