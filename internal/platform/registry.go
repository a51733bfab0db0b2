// Package platform maps storefront platform names ("shopify", "woocommerce",
// "squarespace") to the strategy implementations that crawl and decode them.
package platform

import (
	"fmt"

	"github.com/gsaugg/compare/internal/ports"
)

// Registry keeps the per-platform fetcher and normalizer strategies.
type Registry struct {
	fetchers    map[string]ports.Fetcher
	normalizers map[string]ports.Normalizer
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fetchers:    map[string]ports.Fetcher{},
		normalizers: map[string]ports.Normalizer{},
	}
}

// RegisterFetcher adds or replaces a fetcher implementation.
func (r *Registry) RegisterFetcher(f ports.Fetcher) {
	r.fetchers[f.Platform()] = f
}

// RegisterNormalizer adds or replaces a normalizer implementation.
func (r *Registry) RegisterNormalizer(n ports.Normalizer) {
	r.normalizers[n.Platform()] = n
}

// Fetcher returns the fetcher for a platform or an error if it is absent.
func (r *Registry) Fetcher(platform string) (ports.Fetcher, error) {
	if f, ok := r.fetchers[platform]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("platform %s has no registered fetcher", platform)
}

// Normalizer returns the normalizer for a platform or an error if it is absent.
func (r *Registry) Normalizer(platform string) (ports.Normalizer, error) {
	if n, ok := r.normalizers[platform]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("platform %s has no registered normalizer", platform)
}
