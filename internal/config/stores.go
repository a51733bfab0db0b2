package config

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
)

// Store describes one storefront in the stores.json registry.
type Store struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Platform string `json:"platform"`
	Enabled  *bool  `json:"enabled,omitempty"` // absent means enabled
}

// IsEnabled reports whether the store should be scraped.
func (s Store) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

type storesFile struct {
	Stores []Store `json:"stores"`
}

// LoadStores reads the store registry, keeping only enabled stores with safe
// URLs. Stores with private or malformed addresses are skipped with a warning.
func LoadStores(path string) ([]Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stores file: %w", err)
	}

	var file storesFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse stores file: %w", err)
	}

	stores := make([]Store, 0, len(file.Stores))
	for _, s := range file.Stores {
		if !s.IsEnabled() {
			continue
		}
		if !IsSafeURL(s.URL) {
			log.Printf("config: skipping store %q: invalid or unsafe URL", s.Name)
			continue
		}
		s.URL = strings.TrimRight(s.URL, "/")
		if s.Platform == "" {
			s.Platform = "shopify"
		}
		stores = append(stores, s)
	}

	return stores, nil
}

// StoreNames returns the storeId -> display name mapping used by the projector.
func StoreNames(stores []Store) map[string]string {
	names := make(map[string]string, len(stores))
	for _, s := range stores {
		names[s.ID] = s.Name
	}
	return names
}

// IsSafeURL rejects URLs that resolve to local or private addresses so a
// poisoned stores.json cannot point the scraper at internal services.
func IsSafeURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	host := parsed.Hostname()
	if host == "" {
		return false
	}
	switch host {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0":
		return false
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return false
		}
	}

	return true
}
