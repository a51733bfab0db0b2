package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gsaugg/compare/internal/config"
)

func TestWooCommerceFetchDetectsLegacyPathAndEnrichesVariations(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/wc/store/v1/products":
			http.NotFound(w, r)
		case "/wp-json/wc/store/products":
			q := r.URL.Query()
			if q.Get("per_page") == "1" {
				fmt.Fprint(w, `[]`)
				return
			}
			if q.Get("type") == "variation" {
				if q.Get("page") == "1" {
					fmt.Fprint(w, `[{"id":11,"parent":10,"name":"Variable Thing","type":"variation","categories":[],"tags":[]}]`)
				} else {
					fmt.Fprint(w, `[]`)
				}
				return
			}
			if q.Get("page") == "1" {
				fmt.Fprint(w, `[
					{"id":1,"name":"Simple Thing","type":"simple"},
					{"id":10,"name":"Variable Thing","type":"variable","categories":[{"name":"Rifles"}],"tags":[{"name":"gbb"}]}
				]`)
			} else {
				fmt.Fprint(w, `[]`)
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := NewWooCommerce(testFetchConfig(), testLogger())
	products, err := f.Fetch(context.Background(), config.Store{ID: "s1", Name: "Test", URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	// Simple product plus enriched variation; the variable parent itself is
	// not emitted.
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	var variation struct {
		ID         int64 `json:"id"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
		Tags []struct {
			Name string `json:"name"`
		} `json:"tags"`
	}
	if err := json.Unmarshal(products[1], &variation); err != nil {
		t.Fatalf("decode variation: %v", err)
	}
	if variation.ID != 11 {
		t.Fatalf("unexpected variation id: %d", variation.ID)
	}
	if len(variation.Categories) != 1 || variation.Categories[0].Name != "Rifles" {
		t.Fatalf("variation did not inherit parent categories: %+v", variation.Categories)
	}
	if len(variation.Tags) != 1 || variation.Tags[0].Name != "gbb" {
		t.Fatalf("variation did not inherit parent tags: %+v", variation.Tags)
	}
}

func TestWooCommerceShortPageEndsPagination(t *testing.T) {
	t.Parallel()

	var listingCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("per_page") == "1" {
			fmt.Fprint(w, `[]`)
			return
		}
		listingCalls++
		// One short page: pagination must stop without requesting page 2.
		fmt.Fprint(w, `[{"id":1,"name":"Only Thing","type":"simple"}]`)
	}))
	defer server.Close()

	f := NewWooCommerce(testFetchConfig(), testLogger())
	products, err := f.Fetch(context.Background(), config.Store{ID: "s1", Name: "Test", URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if listingCalls != 1 {
		t.Fatalf("short page should end pagination, got %d listing calls", listingCalls)
	}
}
