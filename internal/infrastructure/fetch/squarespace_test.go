package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gsaugg/compare/internal/config"
)

func TestSquarespaceFetchOffsetPaging(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("offset") {
		case "0":
			fmt.Fprint(w, `{"items":[{"id":"a","title":"First"},{"id":"b","title":"Second"}]}`)
		case "20":
			fmt.Fprint(w, `{"items":[{"id":"c","title":"Third"}]}`)
		default:
			fmt.Fprint(w, `{"items":[]}`)
		}
	}))
	defer server.Close()

	f := NewSquarespace(testFetchConfig(), testLogger())
	products, err := f.Fetch(context.Background(), config.Store{ID: "s1", Name: "Test", URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
}

func TestSquarespaceFetchHandlesTrailingJunk(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "0" {
			fmt.Fprint(w, `{"items":[{"id":"a","title":"Only {braces} inside"}]}<!-- trailing junk -->`)
			return
		}
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	f := NewSquarespace(testFetchConfig(), testLogger())
	products, err := f.Fetch(context.Background(), config.Store{ID: "s1", Name: "Test", URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	clean := []byte(`{"a":1}`)
	if got := extractJSON(clean); string(got) != `{"a":1}` {
		t.Fatalf("valid JSON must pass through, got %s", got)
	}

	junk := []byte(`{"a":{"b":"}"},"c":2}trailing`)
	if got := extractJSON(junk); string(got) != `{"a":{"b":"}"},"c":2}` {
		t.Fatalf("unexpected extraction: %s", got)
	}
}
