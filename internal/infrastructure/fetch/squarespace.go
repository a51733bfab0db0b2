package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gsaugg/compare/internal/config"
)

const squarespacePageSize = 20

// Squarespace crawls the /store?format=json endpoint using offset paging.
// Some installs append trailing garbage after the JSON document, so decoding
// falls back to brace balancing.
type Squarespace struct {
	client   *Client
	maxPages int
	logger   *slog.Logger
}

// NewSquarespace builds the Squarespace fetcher.
func NewSquarespace(cfg config.FetchConfig, logger *slog.Logger) *Squarespace {
	return &Squarespace{
		client:   NewClient(cfg, cfg.RequestDelay),
		maxPages: cfg.MaxPages,
		logger:   logger,
	}
}

// Platform identifies the strategy inside the registry.
func (f *Squarespace) Platform() string {
	return "squarespace"
}

// Fetch pages through the store until an empty page or the page cap. On
// error it returns the products collected so far together with the error.
func (f *Squarespace) Fetch(ctx context.Context, store config.Store) ([]json.RawMessage, error) {
	var products []json.RawMessage

	for page := 0; page < f.maxPages; page++ {
		offset := page * squarespacePageSize
		url := fmt.Sprintf("%s/store?format=json&offset=%d", store.URL, offset)

		resp, err := f.client.Get(ctx, url)
		if err != nil {
			return products, fmt.Errorf("offset %d: %w", offset, err)
		}
		if !resp.IsSuccess() {
			return products, fmt.Errorf("offset %d: unexpected status %s", offset, resp.Status())
		}

		var payload struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(extractJSON(resp.Body()), &payload); err != nil {
			return products, fmt.Errorf("offset %d: decode: %w", offset, err)
		}
		if len(payload.Items) == 0 {
			break
		}

		products = append(products, payload.Items...)
		f.logger.Debug("squarespace page fetched", "store", store.Name, "offset", offset, "products", len(payload.Items))
	}

	return products, nil
}

// extractJSON trims anything following the top-level JSON object by balancing
// braces. Returns the input unchanged when no balanced object is found.
func extractJSON(body []byte) []byte {
	if json.Valid(body) {
		return body
	}

	depth := 0
	inString := false
	escaped := false
	for i, c := range body {
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 && i > 0 {
					return body[:i+1]
				}
			}
		}
	}
	return body
}
