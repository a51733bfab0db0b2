package fetch

import (
	"io"
	"log/slog"
	"time"

	"github.com/gsaugg/compare/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFetchConfig() config.FetchConfig {
	return config.FetchConfig{
		RequestDelay:   time.Millisecond,
		ShopifyDelay:   time.Millisecond,
		RequestTimeout: 5 * time.Second,
		MaxPages:       10,
		UserAgent:      "gsau-test/1.0",
	}
}
