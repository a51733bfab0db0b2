// Package fetch implements the per-platform storefront crawlers. Each fetcher
// walks the platform's public product API and returns raw JSON payloads; all
// decoding beyond pagination bookkeeping is left to the normalizers.
package fetch

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/gsaugg/compare/internal/config"
)

// Client is a rate-limited HTTP client shared by the fetchers of one
// platform. The limiter enforces the politeness delay between requests to
// the same platform.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// NewClient builds a client honoring the configured timeout, user agent, and
// inter-request delay.
func NewClient(cfg config.FetchConfig, delay time.Duration) *Client {
	if delay <= 0 {
		delay = cfg.RequestDelay
	}
	httpClient := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Get performs a rate-limited GET. The first request goes out immediately;
// subsequent ones wait out the politeness delay.
func (c *Client) Get(ctx context.Context, url string) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.http.R().SetContext(ctx).Get(url)
}

// sleepCtx pauses for d unless the context is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
