// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"dividend_backend/internal/feature/marketdata/usecase"
	"dividend_backend/internal/platform/cache"
	"dividend_backend/internal/platform/config"
	"dividend_backend/internal/platform/externalapi/twelvedata"
	infrahttp "dividend_backend/internal/platform/http"
	"dividend_backend/internal/shared/ratelimiter"
)

// NewMarket creates a fully configured TwelveDataMarket with HTTP client.
func NewMarket(cfg config.Config) *twelvedata.TwelveDataMarket {
	httpClient := infrahttp.NewHTTPClient(cfg.TwelveData.Timeout, cfg.FetchConcurrency)
	return twelvedata.NewTwelveDataMarket(cfg.TwelveData, httpClient)
}

// NewFetcher wires the market source, the cache and the API rate limit into a Fetcher.
func NewFetcher(cfg config.Config, source usecase.MarketSource, c *cache.MarketCache) *usecase.Fetcher {
	var rl ratelimiter.RateLimiterInterface
	if cfg.APIRateLimit > 0 {
		rl = ratelimiter.NewRateLimiter(cfg.APIRateLimit, time.Minute)
	}
	return usecase.NewFetcher(source, c, rl, usecase.Config{
		Concurrency: cfg.FetchConcurrency,
		Timeout:     cfg.FetchTimeout,
		Lookback:    cfg.DividendLookback,
	})
}
