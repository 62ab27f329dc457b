package main

import (
	"context"
	"log/slog"
	"os"

	"dividend_backend/internal/app/di"
	"dividend_backend/internal/app/router"
	historyhandler "dividend_backend/internal/feature/history/transport/handler"
	projectionhandler "dividend_backend/internal/feature/projection/transport/handler"
	"dividend_backend/internal/platform/config"
	"dividend_backend/internal/platform/logging"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.New(cfg.LogLevel, cfg.LogFormat))

	app, err := di.NewApp(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if cfg.TwelveData.TwelveDataAPIKey == "" {
		slog.Warn("TWELVE_DATA_API_KEY is not set. Market data requests will fail unless cached.")
	}

	// Handler
	refreshH := projectionhandler.NewRefreshHandler(app.Refresh, cfg.PortfolioFile)
	historyH := historyhandler.NewHistoryHandler(app.History, app.Trend, cfg.TrendDays)

	// ルータ生成
	r := router.NewRouter(refreshH, historyH, app.HealthChecks()...)

	slog.Info("listening", "addr", cfg.HTTPAddr, "cache", cfg.CacheBackend, "history", cfg.HistoryBackend)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		slog.Error("server stopped", "error", err)
		app.Close()
		os.Exit(1)
	}
}
