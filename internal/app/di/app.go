package di

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	historyusecase "dividend_backend/internal/feature/history/usecase"
	holdingsadapters "dividend_backend/internal/feature/holdings/adapters"
	projectionusecase "dividend_backend/internal/feature/projection/usecase"
	"dividend_backend/internal/platform/config"
	"dividend_backend/internal/platform/http/handler"
)

// App holds the use cases shared by the server and the refresh command.
type App struct {
	Refresh *projectionusecase.RefreshUsecase
	History *historyusecase.HistoryUsecase
	Trend   *historyusecase.TrendAnalyzer

	cfg config.Config
	rdb *redis.Client
	gdb *gorm.DB
}

// NewApp builds every component from cfg. Close releases the connections it opened.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	store, rdb := NewCacheStore(ctx, cfg)
	marketCache := NewMarketCache(cfg, store)
	fetcher := NewFetcher(cfg, NewMarket(cfg), marketCache)

	repo, gdb, err := NewSnapshotRepository(cfg)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, err
	}
	history := historyusecase.NewHistoryUsecase(repo)

	return &App{
		Refresh: projectionusecase.NewRefreshUsecase(fetcher, history, holdingsadapters.NewCSVLoader(), cfg.ProjectionMonths),
		History: history,
		Trend:   historyusecase.NewTrendAnalyzer(history),
		cfg:     cfg,
		rdb:     rdb,
		gdb:     gdb,
	}, nil
}

// HealthChecks reports the reachability of the data directory and, when in use, Redis and the database.
func (a *App) HealthChecks() []handler.Check {
	checks := []handler.Check{{
		Name: "data_dir",
		Fn: func(context.Context) error {
			_, err := os.Stat(a.cfg.DataDir)
			if errors.Is(err, os.ErrNotExist) {
				// created on first write
				return nil
			}
			return err
		},
	}}
	if a.rdb != nil {
		checks = append(checks, handler.Check{
			Name: "redis",
			Fn:   func(ctx context.Context) error { return a.rdb.Ping(ctx).Err() },
		})
	}
	if a.gdb != nil {
		checks = append(checks, handler.Check{
			Name: "database",
			Fn: func(ctx context.Context) error {
				sqlDB, err := a.gdb.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		})
	}
	return checks
}

// Close releases the Redis client and the database connection if they were opened.
func (a *App) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			slog.Error("Failed to close Redis client", "error", err)
		}
	}
	if a.gdb != nil {
		if sqlDB, err := a.gdb.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("Failed to close database", "error", err)
			}
		}
	}
}
