// Package usecase はキャッシュ優先の市場データ取得を実装します。
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"dividend_backend/internal/feature/marketdata/domain/entity"
	"dividend_backend/internal/platform/cache"
	"dividend_backend/internal/shared/calendar"
	"dividend_backend/internal/shared/ratelimiter"
)

const (
	// DefaultConcurrency は同時に処理する銘柄数の既定値です。
	DefaultConcurrency = 4
	// DefaultTimeout は FetchAll 全体の既定タイムアウトです。
	DefaultTimeout = 2 * time.Minute
	// DefaultLookback は配当履歴を遡る既定の期間（2年）です。
	DefaultLookback = 2 * 365 * 24 * time.Hour
)

// MarketSource は外部の市場データ API を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketSource interface {
	GetPrice(ctx context.Context, ticker string) (decimal.Decimal, error)
	GetDividends(ctx context.Context, ticker string, from calendar.Date) ([]entity.DividendEvent, error)
}

// Cache は取得結果を保存するキャッシュです。
type Cache interface {
	Get(ctx context.Context, key string, kind cache.Kind) ([]byte, bool)
	Put(ctx context.Context, key string, kind cache.Kind, payload []byte) error
}

// Config は Fetcher の並行度と期限を指定します。
type Config struct {
	Concurrency int
	Timeout     time.Duration
	Lookback    time.Duration
}

// TickerData は1銘柄分の取得結果です。株価と配当はそれぞれ独立に成功・失敗します。
type TickerData struct {
	Ticker       string
	Price        entity.PriceRecord
	PriceErr     error
	Dividends    entity.DividendHistory
	DividendsErr error
}

// HasPrice は株価の取得に成功したかを返します。
func (d TickerData) HasPrice() bool { return d.PriceErr == nil && d.Price.Ticker != "" }

// Fetcher はキャッシュを優先して株価と配当履歴を取得します。
// 同じ (種別, 銘柄) への同時リクエストは1回のソース呼び出しにまとめられます。
type Fetcher struct {
	source      MarketSource
	cache       Cache
	rateLimiter ratelimiter.RateLimiterInterface
	cfg         Config
	group       singleflight.Group
	now         func() time.Time
}

// NewFetcher は新しい Fetcher を生成します。ゼロ値の設定は既定値で補われます。
func NewFetcher(source MarketSource, c Cache, rl ratelimiter.RateLimiterInterface, cfg Config) *Fetcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	if rl == nil {
		rl = ratelimiter.Unlimited{}
	}
	return &Fetcher{source: source, cache: c, rateLimiter: rl, cfg: cfg, now: time.Now}
}

// WithClock は時刻の取得元を差し替えます。テスト用です。
func (f *Fetcher) WithClock(now func() time.Time) *Fetcher {
	f.now = now
	return f
}

// FetchPrice は銘柄の株価を返します。新鮮なキャッシュがあればソースは呼び出しません。
func (f *Fetcher) FetchPrice(ctx context.Context, ticker string) (entity.PriceRecord, error) {
	var rec entity.PriceRecord
	if f.cached(ctx, ticker, cache.KindPrice, &rec) {
		return rec, nil
	}

	v, err := f.flight(ctx, cache.KindPrice, ticker, func(ctx context.Context) (any, error) {
		var rec entity.PriceRecord
		if f.cached(ctx, ticker, cache.KindPrice, &rec) {
			return rec, nil
		}
		if err := f.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		p, err := f.source.GetPrice(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if !p.IsPositive() {
			return nil, fmt.Errorf("%w for %s (got %s)", ErrNoPrice, ticker, p)
		}
		rec = entity.PriceRecord{Ticker: ticker, Price: p, FetchedAt: f.now().UTC()}
		f.store(ctx, ticker, cache.KindPrice, rec)
		return rec, nil
	})
	if err != nil {
		return entity.PriceRecord{}, unavailable("price", ticker, err)
	}
	return v.(entity.PriceRecord), nil
}

// FetchDividends は lookback 期間内の配当履歴を権利落ち日の昇順で返します。
// 配当が1件もない場合は空の履歴を返し、エラーにはなりません。
func (f *Fetcher) FetchDividends(ctx context.Context, ticker string, lookback time.Duration) (entity.DividendHistory, error) {
	if lookback <= 0 {
		lookback = f.cfg.Lookback
	}
	from := calendar.Of(f.now().UTC().Add(-lookback))

	var events []entity.DividendEvent
	if f.cached(ctx, ticker, cache.KindDividend, &events) {
		return entity.SortDividends(events).Since(from), nil
	}

	v, err := f.flight(ctx, cache.KindDividend, ticker, func(ctx context.Context) (any, error) {
		var events []entity.DividendEvent
		if f.cached(ctx, ticker, cache.KindDividend, &events) {
			return entity.SortDividends(events), nil
		}
		if err := f.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		events, err := f.source.GetDividends(ctx, ticker, from)
		if err != nil {
			return nil, err
		}
		for i := range events {
			events[i].Ticker = ticker
		}
		h := entity.SortDividends(events)
		f.store(ctx, ticker, cache.KindDividend, h)
		return h, nil
	})
	if err != nil {
		return nil, unavailable("dividends", ticker, err)
	}
	return v.(entity.DividendHistory).Since(from), nil
}

// FetchAll は重複を除いた全銘柄について株価と配当を並行に取得します。
// 1銘柄の失敗は他の銘柄に影響しません。実行全体のタイムアウトに達した場合も、
// それまでに成功した結果は返されます。
func (f *Fetcher) FetchAll(ctx context.Context, tickers []string) map[string]TickerData {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	unique := distinct(tickers)
	results := make(map[string]TickerData, len(unique))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(f.cfg.Concurrency)

	for _, t := range unique {
		g.Go(func() error {
			d := TickerData{Ticker: t}
			d.Price, d.PriceErr = f.FetchPrice(ctx, t)
			d.Dividends, d.DividendsErr = f.FetchDividends(ctx, t, f.cfg.Lookback)

			if d.PriceErr != nil {
				slog.Warn("failed to fetch price", "ticker", t, "error", d.PriceErr)
			}
			if d.DividendsErr != nil {
				slog.Warn("failed to fetch dividends", "ticker", t, "error", d.DividendsErr)
			}

			mu.Lock()
			results[t] = d
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		slog.Warn("fetch run ended early", "tickers", len(unique), "error", err)
	}
	return results
}

// flight は (kind, ticker) ごとに fn の実行を1回にまとめます。
// fn は呼び出し側のキャンセルから切り離され、cfg.Timeout を上限に実行されます。
// 呼び出し側の ctx が終了した場合は結果を待たずに戻ります。
func (f *Fetcher) flight(ctx context.Context, kind cache.Kind, ticker string, fn func(context.Context) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := f.group.DoChan(string(kind)+":"+ticker, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.cfg.Timeout)
		defer cancel()
		return fn(sctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

// cached は新鮮なキャッシュを v にデコードできた場合に true を返します。
func (f *Fetcher) cached(ctx context.Context, ticker string, kind cache.Kind, v any) bool {
	b, ok := f.cache.Get(ctx, ticker, kind)
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		slog.Debug("cached payload undecodable, refetching", "ticker", ticker, "kind", kind, "error", err)
		return false
	}
	return true
}

// store は取得結果をキャッシュに保存します。保存の失敗は取得結果には影響しません。
func (f *Fetcher) store(ctx context.Context, ticker string, kind cache.Kind, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode market data", "ticker", ticker, "kind", kind, "error", err)
		return
	}
	if err := f.cache.Put(ctx, ticker, kind, b); err != nil {
		slog.Error("failed to cache market data", "ticker", ticker, "kind", kind, "error", err)
	}
}

func unavailable(what, ticker string, err error) error {
	if errors.Is(err, ErrDataUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %w", ErrDataUnavailable, what, ticker, err)
}

func distinct(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
