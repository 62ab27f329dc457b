package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	hentity "dividend_backend/internal/feature/holdings/domain/entity"
	mdusecase "dividend_backend/internal/feature/marketdata/usecase"
	"dividend_backend/internal/feature/projection/domain/entity"
	"dividend_backend/internal/shared/calendar"
)

// ErrNoHoldings は計算対象の保有が無いことを示します。
var ErrNoHoldings = errors.New("no holdings to project")

// MarketFetcher は銘柄ごとの市場データ取得を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider.
type MarketFetcher interface {
	FetchAll(ctx context.Context, tickers []string) map[string]mdusecase.TickerData
}

// SnapshotSaver はスナップショットの保存先です。
type SnapshotSaver interface {
	Save(ctx context.Context, s entity.Snapshot) error
}

// HoldingsLoader は保有ファイルの読み込みを抽象化します。
type HoldingsLoader interface {
	LoadFile(path string) ([]hentity.Holding, error)
}

// RefreshOptions は1回の更新処理の指定です。
type RefreshOptions struct {
	// Save が true の場合、計算したスナップショットを履歴に保存します。
	Save bool
	// Months は予測期間です。0 の場合は既定値を使います。
	Months int
}

// RefreshResult は更新処理の結果です。
type RefreshResult struct {
	// RunID はログと結果を対応付けるための実行ごとの識別子です。
	RunID string `json:"run_id"`
	entity.Result
	Saved    bool     `json:"saved"`
	Degraded []string `json:"degraded,omitempty"`
}

// RefreshUsecase は保有の正規化、市場データ取得、計算、履歴保存を順に実行します。
type RefreshUsecase struct {
	fetcher MarketFetcher
	saver   SnapshotSaver
	loader  HoldingsLoader
	months  int
	now     func() time.Time
}

// NewRefreshUsecase は新しい RefreshUsecase を生成します。
func NewRefreshUsecase(fetcher MarketFetcher, saver SnapshotSaver, loader HoldingsLoader, months int) *RefreshUsecase {
	if months <= 0 {
		months = DefaultMonths
	}
	return &RefreshUsecase{fetcher: fetcher, saver: saver, loader: loader, months: months, now: time.Now}
}

// WithClock は時刻の取得元を差し替えます。テスト用です。
func (u *RefreshUsecase) WithClock(now func() time.Time) *RefreshUsecase {
	u.now = now
	return u
}

// RunFile は path の保有ファイルを読み込んで Run を実行します。
func (u *RefreshUsecase) RunFile(ctx context.Context, path string, opts RefreshOptions) (RefreshResult, error) {
	hs, err := u.loader.LoadFile(path)
	if err != nil {
		return RefreshResult{}, err
	}
	return u.Run(ctx, hs, opts)
}

// Run は1回分の更新処理を実行します。
// 全銘柄の取得が完了（または失敗として記録）してから計算に進みます。
// 保存に失敗した場合は計算結果とともにエラーを返します。
func (u *RefreshUsecase) Run(ctx context.Context, holdings []hentity.Holding, opts RefreshOptions) (RefreshResult, error) {
	hs := hentity.MergeHoldings(holdings)
	if len(hs) == 0 {
		return RefreshResult{}, ErrNoHoldings
	}
	months := opts.Months
	if months <= 0 {
		months = u.months
	}

	runID := uuid.NewString()
	start := time.Now()
	data := u.fetcher.FetchAll(ctx, hentity.Tickers(hs))
	res := Compute(InputFromFetch(hs, data, months, calendar.Of(u.now())))

	out := RefreshResult{RunID: runID, Result: res, Degraded: res.Snapshot.Degraded()}
	slog.Info("refresh computed",
		"run_id", runID,
		"positions", len(res.Positions),
		"degraded", len(out.Degraded),
		"total_value", res.Snapshot.TotalValue.StringFixed(2),
		"elapsed", time.Since(start),
	)

	if !opts.Save {
		return out, nil
	}
	if err := u.saver.Save(ctx, res.Snapshot); err != nil {
		slog.Error("failed to save snapshot", "run_id", runID, "date", res.Snapshot.Date, "error", err)
		return out, fmt.Errorf("save snapshot %s: %w", res.Snapshot.Date, err)
	}
	out.Saved = true
	return out, nil
}
