package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"dividend_backend/internal/feature/projection/domain/entity"
	"dividend_backend/internal/shared/calendar"
)

const (
	// DefaultTrendDays は window を指定しない場合の集計期間です。
	DefaultTrendDays = 90

	StatusOK                  = "ok"
	StatusInsufficientHistory = "insufficient_history"

	pctPlaces = 4
)

// TrendPoint は日付順で隣り合う 2 つのスナップショットの差分です。
// Pct はパーセント表記で、前回の評価額が 0 のとき無効です。
type TrendPoint struct {
	From                calendar.Date       `json:"from"`
	To                  calendar.Date       `json:"to"`
	Value               decimal.Decimal     `json:"value"`
	Delta               decimal.Decimal     `json:"delta"`
	Pct                 decimal.NullDecimal `json:"pct"`
	AnnualDividend      decimal.Decimal     `json:"annual_dividend"`
	AnnualDividendDelta decimal.Decimal     `json:"annual_dividend_delta"`
}

// PeriodSummary は期間内の最初と最後のスナップショットを比較した結果です。
type PeriodSummary struct {
	Start                   calendar.Date       `json:"start"`
	End                     calendar.Date       `json:"end"`
	StartValue              decimal.Decimal     `json:"start_value"`
	EndValue                decimal.Decimal     `json:"end_value"`
	ValueChange             decimal.Decimal     `json:"value_change"`
	ValueChangePct          decimal.NullDecimal `json:"value_change_pct"`
	StartAnnualDividend     decimal.Decimal     `json:"start_annual_dividend"`
	EndAnnualDividend       decimal.Decimal     `json:"end_annual_dividend"`
	AnnualDividendChange    decimal.Decimal     `json:"annual_dividend_change"`
	AnnualDividendChangePct decimal.NullDecimal `json:"annual_dividend_change_pct"`
}

// TrendResult は Analyze の結果です。
// Status が insufficient_history のとき Points は空で Summary は nil です。
type TrendResult struct {
	Status     string         `json:"status"`
	WindowDays int            `json:"window_days"`
	From       calendar.Date  `json:"from"`
	To         calendar.Date  `json:"to"`
	Snapshots  int            `json:"snapshots"`
	Points     []TrendPoint   `json:"points"`
	Summary    *PeriodSummary `json:"summary,omitempty"`
	Gaps       []Gap          `json:"gaps,omitempty"`
}

// SnapshotLister は Analyze が必要とする一覧取得です。
type SnapshotLister interface {
	List(ctx context.Context, from, to calendar.Date) (Listing, error)
}

// TrendAnalyzer は保存済みスナップショットから推移を計算します。
type TrendAnalyzer struct {
	history SnapshotLister
	now     func() time.Time
}

// NewTrendAnalyzer は新しい TrendAnalyzer を生成します。
func NewTrendAnalyzer(history SnapshotLister) *TrendAnalyzer {
	return &TrendAnalyzer{history: history, now: time.Now}
}

// WithClock は「今日」を決める時計を差し替えます（テスト用）。
func (a *TrendAnalyzer) WithClock(now func() time.Time) *TrendAnalyzer {
	a.now = now
	return a
}

// Analyze は [today-windowDays, today] のスナップショットから推移を計算します。
// windowDays が 0 以下のときは DefaultTrendDays を使います。
// スナップショットが 2 件未満のときはエラーではなく insufficient_history を返します。
func (a *TrendAnalyzer) Analyze(ctx context.Context, windowDays int) (TrendResult, error) {
	if windowDays <= 0 {
		windowDays = DefaultTrendDays
	}
	to := calendar.Today(a.now)
	from := to.AddDays(-windowDays)

	listing, err := a.history.List(ctx, from, to)
	if err != nil {
		return TrendResult{}, err
	}
	return Trend(listing.Snapshots, listing.Gaps, windowDays, from, to), nil
}

// Trend は日付昇順のスナップショット列から TrendResult を組み立てます。
func Trend(snaps []entity.Snapshot, gaps []Gap, windowDays int, from, to calendar.Date) TrendResult {
	res := TrendResult{
		Status:     StatusOK,
		WindowDays: windowDays,
		From:       from,
		To:         to,
		Snapshots:  len(snaps),
		Points:     []TrendPoint{},
		Gaps:       gaps,
	}
	if len(snaps) < 2 {
		res.Status = StatusInsufficientHistory
		return res
	}

	for i := 1; i < len(snaps); i++ {
		prev, next := snaps[i-1], snaps[i]
		delta, pct := change(prev.TotalValue, next.TotalValue)
		res.Points = append(res.Points, TrendPoint{
			From:                prev.Date,
			To:                  next.Date,
			Value:               next.TotalValue,
			Delta:               delta,
			Pct:                 pct,
			AnnualDividend:      next.TotalAnnualDividend,
			AnnualDividendDelta: next.TotalAnnualDividend.Sub(prev.TotalAnnualDividend),
		})
	}

	// 丸め誤差が累積しないよう、区間の差分の合計ではなく最初と最後を直接比較する
	first, last := snaps[0], snaps[len(snaps)-1]
	valueChange, valuePct := change(first.TotalValue, last.TotalValue)
	divChange, divPct := change(first.TotalAnnualDividend, last.TotalAnnualDividend)
	res.Summary = &PeriodSummary{
		Start:                   first.Date,
		End:                     last.Date,
		StartValue:              first.TotalValue,
		EndValue:                last.TotalValue,
		ValueChange:             valueChange,
		ValueChangePct:          valuePct,
		StartAnnualDividend:     first.TotalAnnualDividend,
		EndAnnualDividend:       last.TotalAnnualDividend,
		AnnualDividendChange:    divChange,
		AnnualDividendChangePct: divPct,
	}
	return res
}

// change は prev から next への差分とパーセント変化を返します。
func change(prev, next decimal.Decimal) (decimal.Decimal, decimal.NullDecimal) {
	delta := next.Sub(prev)
	if prev.IsZero() {
		return delta, decimal.NullDecimal{}
	}
	pct := delta.Div(prev).Mul(decimal.NewFromInt(100)).Round(pctPlaces)
	return delta, decimal.NewNullDecimal(pct)
}
