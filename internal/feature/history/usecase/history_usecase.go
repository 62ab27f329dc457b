// Package usecase は日次スナップショット履歴の参照とトレンド分析を実装します。
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"dividend_backend/internal/feature/history/domain"
	"dividend_backend/internal/feature/projection/domain/entity"
	"dividend_backend/internal/shared/calendar"
)

// SnapshotRepository はスナップショットの永続化層を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SnapshotRepository interface {
	// Save は同じ日付のスナップショットを原子的に置き換えます。
	Save(ctx context.Context, s entity.Snapshot) error
	// Load は存在しない場合 domain.ErrSnapshotNotFound、解釈できない場合 domain.ErrMalformedRecord を返します。
	Load(ctx context.Context, date calendar.Date) (entity.Snapshot, error)
	// Dates は保存済みの日付を昇順で返します。
	Dates(ctx context.Context) ([]calendar.Date, error)
}

// Gap は一覧から除外された保存済みレコードです。
type Gap struct {
	Date   calendar.Date `json:"date"`
	Reason string        `json:"reason"`
}

// Listing は期間指定の一覧結果です。Snapshots は日付の昇順で重複がありません。
type Listing struct {
	Snapshots []entity.Snapshot `json:"snapshots"`
	Gaps      []Gap             `json:"gaps,omitempty"`
}

// Summary は履歴全体の概要です。
type Summary struct {
	Count int           `json:"count"`
	First calendar.Date `json:"first"`
	Last  calendar.Date `json:"last"`
}

// HistoryUsecase は日次スナップショットの保存と参照を提供します。
type HistoryUsecase struct {
	repo SnapshotRepository
}

// NewHistoryUsecase は新しい HistoryUsecase を生成します。
func NewHistoryUsecase(repo SnapshotRepository) *HistoryUsecase {
	return &HistoryUsecase{repo: repo}
}

// Save はスナップショットを保存します。同じ日付の既存スナップショットは上書きされます。
func (u *HistoryUsecase) Save(ctx context.Context, s entity.Snapshot) error {
	start := time.Now()
	if err := u.repo.Save(ctx, s); err != nil {
		return err
	}
	slog.Info("snapshot saved", "date", s.Date, "positions", len(s.Positions), "elapsed", time.Since(start))
	return nil
}

// Load は指定日のスナップショットを返します。
func (u *HistoryUsecase) Load(ctx context.Context, date calendar.Date) (entity.Snapshot, error) {
	return u.repo.Load(ctx, date)
}

// Latest は最も新しい日付のスナップショットを返します。
// 最新のレコードが壊れている場合は、読み込める直近のものまで遡ります。
func (u *HistoryUsecase) Latest(ctx context.Context) (entity.Snapshot, error) {
	dates, err := u.repo.Dates(ctx)
	if err != nil {
		return entity.Snapshot{}, err
	}
	for i := len(dates) - 1; i >= 0; i-- {
		s, err := u.repo.Load(ctx, dates[i])
		if errors.Is(err, domain.ErrMalformedRecord) {
			slog.Warn("skipping malformed snapshot", "date", dates[i], "error", err)
			continue
		}
		return s, err
	}
	return entity.Snapshot{}, domain.ErrSnapshotNotFound
}

// List は [from, to] に含まれるスナップショットを日付の昇順で返します。
// ゼロ値の from / to は下限・上限なしを意味します。
// 解釈できないレコードは除外し、Gaps に記録します。
func (u *HistoryUsecase) List(ctx context.Context, from, to calendar.Date) (Listing, error) {
	dates, err := u.repo.Dates(ctx)
	if err != nil {
		return Listing{}, err
	}

	out := Listing{Snapshots: []entity.Snapshot{}}
	for _, d := range inRange(dates, from, to) {
		s, err := u.repo.Load(ctx, d)
		switch {
		case err == nil:
			out.Snapshots = append(out.Snapshots, s)
		case errors.Is(err, domain.ErrMalformedRecord):
			slog.Warn("skipping malformed snapshot", "date", d, "error", err)
			out.Gaps = append(out.Gaps, Gap{Date: d, Reason: err.Error()})
		case errors.Is(err, domain.ErrSnapshotNotFound):
			// 一覧取得後に削除された
			continue
		default:
			return Listing{}, err
		}
	}
	return out, nil
}

// Dates は保存済みの日付を昇順で返します。
func (u *HistoryUsecase) Dates(ctx context.Context) ([]calendar.Date, error) {
	return u.repo.Dates(ctx)
}

// Summary は保存件数と最初・最後の日付を返します。
func (u *HistoryUsecase) Summary(ctx context.Context) (Summary, error) {
	dates, err := u.repo.Dates(ctx)
	if err != nil {
		return Summary{}, err
	}
	if len(dates) == 0 {
		return Summary{}, nil
	}
	return Summary{Count: len(dates), First: dates[0], Last: dates[len(dates)-1]}, nil
}

// inRange は昇順・重複なしに整えた日付のうち [from, to] に入るものを返します。
func inRange(dates []calendar.Date, from, to calendar.Date) []calendar.Date {
	sorted := make([]calendar.Date, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	out := make([]calendar.Date, 0, len(sorted))
	for _, d := range sorted {
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		if n := len(out); n > 0 && out[n-1] == d {
			continue
		}
		out = append(out, d)
	}
	return out
}
