// Package entity は市場データ（株価・配当）のドメインエンティティを定義します。
package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"dividend_backend/internal/shared/calendar"
)

// PriceRecord は銘柄の最新株価です。
type PriceRecord struct {
	Ticker    string          `json:"ticker"`
	Price     decimal.Decimal `json:"price"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// DividendEvent は1回分の配当（権利落ち日と1株あたり金額）です。
type DividendEvent struct {
	Ticker         string          `json:"ticker"`
	ExDate         calendar.Date   `json:"ex_date"`
	AmountPerShare decimal.Decimal `json:"amount_per_share"`
}

// DividendHistory は権利落ち日の昇順に並んだ配当イベントの列です。
type DividendHistory []DividendEvent

// SortDividends は権利落ち日の昇順に並べ替え、同じ日付の重複を取り除きます。
// 重複した場合は後に現れたイベントを残します。
func SortDividends(events []DividendEvent) DividendHistory {
	out := make(DividendHistory, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExDate.Before(out[j].ExDate) })

	dedup := out[:0]
	for _, e := range out {
		if n := len(dedup); n > 0 && dedup[n-1].ExDate == e.ExDate {
			dedup[n-1] = e
			continue
		}
		dedup = append(dedup, e)
	}
	return dedup
}

// Since は from 以降（from を含む）のイベントを返します。
func (h DividendHistory) Since(from calendar.Date) DividendHistory {
	i := sort.Search(len(h), func(i int) bool { return !h[i].ExDate.Before(from) })
	return h[i:]
}

// Last は最後のイベントを返します。空の場合は false を返します。
func (h DividendHistory) Last() (DividendEvent, bool) {
	if len(h) == 0 {
		return DividendEvent{}, false
	}
	return h[len(h)-1], true
}
