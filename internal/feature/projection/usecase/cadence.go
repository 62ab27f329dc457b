package usecase

import (
	"dividend_backend/internal/feature/marketdata/domain/entity"
	"dividend_backend/internal/shared/calendar"
)

// 配当頻度の判定しきい値（支払い間隔の日数）
const (
	monthlyIntervalMax    = 40
	quarterlyIntervalMax  = 100
	semiAnnualIntervalMax = 200

	// maxProjectedPerTicker は1銘柄あたりの予測件数の上限です。
	maxProjectedPerTicker = 20
)

// Cadence は配当支払いの周期です。
type Cadence struct {
	IntervalDays int
	Frequency    string
}

// InferCadence は連続する権利落ち日の間隔（日数）の最頻値を周期とします。
// 最頻値が複数ある場合は、より最近に現れた間隔を採用します。
// イベントが2件未満の場合は false を返します。
func InferCadence(h entity.DividendHistory) (Cadence, bool) {
	if len(h) < 2 {
		return Cadence{}, false
	}

	intervals := make([]int, 0, len(h)-1)
	counts := make(map[int]int, len(h)-1)
	for i := 1; i < len(h); i++ {
		d := h[i].ExDate.DaysSince(h[i-1].ExDate)
		if d <= 0 {
			continue
		}
		intervals = append(intervals, d)
		counts[d]++
	}
	if len(intervals) == 0 {
		return Cadence{}, false
	}

	best, bestCount := 0, 0
	for i := len(intervals) - 1; i >= 0; i-- {
		if c := counts[intervals[i]]; c > bestCount {
			best, bestCount = intervals[i], c
		}
	}
	return Cadence{IntervalDays: best, Frequency: FrequencyOf(best)}, true
}

// FrequencyOf は間隔の日数を頻度ラベルに変換します。
func FrequencyOf(days int) string {
	switch {
	case days < monthlyIntervalMax:
		return "monthly"
	case days < quarterlyIntervalMax:
		return "quarterly"
	case days < semiAnnualIntervalMax:
		return "semi-annual"
	default:
		return "annual"
	}
}

// projectDates は last から周期ごとに日付を進め、(asOf, end] に入る日付を返します。
func projectDates(last calendar.Date, c Cadence, asOf, end calendar.Date) []calendar.Date {
	var out []calendar.Date
	for next := last.AddDays(c.IntervalDays); !next.After(end) && len(out) < maxProjectedPerTicker; next = next.AddDays(c.IntervalDays) {
		if next.After(asOf) {
			out = append(out, next)
		}
	}
	return out
}
