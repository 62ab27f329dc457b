// Package entity はポジション指標、日次スナップショット、配当予測のエンティティを定義します。
package entity

import (
	"github.com/shopspring/decimal"

	"dividend_backend/internal/shared/calendar"
)

// PositionMetric は1銘柄分の評価指標です。毎回再計算され、単独では保存されません。
// 値が不明な項目は Valid=false のまま残し、ゼロで埋めません。
type PositionMetric struct {
	Ticker         string              `json:"ticker"`
	Shares         decimal.Decimal     `json:"shares"`
	Price          decimal.NullDecimal `json:"price"`
	MarketValue    decimal.NullDecimal `json:"market_value"`
	CostBasis      decimal.NullDecimal `json:"cost_basis"`
	CostValue      decimal.NullDecimal `json:"cost_value"`
	GainLoss       decimal.NullDecimal `json:"gain_loss"`
	GainLossPct    decimal.NullDecimal `json:"gain_loss_pct"`
	AnnualDividend decimal.Decimal     `json:"annual_dividend"`
	Yield          decimal.NullDecimal `json:"yield"`
	Frequency      string              `json:"frequency,omitempty"`

	PriceUnavailable     bool `json:"price_unavailable,omitempty"`
	DividendsUnavailable bool `json:"dividends_unavailable,omitempty"`
}

// Snapshot は1日分のポートフォリオ評価です。日付が識別子で、同じ日付の保存は上書きになります。
type Snapshot struct {
	Date                calendar.Date       `json:"date"`
	TotalValue          decimal.Decimal     `json:"total_value"`
	TotalCost           decimal.NullDecimal `json:"total_cost"`
	TotalAnnualDividend decimal.Decimal     `json:"total_annual_dividend"`
	Yield               decimal.NullDecimal `json:"yield"`
	Positions           []PositionMetric    `json:"positions"`
}

// Degraded はデータ欠損のある銘柄コードを返します。
func (s Snapshot) Degraded() []string {
	var out []string
	for _, p := range s.Positions {
		if p.PriceUnavailable || p.DividendsUnavailable {
			out = append(out, p.Ticker)
		}
	}
	return out
}
