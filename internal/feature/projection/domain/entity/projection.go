package entity

import (
	"github.com/shopspring/decimal"

	"dividend_backend/internal/shared/calendar"
)

// ProjectedPayment は予測された1回分の配当支払いです。
type ProjectedPayment struct {
	Ticker         string          `json:"ticker"`
	Date           calendar.Date   `json:"date"`
	AmountPerShare decimal.Decimal `json:"amount_per_share"`
	Shares         decimal.Decimal `json:"shares"`
	Total          decimal.Decimal `json:"total"`
}

// MonthlyTotal は月ごとの予測配当合計です。Month は "2006-01" 形式です。
type MonthlyTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Projection は予測期間全体の配当予測です。
type Projection struct {
	Months   int                `json:"months"`
	Payments []ProjectedPayment `json:"payments"`
	Monthly  []MonthlyTotal     `json:"monthly"`
	Total    decimal.Decimal    `json:"total"`
}

// Result は1回の計算結果です。
type Result struct {
	Positions  []PositionMetric `json:"positions"`
	Snapshot   Snapshot         `json:"snapshot"`
	Projection Projection       `json:"projection"`
}
