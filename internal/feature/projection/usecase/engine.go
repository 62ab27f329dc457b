// Package usecase はポジション指標と配当予測の計算、および更新処理を実装します。
package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	hentity "dividend_backend/internal/feature/holdings/domain/entity"
	mdentity "dividend_backend/internal/feature/marketdata/domain/entity"
	mdusecase "dividend_backend/internal/feature/marketdata/usecase"
	"dividend_backend/internal/feature/projection/domain/entity"
	"dividend_backend/internal/shared/calendar"
)

// DefaultMonths は予測期間の既定の月数です。
const DefaultMonths = 12

var hundred = decimal.NewFromInt(100)

// Input は Compute の入力です。Prices に無い銘柄は株価不明、
// Dividends に無い銘柄は配当データ取得失敗として扱います。
type Input struct {
	Holdings  []hentity.Holding
	Prices    map[string]decimal.Decimal
	Dividends map[string]mdentity.DividendHistory
	Months    int
	AsOf      calendar.Date
}

// InputFromFetch は取得結果から Compute の入力を組み立てます。
func InputFromFetch(hs []hentity.Holding, data map[string]mdusecase.TickerData, months int, asOf calendar.Date) Input {
	in := Input{
		Holdings:  hs,
		Prices:    make(map[string]decimal.Decimal, len(data)),
		Dividends: make(map[string]mdentity.DividendHistory, len(data)),
		Months:    months,
		AsOf:      asOf,
	}
	for t, d := range data {
		if d.HasPrice() {
			in.Prices[t] = d.Price.Price
		}
		if d.DividendsErr == nil {
			in.Dividends[t] = d.Dividends
		}
	}
	return in
}

// Compute は保有と市場データからポジション指標、スナップショット、配当予測を計算します。
// 副作用のない純粋関数です。
func Compute(in Input) entity.Result {
	months := in.Months
	if months <= 0 {
		months = DefaultMonths
	}
	end := in.AsOf.AddMonths(months)
	yearAgo := in.AsOf.AddDays(-365)

	snap := entity.Snapshot{Date: in.AsOf}
	proj := entity.Projection{Months: months}

	var (
		totalCost    decimal.Decimal
		costKnown    bool
		pricedIncome decimal.Decimal
		positions    = make([]entity.PositionMetric, 0, len(in.Holdings))
	)

	for _, h := range in.Holdings {
		m := entity.PositionMetric{Ticker: h.Ticker, Shares: h.Shares, CostBasis: h.CostBasis}

		if h.CostBasis.Valid {
			m.CostValue = decimal.NewNullDecimal(h.Shares.Mul(h.CostBasis.Decimal))
		}

		if p, ok := in.Prices[h.Ticker]; ok && p.IsPositive() {
			mv := h.Shares.Mul(p)
			m.Price = decimal.NewNullDecimal(p)
			m.MarketValue = decimal.NewNullDecimal(mv)
			snap.TotalValue = snap.TotalValue.Add(mv)

			if m.CostValue.Valid {
				gl := mv.Sub(m.CostValue.Decimal)
				m.GainLoss = decimal.NewNullDecimal(gl)
				if m.CostValue.Decimal.IsPositive() {
					m.GainLossPct = decimal.NewNullDecimal(gl.Div(m.CostValue.Decimal).Mul(hundred).Round(4))
				}
				totalCost = totalCost.Add(m.CostValue.Decimal)
				costKnown = true
			}
		} else {
			m.PriceUnavailable = true
		}

		history, ok := in.Dividends[h.Ticker]
		if !ok {
			m.DividendsUnavailable = true
		}

		perShare := decimal.Zero
		for _, ev := range history {
			if ev.ExDate.After(yearAgo) && !ev.ExDate.After(in.AsOf) {
				perShare = perShare.Add(ev.AmountPerShare)
			}
		}
		m.AnnualDividend = perShare.Mul(h.Shares)
		snap.TotalAnnualDividend = snap.TotalAnnualDividend.Add(m.AnnualDividend)

		if m.MarketValue.Valid {
			m.Yield = decimal.NewNullDecimal(m.AnnualDividend.Div(m.MarketValue.Decimal).Round(6))
			pricedIncome = pricedIncome.Add(m.AnnualDividend)
		}

		if c, ok := InferCadence(history); ok {
			m.Frequency = c.Frequency
			last, _ := history.Last()
			for _, d := range projectDates(last.ExDate, c, in.AsOf, end) {
				proj.Payments = append(proj.Payments, entity.ProjectedPayment{
					Ticker:         h.Ticker,
					Date:           d,
					AmountPerShare: last.AmountPerShare,
					Shares:         h.Shares,
					Total:          last.AmountPerShare.Mul(h.Shares),
				})
			}
		}

		positions = append(positions, m)
	}

	if costKnown {
		snap.TotalCost = decimal.NewNullDecimal(totalCost)
	}
	if snap.TotalValue.IsPositive() {
		snap.Yield = decimal.NewNullDecimal(pricedIncome.Div(snap.TotalValue).Round(6))
	}
	snap.Positions = positions

	finishProjection(&proj)

	return entity.Result{Positions: positions, Snapshot: snap, Projection: proj}
}

// finishProjection は予測支払いを日付・銘柄順に並べ、月別合計を計算します。
func finishProjection(p *entity.Projection) {
	sort.SliceStable(p.Payments, func(i, j int) bool {
		if c := p.Payments[i].Date.Compare(p.Payments[j].Date); c != 0 {
			return c < 0
		}
		return p.Payments[i].Ticker < p.Payments[j].Ticker
	})

	byMonth := make(map[string]decimal.Decimal)
	for _, pay := range p.Payments {
		k := pay.Date.MonthKey()
		byMonth[k] = byMonth[k].Add(pay.Total)
		p.Total = p.Total.Add(pay.Total)
	}
	p.Monthly = make([]entity.MonthlyTotal, 0, len(byMonth))
	for k, v := range byMonth {
		p.Monthly = append(p.Monthly, entity.MonthlyTotal{Month: k, Total: v})
	}
	sort.Slice(p.Monthly, func(i, j int) bool { return p.Monthly[i].Month < p.Monthly[j].Month })
	if p.Payments == nil {
		p.Payments = []entity.ProjectedPayment{}
	}
}
