package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hentity "dividend_backend/internal/feature/holdings/domain/entity"
	mdentity "dividend_backend/internal/feature/marketdata/domain/entity"
	mdusecase "dividend_backend/internal/feature/marketdata/usecase"
	"dividend_backend/internal/shared/calendar"
)

var asOf = calendar.MustParse("2025-01-08")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func holding(ticker, shares, cost string) hentity.Holding {
	h := hentity.Holding{Ticker: ticker, Shares: dec(shares)}
	if cost != "" {
		h.CostBasis = decimal.NewNullDecimal(dec(cost))
	}
	return h
}

func history(ticker, amount string, dates ...string) mdentity.DividendHistory {
	evs := make([]mdentity.DividendEvent, 0, len(dates))
	for _, d := range dates {
		evs = append(evs, mdentity.DividendEvent{Ticker: ticker, ExDate: calendar.MustParse(d), AmountPerShare: dec(amount)})
	}
	return mdentity.SortDividends(evs)
}

func TestCompute_GainLossWithZeroDividends(t *testing.T) {
	t.Parallel()

	res := Compute(Input{
		Holdings:  []hentity.Holding{holding("AAPL", "10", "100")},
		Prices:    map[string]decimal.Decimal{"AAPL": dec("150")},
		Dividends: map[string]mdentity.DividendHistory{"AAPL": {}},
		AsOf:      asOf,
	})

	require.Len(t, res.Positions, 1)
	m := res.Positions[0]
	assert.Equal(t, "1500", m.MarketValue.Decimal.String())
	require.True(t, m.GainLoss.Valid)
	assert.Equal(t, "500", m.GainLoss.Decimal.String())
	assert.Equal(t, "50", m.GainLossPct.Decimal.String())
	require.True(t, m.Yield.Valid, "zero dividends with a known price is a valid zero yield")
	assert.True(t, m.Yield.Decimal.IsZero())
	assert.False(t, m.PriceUnavailable)
	assert.False(t, m.DividendsUnavailable)

	assert.Equal(t, "1500", res.Snapshot.TotalValue.String())
	assert.Equal(t, "1000", res.Snapshot.TotalCost.Decimal.String())
	assert.True(t, res.Snapshot.Yield.Valid)
	assert.Equal(t, asOf, res.Snapshot.Date)
	assert.Empty(t, res.Projection.Payments)
}

func TestCompute_MissingCostBasisIsAbsentNotZero(t *testing.T) {
	t.Parallel()

	res := Compute(Input{
		Holdings: []hentity.Holding{holding("KO", "100", "")},
		Prices:   map[string]decimal.Decimal{"KO": dec("60")},
		AsOf:     asOf,
	})

	m := res.Positions[0]
	assert.True(t, m.MarketValue.Valid)
	assert.False(t, m.CostValue.Valid)
	assert.False(t, m.GainLoss.Valid)
	assert.False(t, m.GainLossPct.Valid)
	assert.False(t, res.Snapshot.TotalCost.Valid)
}

func TestCompute_YieldUnavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prices map[string]decimal.Decimal
	}{
		{"unknown price", map[string]decimal.Decimal{}},
		{"zero price", map[string]decimal.Decimal{"VTI": dec("0")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := Compute(Input{
				Holdings:  []hentity.Holding{holding("VTI", "10", "200")},
				Prices:    tt.prices,
				Dividends: map[string]mdentity.DividendHistory{"VTI": history("VTI", "0.9", "2024-12-20")},
				AsOf:      asOf,
			})

			m := res.Positions[0]
			assert.True(t, m.PriceUnavailable)
			assert.False(t, m.MarketValue.Valid)
			assert.False(t, m.Yield.Valid)
			assert.False(t, m.GainLoss.Valid)
			assert.Equal(t, "9", m.AnnualDividend.String())

			assert.True(t, res.Snapshot.TotalValue.IsZero())
			assert.False(t, res.Snapshot.Yield.Valid)
			assert.Equal(t, []string{"VTI"}, res.Snapshot.Degraded())
		})
	}
}

func TestCompute_AggregationExcludesUnpricedValue(t *testing.T) {
	t.Parallel()

	res := Compute(Input{
		Holdings: []hentity.Holding{
			holding("KO", "100", "50"),
			holding("PEP", "10", "150"),
		},
		Prices: map[string]decimal.Decimal{"KO": dec("60")},
		Dividends: map[string]mdentity.DividendHistory{
			"KO":  history("KO", "0.5", "2024-03-14", "2024-06-14", "2024-09-13", "2024-11-29"),
			"PEP": history("PEP", "1", "2024-12-06"),
		},
		AsOf: asOf,
	})

	snap := res.Snapshot
	assert.Equal(t, "6000", snap.TotalValue.String())
	assert.Equal(t, "5000", snap.TotalCost.Decimal.String(), "unpriced cost is excluded alongside its value")
	assert.Equal(t, "210", snap.TotalAnnualDividend.String(), "unpriced dividends still count")
	require.True(t, snap.Yield.Valid)
	assert.Equal(t, "0.033333", snap.Yield.Decimal.String())

	require.Len(t, snap.Positions, 2)
	assert.False(t, snap.Positions[0].PriceUnavailable)
	assert.True(t, snap.Positions[1].PriceUnavailable)
}

func TestCompute_TrailingWindow(t *testing.T) {
	t.Parallel()

	res := Compute(Input{
		Holdings: []hentity.Holding{holding("T", "10", "")},
		Prices:   map[string]decimal.Decimal{"T": dec("20")},
		Dividends: map[string]mdentity.DividendHistory{
			// 2024-01-09 is exactly 365 days back and falls outside the window.
			"T": history("T", "0.2775", "2024-01-09", "2024-04-09", "2025-01-08", "2025-01-09"),
		},
		AsOf: asOf,
	})

	assert.Equal(t, "5.55", res.Positions[0].AnnualDividend.String())
}

func TestCompute_DividendsUnavailableCountsAsZero(t *testing.T) {
	t.Parallel()

	res := Compute(Input{
		Holdings: []hentity.Holding{holding("MSFT", "5", "")},
		Prices:   map[string]decimal.Decimal{"MSFT": dec("400")},
		AsOf:     asOf,
	})

	m := res.Positions[0]
	assert.True(t, m.DividendsUnavailable)
	assert.True(t, m.AnnualDividend.IsZero())
	require.True(t, m.Yield.Valid)
	assert.True(t, m.Yield.Decimal.IsZero())
}

func TestCompute_ProjectsQuarterlyCadence(t *testing.T) {
	t.Parallel()

	last := calendar.MustParse("2024-12-15")
	res := Compute(Input{
		Holdings: []hentity.Holding{holding("JNJ", "10", "")},
		Prices:   map[string]decimal.Decimal{"JNJ": dec("150")},
		Dividends: map[string]mdentity.DividendHistory{
			"JNJ": history("JNJ", "0.5", "2024-06-18", "2024-09-16", "2024-12-15"),
		},
		Months: 12,
		AsOf:   asOf,
	})

	assert.Equal(t, "quarterly", res.Positions[0].Frequency)
	assert.Equal(t, "15", res.Positions[0].AnnualDividend.String())

	pays := res.Projection.Payments
	require.Len(t, pays, 4)
	assert.Equal(t, "2025-03-15", pays[0].Date.String())
	prev := last
	for _, p := range pays {
		assert.Equal(t, 90, p.Date.DaysSince(prev))
		assert.True(t, p.Date.After(asOf))
		assert.False(t, p.Date.After(asOf.AddMonths(12)))
		assert.Equal(t, "5", p.Total.String())
		prev = p.Date
	}

	assert.Equal(t, "20", res.Projection.Total.String())
	require.Len(t, res.Projection.Monthly, 4)
	assert.Equal(t, "2025-03", res.Projection.Monthly[0].Month)
}

func TestCompute_SingleEventHasNoProjection(t *testing.T) {
	t.Parallel()

	res := Compute(Input{
		Holdings:  []hentity.Holding{holding("NEW", "1", "")},
		Prices:    map[string]decimal.Decimal{"NEW": dec("10")},
		Dividends: map[string]mdentity.DividendHistory{"NEW": history("NEW", "0.1", "2024-12-01")},
		AsOf:      asOf,
	})

	assert.Empty(t, res.Projection.Payments)
	assert.Empty(t, res.Projection.Monthly)
	assert.Empty(t, res.Positions[0].Frequency)
	assert.Equal(t, "0.1", res.Positions[0].AnnualDividend.String())
}

func TestCompute_MonthlyCapAndOrdering(t *testing.T) {
	t.Parallel()

	dates := make([]string, 0, 12)
	for d := calendar.MustParse("2024-02-01"); !d.After(asOf); d = d.AddMonths(1) {
		dates = append(dates, d.String())
	}
	res := Compute(Input{
		Holdings: []hentity.Holding{holding("O", "100", ""), holding("MAIN", "10", "")},
		Prices:   map[string]decimal.Decimal{"O": dec("55"), "MAIN": dec("50")},
		Dividends: map[string]mdentity.DividendHistory{
			"O":    history("O", "0.26", dates...),
			"MAIN": history("MAIN", "0.25", dates...),
		},
		Months: 24,
		AsOf:   asOf,
	})

	assert.Equal(t, "monthly", res.Positions[0].Frequency)

	perTicker := map[string]int{}
	for i, p := range res.Projection.Payments {
		perTicker[p.Ticker]++
		if i > 0 {
			prev := res.Projection.Payments[i-1]
			assert.True(t, prev.Date.Before(p.Date) || (prev.Date == p.Date && prev.Ticker < p.Ticker))
		}
	}
	assert.Equal(t, maxProjectedPerTicker, perTicker["O"])
	assert.Equal(t, maxProjectedPerTicker, perTicker["MAIN"])
}

func TestInputFromFetch(t *testing.T) {
	t.Parallel()

	data := map[string]mdusecase.TickerData{
		"AAPL": {Ticker: "AAPL", Price: mdentity.PriceRecord{Ticker: "AAPL", Price: dec("150")}, Dividends: mdentity.DividendHistory{}},
		"BAD":  {Ticker: "BAD", PriceErr: mdusecase.ErrNoPrice, DividendsErr: mdusecase.ErrDataUnavailable},
	}

	in := InputFromFetch(nil, data, 6, asOf)
	assert.Len(t, in.Prices, 1)
	assert.Contains(t, in.Dividends, "AAPL")
	assert.NotContains(t, in.Dividends, "BAD")
	assert.Equal(t, 6, in.Months)
}
