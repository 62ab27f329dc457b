package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	hentity "dividend_backend/internal/feature/holdings/domain/entity"
	"dividend_backend/internal/feature/projection/domain/entity"
	"dividend_backend/internal/shared/calendar"
)

var twelve = decimal.NewFromInt(12)

// NamedHoldings は比較対象の1ポートフォリオです。
type NamedHoldings struct {
	Name     string
	Holdings []hentity.Holding
}

// PortfolioSummary はポートフォリオ比較の1行分です。
type PortfolioSummary struct {
	Name                string                `json:"name"`
	TotalValue          decimal.Decimal       `json:"total_value"`
	TotalAnnualDividend decimal.Decimal       `json:"total_annual_dividend"`
	Yield               decimal.NullDecimal   `json:"yield"`
	AvgMonthly          decimal.Decimal       `json:"avg_monthly"`
	Monthly             []entity.MonthlyTotal `json:"monthly"`
	Degraded            []string              `json:"degraded,omitempty"`
}

// Compare は複数のポートフォリオを同じ市場データで計算し、要約を並べて返します。
// 市場データは全ポートフォリオの銘柄をまとめて1回だけ取得します。
func (u *RefreshUsecase) Compare(ctx context.Context, portfolios []NamedHoldings, months int) ([]PortfolioSummary, error) {
	if len(portfolios) == 0 {
		return nil, ErrNoHoldings
	}
	if months <= 0 {
		months = u.months
	}

	merged := make([][]hentity.Holding, len(portfolios))
	var tickers []string
	for i, p := range portfolios {
		merged[i] = hentity.MergeHoldings(p.Holdings)
		if len(merged[i]) == 0 {
			return nil, fmt.Errorf("portfolio %q: %w", p.Name, ErrNoHoldings)
		}
		tickers = append(tickers, hentity.Tickers(merged[i])...)
	}

	data := u.fetcher.FetchAll(ctx, tickers)
	asOf := calendar.Of(u.now())

	out := make([]PortfolioSummary, 0, len(portfolios))
	for i, p := range portfolios {
		res := Compute(InputFromFetch(merged[i], data, months, asOf))
		out = append(out, PortfolioSummary{
			Name:                p.Name,
			TotalValue:          res.Snapshot.TotalValue,
			TotalAnnualDividend: res.Snapshot.TotalAnnualDividend,
			Yield:               res.Snapshot.Yield,
			AvgMonthly:          res.Snapshot.TotalAnnualDividend.Div(twelve).Round(2),
			Monthly:             res.Projection.Monthly,
			Degraded:            res.Snapshot.Degraded(),
		})
	}
	return out, nil
}
