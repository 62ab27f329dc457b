package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"dividend_backend/internal/feature/marketdata/domain/entity"
	"dividend_backend/internal/feature/marketdata/usecase"
	"dividend_backend/internal/platform/externalapi/twelvedata/dto"
	"dividend_backend/internal/shared/calendar"
)

// TwelveDataMarket はTwelve Data外部APIから株価と配当履歴を取得するMarketSource実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketSourceを実装していることをコンパイル時に検証します。
var _ usecase.MarketSource = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// GetPrice はTwelve Data APIから最新の株価を取得します。
func (t *TwelveDataMarket) GetPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("symbol", ticker)

	var body dto.PriceResponse
	if err := t.get(ctx, "price", q, &body); err != nil {
		return decimal.Zero, err
	}
	if body.Status == "error" {
		return decimal.Zero, fmt.Errorf("twelvedata: %s", body.Message)
	}

	p, err := decimal.NewFromString(strings.TrimSpace(body.Price))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", body.Price, err)
	}
	return p, nil
}

// GetDividends はTwelve Data APIから from 以降の配当履歴を取得し、
// 権利落ち日の昇順で返します。
func (t *TwelveDataMarket) GetDividends(ctx context.Context, ticker string, from calendar.Date) ([]entity.DividendEvent, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	if !from.IsZero() {
		q.Set("start_date", from.String())
	}

	var body dto.DividendsResponse
	if err := t.get(ctx, "dividends", q, &body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	events := make([]entity.DividendEvent, 0, len(body.Dividends))
	for _, d := range body.Dividends {
		// 権利落ち日をパース
		exDate, err := calendar.Parse(d.ExDate)
		if err != nil {
			return nil, fmt.Errorf("parse ex_date %q: %w", d.ExDate, err)
		}
		// 1株あたり配当額をパース
		amount, err := decimal.NewFromString(d.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", d.Amount, err)
		}
		events = append(events, entity.DividendEvent{
			Ticker:         ticker,
			ExDate:         exDate,
			AmountPerShare: amount,
		})
	}
	return entity.SortDividends(events), nil
}

// get は endpoint にGETリクエストを送り、JSONレスポンスを out にデコードします。
func (t *TwelveDataMarket) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	// URLを生成
	u := fmt.Sprintf("%s/%s?%s", strings.TrimRight(t.cfg.BaseURL, "/"), endpoint, q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	// リクエストを実行
	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
