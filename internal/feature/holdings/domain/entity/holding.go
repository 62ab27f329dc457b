// Package entity は保有銘柄（ホールディング）のドメインエンティティを定義します。
package entity

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Holding は1銘柄の保有状況です。CostBasis は1株あたりの取得単価で、不明な場合は無効値です。
type Holding struct {
	Ticker    string              `json:"ticker"`
	Shares    decimal.Decimal     `json:"shares"`
	CostBasis decimal.NullDecimal `json:"cost_basis"`
}

// NormalizeTicker は銘柄コードを正規化します。
//
//	"VANGUARD (XNAS:VTI)" → "VTI"
//	"NYSE:KO"             → "KO"
//	"spaxx**"             → "SPAXX"
//
// 正規化は冪等です。
func NormalizeTicker(raw string) string {
	s := strings.TrimSpace(raw)

	// 括弧内の表記を優先
	if open := strings.LastIndex(s, "("); open >= 0 {
		if end := strings.Index(s[open:], ")"); end > 0 {
			s = s[open+1 : open+end]
		}
	}
	// 取引所プレフィックスを除去
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimRight(strings.TrimSpace(s), "*")
	return strings.ToUpper(strings.TrimSpace(s))
}

// MergeHoldings は銘柄コードを正規化し、同じ銘柄の保有を1件にまとめます。
// 取得単価は株数による加重平均で、どれか1件でも不明なら不明になります。
// 株数が正でない保有と空の銘柄コードは除外されます。結果は銘柄コード順です。
func MergeHoldings(hs []Holding) []Holding {
	type acc struct {
		shares   decimal.Decimal
		cost     decimal.Decimal
		costKnow bool
	}
	byTicker := make(map[string]*acc, len(hs))
	for _, h := range hs {
		t := NormalizeTicker(h.Ticker)
		if t == "" || !h.Shares.IsPositive() {
			continue
		}
		a, ok := byTicker[t]
		if !ok {
			a = &acc{costKnow: true}
			byTicker[t] = a
		}
		a.shares = a.shares.Add(h.Shares)
		if h.CostBasis.Valid {
			a.cost = a.cost.Add(h.Shares.Mul(h.CostBasis.Decimal))
		} else {
			a.costKnow = false
		}
	}

	out := make([]Holding, 0, len(byTicker))
	for t, a := range byTicker {
		h := Holding{Ticker: t, Shares: a.shares}
		if a.costKnow {
			h.CostBasis = decimal.NewNullDecimal(a.cost.Div(a.shares))
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Tickers は保有の銘柄コード一覧を返します。
func Tickers(hs []Holding) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.Ticker)
	}
	return out
}
