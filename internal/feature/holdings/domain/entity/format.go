package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Format は保有ファイルの形式です。読み込み開始時にヘッダー行から一度だけ決定されます。
type Format int

const (
	// FormatSimple は symbol,shares,cost_basis 形式の CSV です。
	FormatSimple Format = iota + 1
	// FormatFidelity は Fidelity のポジションエクスポートです。
	FormatFidelity
)

func (f Format) String() string {
	switch f {
	case FormatSimple:
		return "simple"
	case FormatFidelity:
		return "fidelity"
	default:
		return "unknown"
	}
}

// ErrUnknownFormat はヘッダーがどの形式にも一致しないことを示します。
var ErrUnknownFormat = errors.New("unrecognized holdings header")

// Columns は形式ごとの列位置です。CostBasis と CostTotal は無い場合 -1 です。
type Columns struct {
	Symbol    int
	Shares    int
	CostBasis int
	CostTotal int
}

// DetectFormat はヘッダー行から形式と列位置を決定します。
func DetectFormat(header []string) (Format, Columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	col := func(name string) int {
		if i, ok := idx[name]; ok {
			return i
		}
		return -1
	}

	if s, q := col("symbol"), col("quantity"); s >= 0 && q >= 0 {
		return FormatFidelity, Columns{
			Symbol:    s,
			Shares:    q,
			CostBasis: col("average cost basis"),
			CostTotal: col("cost basis total"),
		}, nil
	}
	if s, n := col("symbol"), col("shares"); s >= 0 && n >= 0 {
		return FormatSimple, Columns{Symbol: s, Shares: n, CostBasis: col("cost_basis"), CostTotal: -1}, nil
	}
	return 0, Columns{}, fmt.Errorf("%w: %q", ErrUnknownFormat, header)
}
