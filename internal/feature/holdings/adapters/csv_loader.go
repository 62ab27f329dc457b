// Package adapters は保有ファイルの読み込みを実装します。
package adapters

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"dividend_backend/internal/feature/holdings/domain/entity"
)

// ErrNoHoldings は有効な行が1件もなかったことを示します。
var ErrNoHoldings = errors.New("no valid holdings")

// CSVLoader は simple 形式と Fidelity 形式の CSV から保有を読み込みます。
type CSVLoader struct{}

// NewCSVLoader は新しい CSVLoader を生成します。
func NewCSVLoader() *CSVLoader { return &CSVLoader{} }

// LoadFile は path の CSV を読み込みます。
func (l *CSVLoader) LoadFile(path string) ([]entity.Holding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open holdings %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close holdings file", "path", path, "error", err)
		}
	}()

	hs, format, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load holdings %s: %w", path, err)
	}
	slog.Info("loaded holdings", "path", path, "format", format, "positions", len(hs))
	return hs, nil
}

// Load はヘッダー行で形式を決定し、各行を Holding に変換します。
// 株数が不正な行は WARN を出して読み飛ばします。
func (l *CSVLoader) Load(r io.Reader) ([]entity.Holding, entity.Format, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, ErrNoHoldings
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	format, cols, err := entity.DetectFormat(header)
	if err != nil {
		return nil, 0, err
	}

	var out []entity.Holding
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				slog.Warn("skipping unparsable holdings row", "line", line, "error", err)
				continue
			}
			return nil, format, fmt.Errorf("read row %d: %w", line, err)
		}

		h, ok := parseRow(rec, cols, line)
		if ok {
			out = append(out, h)
		}
	}

	if len(out) == 0 {
		return nil, format, ErrNoHoldings
	}
	return out, format, nil
}

func parseRow(rec []string, cols entity.Columns, line int) (entity.Holding, bool) {
	ticker := entity.NormalizeTicker(field(rec, cols.Symbol))
	if ticker == "" {
		return entity.Holding{}, false
	}

	shares, err := ParseNumber(field(rec, cols.Shares))
	if err != nil || !shares.IsPositive() {
		slog.Warn("invalid shares value, skipping", "ticker", ticker, "line", line, "value", field(rec, cols.Shares))
		return entity.Holding{}, false
	}

	h := entity.Holding{Ticker: ticker, Shares: shares}
	if raw := field(rec, cols.CostBasis); raw != "" {
		if c, err := ParseNumber(raw); err == nil && !c.IsNegative() {
			h.CostBasis = decimal.NewNullDecimal(c)
		} else {
			slog.Warn("invalid cost basis", "ticker", ticker, "line", line, "value", raw)
		}
	} else if raw := field(rec, cols.CostTotal); raw != "" {
		if total, err := ParseNumber(raw); err == nil && !total.IsNegative() {
			h.CostBasis = decimal.NewNullDecimal(total.Div(shares))
		}
	}
	return h, true
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// ParseNumber は "$1,234.56" のような表記を decimal に変換します。
func ParseNumber(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer(",", "", "$", "", " ", "").Replace(strings.TrimSpace(s))
	if clean == "" || clean == "--" || strings.EqualFold(clean, "n/a") {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	return decimal.NewFromString(clean)
}
