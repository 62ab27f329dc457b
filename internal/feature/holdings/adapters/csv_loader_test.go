package adapters

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dividend_backend/internal/feature/holdings/domain/entity"
)

func TestCSVLoader_Load_Simple(t *testing.T) {
	t.Parallel()

	in := strings.NewReader(`symbol,shares,cost_basis
AAPL,50,150.00
msft,"1,030",280.00
KO,100,
BAD,abc,10
VTI,5,oops
`)

	hs, format, err := NewCSVLoader().Load(in)
	require.NoError(t, err)
	assert.Equal(t, entity.FormatSimple, format)
	require.Len(t, hs, 4)

	assert.Equal(t, "AAPL", hs[0].Ticker)
	assert.Equal(t, "150", hs[0].CostBasis.Decimal.String())

	assert.Equal(t, "MSFT", hs[1].Ticker)
	assert.Equal(t, "1030", hs[1].Shares.String())

	assert.Equal(t, "KO", hs[2].Ticker)
	assert.False(t, hs[2].CostBasis.Valid)

	assert.Equal(t, "VTI", hs[3].Ticker)
	assert.False(t, hs[3].CostBasis.Valid, "an invalid cost basis is dropped, the row kept")
}

func TestCSVLoader_Load_Fidelity(t *testing.T) {
	t.Parallel()

	in := strings.NewReader(`Account Number,Account Name,Symbol,Description,Quantity,Last Price,Current Value,Cost Basis Total,Average Cost Basis
Z1,Brokerage,SPAXX**,HELD IN MONEY MARKET,,,"$1,200.00",,
Z1,Brokerage,VTI,VANGUARD TOTAL STOCK MKT,12.5,$250.00,"$3,125.00","$2,500.00",$200.00
Z1,Brokerage,KO,COCA COLA,40,$60.00,"$2,400.00","$2,000.00",--
Z1,Brokerage,Pending Activity,,,,$10.00,,

"The data and information in this spreadsheet is provided to you solely for your use"
`)

	hs, format, err := NewCSVLoader().Load(in)
	require.NoError(t, err)
	assert.Equal(t, entity.FormatFidelity, format)
	require.Len(t, hs, 2)

	assert.Equal(t, "VTI", hs[0].Ticker)
	assert.Equal(t, "12.5", hs[0].Shares.String())
	assert.Equal(t, "200", hs[0].CostBasis.Decimal.String())

	assert.Equal(t, "KO", hs[1].Ticker)
	assert.False(t, hs[1].CostBasis.Valid, "placeholder average cost is not a number")
}

func TestCSVLoader_Load_FidelityCostTotalFallback(t *testing.T) {
	t.Parallel()

	in := strings.NewReader(`Symbol,Quantity,Cost Basis Total
SCHD,20,"$1,500.00"
`)

	hs, _, err := NewCSVLoader().Load(in)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "75", hs[0].CostBasis.Decimal.String())
}

func TestCSVLoader_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		expectedErr error
	}{
		{"empty file", "", ErrNoHoldings},
		{"header only", "symbol,shares\n", ErrNoHoldings},
		{"no valid rows", "symbol,shares\nAAPL,zero\n", ErrNoHoldings},
		{"unknown header", "ticker,units\nAAPL,1\n", entity.ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := NewCSVLoader().Load(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestCSVLoader_LoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "portfolio.csv")
	require.NoError(t, os.WriteFile(path, []byte("symbol,shares\nKO,10\n"), 0o644))

	hs, err := NewCSVLoader().LoadFile(path)
	require.NoError(t, err)
	require.Len(t, hs, 1)

	_, err = NewCSVLoader().LoadFile(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
		hasError bool
	}{
		{"1,234.56", "1234.56", false},
		{"$2,500.00", "2500", false},
		{" 42 ", "42", false},
		{"--", "", true},
		{"", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseNumber(tt.input)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}
