package market

import (
	"testing"

	"github.com/bobmcallan/orange/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_List(t *testing.T) {
	list := NewDefaultCatalog().List()

	require.Len(t, list, 5)
	var tickers []string
	for _, s := range list {
		tickers = append(tickers, s.Ticker)
	}
	assert.Equal(t, []string{"AAPL", "GOOG", "MSFT", "NVDA", "TSLA"}, tickers)
}

func TestCatalog_Lookup(t *testing.T) {
	c := NewDefaultCatalog()

	tests := []struct {
		input  string
		issuer string
		found  bool
	}{
		{"AAPL", "Apple", true},
		{"aapl", "Apple", true},
		{"  tsla ", "Tesla", true},
		{"IBM", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s, ok := c.Lookup(tt.input)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.issuer, s.Issuer)
		})
	}

	nvda, ok := c.Lookup("nvda")
	require.True(t, ok)
	assert.True(t, nvda.Price.Equal(decimal.NewFromInt(120)))
}

func TestNewCatalog_NormalizesAndSkipsBlank(t *testing.T) {
	c := NewCatalog([]models.Security{
		{Ticker: "ibm", Issuer: "IBM", Price: decimal.NewFromInt(1)},
		{Ticker: " ", Issuer: "blank"},
		{Ticker: "IBM", Issuer: "International Business Machines", Price: decimal.NewFromInt(2)},
	})

	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, "IBM", list[0].Ticker)
	assert.Equal(t, "International Business Machines", list[0].Issuer)
}

func TestCatalog_ListIsACopy(t *testing.T) {
	c := NewDefaultCatalog()
	list := c.List()
	list[0].Issuer = "changed"

	s, _ := c.Lookup(list[0].Ticker)
	assert.NotEqual(t, "changed", s.Issuer)
}
