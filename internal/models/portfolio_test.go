package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPortfolio_AddNormalisesAndDropsEmpty(t *testing.T) {
	p := &Portfolio{ID: "p1"}

	p.Add("aapl", decimal.NewFromInt(2))
	assert.Equal(t, "2", p.Quantity("AAPL").String())

	p.Add(" Aapl ", decimal.NewFromInt(-2))
	_, ok := p.Holdings["AAPL"]
	assert.False(t, ok, "zero quantity entries are removed")

	p.Add("msft", decimal.NewFromInt(1))
	p.Add("MSFT", decimal.NewFromInt(-3))
	assert.NotContains(t, p.Holdings, "MSFT", "negative quantity entries are removed")
}

func TestPortfolio_Has(t *testing.T) {
	p := &Portfolio{Holdings: map[string]decimal.Decimal{"TSLA": decimal.RequireFromString("1.5")}}

	assert.True(t, p.Has("tsla", decimal.RequireFromString("1.5")))
	assert.False(t, p.Has("TSLA", decimal.NewFromInt(2)))
	assert.False(t, p.Has("NVDA", decimal.NewFromInt(1)))
}

func TestPortfolio_CloneIsDeep(t *testing.T) {
	p := &Portfolio{ID: "p1", Holdings: map[string]decimal.Decimal{"GOOG": decimal.NewFromInt(1)}}
	c := p.Clone()
	c.Add("GOOG", decimal.NewFromInt(4))

	assert.Equal(t, "1", p.Quantity("GOOG").String())
	assert.Equal(t, "5", c.Quantity("GOOG").String())
}

func TestPortfolio_SortedHoldings(t *testing.T) {
	p := &Portfolio{Holdings: map[string]decimal.Decimal{
		"TSLA": decimal.NewFromInt(1),
		"AAPL": decimal.NewFromInt(3),
		"MSFT": decimal.NewFromInt(2),
	}}

	got := p.SortedHoldings()
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, []string{got[0].Ticker, got[1].Ticker, got[2].Ticker})
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&User{FirstName: "Ada"}).FullName())
	assert.Equal(t, "Lovelace", (&User{LastName: "Lovelace"}).FullName())
}
