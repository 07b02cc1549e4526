// Package market provides the fixed marketplace catalog
package market

import (
	"sort"

	"github.com/bobmcallan/orange/internal/interfaces"
	"github.com/bobmcallan/orange/internal/models"
	"github.com/shopspring/decimal"
)

// Compile-time interface check
var _ interfaces.MarketService = (*Catalog)(nil)

// Catalog is a read-only ticker table. It is built once and never persisted.
type Catalog struct {
	securities map[string]models.Security
}

// DefaultSecurities is the catalog every session starts with.
func DefaultSecurities() []models.Security {
	return []models.Security{
		{Ticker: "AAPL", Issuer: "Apple", Price: decimal.NewFromInt(190)},
		{Ticker: "MSFT", Issuer: "Microsoft", Price: decimal.NewFromInt(410)},
		{Ticker: "GOOG", Issuer: "Alphabet", Price: decimal.NewFromInt(170)},
		{Ticker: "TSLA", Issuer: "Tesla", Price: decimal.NewFromInt(250)},
		{Ticker: "NVDA", Issuer: "Nvidia", Price: decimal.NewFromInt(120)},
	}
}

// NewCatalog builds a catalog from securities. Tickers are normalized; a
// later duplicate replaces an earlier one.
func NewCatalog(securities []models.Security) *Catalog {
	c := &Catalog{securities: make(map[string]models.Security, len(securities))}
	for _, s := range securities {
		s.Ticker = models.NormalizeTicker(s.Ticker)
		if s.Ticker == "" {
			continue
		}
		c.securities[s.Ticker] = s
	}
	return c
}

// NewDefaultCatalog returns the catalog of DefaultSecurities.
func NewDefaultCatalog() *Catalog {
	return NewCatalog(DefaultSecurities())
}

// List returns every security ordered by ticker.
func (c *Catalog) List() []models.Security {
	out := make([]models.Security, 0, len(c.securities))
	for _, s := range c.securities {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Lookup finds a security by ticker, ignoring case and surrounding space.
func (c *Catalog) Lookup(ticker string) (models.Security, bool) {
	s, ok := c.securities[models.NormalizeTicker(ticker)]
	return s, ok
}
