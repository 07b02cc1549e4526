// Package models defines data structures for Orange
package models

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is a named basket of holdings owned by one user.
// Holdings only ever contain strictly positive quantities.
type Portfolio struct {
	ID        string                     `json:"id"`
	Owner     string                     `json:"owner"`
	Name      string                     `json:"name"`
	Strategy  string                     `json:"strategy"`
	Holdings  map[string]decimal.Decimal `json:"holdings"`
	CreatedAt time.Time                  `json:"created_at"`
}

// Holding is one ticker/quantity entry of a portfolio.
type Holding struct {
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NormalizeTicker upper-cases and trims a ticker symbol. Every lookup and
// write of a holding goes through it.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Clone returns a deep copy of p.
func (p *Portfolio) Clone() *Portfolio {
	c := *p
	c.Holdings = make(map[string]decimal.Decimal, len(p.Holdings))
	for t, q := range p.Holdings {
		c.Holdings[t] = q
	}
	return &c
}

// Quantity returns the held quantity of ticker, zero when absent.
func (p *Portfolio) Quantity(ticker string) decimal.Decimal {
	return p.Holdings[NormalizeTicker(ticker)]
}

// Has reports whether at least qty of ticker is held.
func (p *Portfolio) Has(ticker string, qty decimal.Decimal) bool {
	return p.Quantity(ticker).GreaterThanOrEqual(qty)
}

// Add adjusts the holding of ticker by qty (negative to reduce) and drops
// the entry once it reaches zero or below.
func (p *Portfolio) Add(ticker string, qty decimal.Decimal) {
	if p.Holdings == nil {
		p.Holdings = make(map[string]decimal.Decimal)
	}
	t := NormalizeTicker(ticker)
	next := p.Holdings[t].Add(qty)
	if !next.IsPositive() {
		delete(p.Holdings, t)
		return
	}
	p.Holdings[t] = next
}

// SortedHoldings returns the holdings ordered by ticker.
func (p *Portfolio) SortedHoldings() []Holding {
	out := make([]Holding, 0, len(p.Holdings))
	for t, q := range p.Holdings {
		out = append(out, Holding{Ticker: t, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}
