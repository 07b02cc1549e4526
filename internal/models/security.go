package models

import "github.com/shopspring/decimal"

// Security is a marketplace catalog entry. Catalog entries are fixed at
// process start and never persisted with user state.
type Security struct {
	Ticker string          `json:"ticker"`
	Issuer string          `json:"issuer"`
	Price  decimal.Decimal `json:"price"`
}
