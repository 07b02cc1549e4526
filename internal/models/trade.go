package models

import "github.com/shopspring/decimal"

// TradeSide is the direction of a trade.
type TradeSide string

const (
	TradeBuy  TradeSide = "buy"
	TradeSell TradeSide = "sell"
)

// TradeRequest describes one buy or sell against an owner's portfolio.
type TradeRequest struct {
	Owner       string
	PortfolioID string
	Ticker      string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
}

// TradeResult is the outcome of an executed trade.
type TradeResult struct {
	Side        TradeSide       `json:"side"`
	PortfolioID string          `json:"portfolio_id"`
	Ticker      string          `json:"ticker"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`  // cost for buys, proceeds for sells
	Balance     decimal.Decimal `json:"balance"` // owner balance after the trade
	Holding     decimal.Decimal `json:"holding"` // quantity held after the trade
}

// BatchLine is the result of one ticker in a multi-ticker purchase.
type BatchLine struct {
	Ticker string
	Result *TradeResult
	Err    error
}

// PurchaseBatch collects the lines of a multi-ticker purchase.
type PurchaseBatch struct {
	PortfolioID string
	Lines       []BatchLine
}

// Filled returns the successful lines.
func (b *PurchaseBatch) Filled() []*TradeResult {
	var out []*TradeResult
	for _, l := range b.Lines {
		if l.Err == nil && l.Result != nil {
			out = append(out, l.Result)
		}
	}
	return out
}

// Total is the combined cost of the successful lines.
func (b *PurchaseBatch) Total() decimal.Decimal {
	total := decimal.Zero
	for _, r := range b.Filled() {
		total = total.Add(r.Amount)
	}
	return total
}
