package session

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/bobmcallan/orange/internal/common"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
)

// Columns with these headers are right-aligned.
var numericColumns = map[string]bool{
	"qty": true, "quantity": true, "price": true, "cost": true,
	"balance": true, "amount": true, "total": true,
}

// Renderer turns tables into terminal output through glamour and formats
// money with go-money.
type Renderer struct {
	tr       *glamour.TermRenderer
	currency string
}

// NewRenderer builds a Renderer from the [display] config section.
func NewRenderer(cfg common.DisplayConfig) (*Renderer, error) {
	width := cfg.Width
	if width <= 0 {
		width = 100
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch cfg.Style {
	case "", "auto":
		opts = append(opts, glamour.WithAutoStyle())
	default:
		opts = append(opts, glamour.WithStandardStyle(cfg.Style))
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	currency := strings.ToUpper(cfg.Currency)
	if money.GetCurrency(currency) == nil {
		currency = money.USD
	}
	return &Renderer{tr: tr, currency: currency}, nil
}

// Money formats amount in the configured currency, e.g. "$1,000.00".
func (r *Renderer) Money(amount decimal.Decimal) string {
	cur := money.GetCurrency(r.currency)
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// Table renders a titled markdown table.
func (r *Renderer) Table(title string, columns []string, rows [][]string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", title)

	if len(rows) == 0 {
		b.WriteString("_nothing to show_\n")
		return r.tr.Render(b.String())
	}

	b.WriteString("|")
	for _, c := range columns {
		fmt.Fprintf(&b, " %s |", escapeCell(c))
	}
	b.WriteString("\n|")
	for _, c := range columns {
		if numericColumns[strings.ToLower(c)] {
			b.WriteString(" ---: |")
		} else {
			b.WriteString(" --- |")
		}
	}
	b.WriteString("\n")

	for _, row := range rows {
		b.WriteString("|")
		for i := range columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprintf(&b, " %s |", escapeCell(cell))
		}
		b.WriteString("\n")
	}

	return r.tr.Render(b.String())
}

func escapeCell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
