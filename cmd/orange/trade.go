package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/bobmcallan/orange/internal/app"
	"github.com/bobmcallan/orange/internal/models"
	"github.com/bobmcallan/orange/internal/services/portfolio"
	"github.com/bobmcallan/orange/internal/session"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// tradeFlags are shared by buy and sell.
type tradeFlags struct {
	credentials
	portfolio string
	tickers   string
	quantity  string
	price     string
}

func (t *tradeFlags) setFlags(f *flag.FlagSet) {
	t.credentials.setFlags(f)
	f.StringVar(&t.portfolio, "portfolio", "", "Portfolio name or id (required)")
	f.StringVar(&t.tickers, "ticker", "", "Ticker symbol; buy accepts a comma separated list (required)")
	f.StringVar(&t.quantity, "qty", "", "Quantity, applied to each ticker (required)")
	f.StringVar(&t.price, "price", "", "Price per unit (default: the catalog price, single ticker only)")
}

// parse returns tickers, quantity and price, taking the catalog price when
// -price is empty and exactly one catalog ticker was given.
func (t *tradeFlags) parse(a *app.App) ([]string, decimal.Decimal, decimal.Decimal, error) {
	tickers := portfolio.ParseTickers(t.tickers)
	if len(tickers) == 0 {
		return nil, decimal.Zero, decimal.Zero, models.NewValidationError("-ticker is required")
	}
	qty, err := parseDecimal("qty", t.quantity, nil)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}
	var def *decimal.Decimal
	if len(tickers) == 1 {
		if sec, ok := a.MarketService.Lookup(tickers[0]); ok {
			def = &sec.Price
		}
	}
	price, err := parseDecimal("price", t.price, def)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}
	return tickers, qty, price, nil
}

type buyCmd struct {
	tradeFlags
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy securities into a portfolio" }
func (*buyCmd) Usage() string {
	return `buy -u <username> -portfolio <name-or-id> -ticker <AAPL[,MSFT...]> -qty <n> [-price <p>]

  Buys qty of each ticker at price, debiting your cash balance. Each ticker
  is bought on its own: one failing does not undo the others.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *buyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openApp(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	user, err := c.login(ctx, a, false)
	if err != nil {
		return fail(err)
	}
	tickers, qty, price, err := c.parse(a)
	if err != nil {
		return fail(err)
	}
	p, err := a.PortfolioService.Resolve(ctx, user.Username, c.portfolio)
	if err != nil {
		return fail(err)
	}
	r, err := session.NewRenderer(a.Config.Display)
	if err != nil {
		return fail(err)
	}

	batch, err := a.PortfolioService.BuyBatch(ctx, user.Username, p.ID, tickers, qty, price)
	if err != nil {
		return fail(err)
	}
	if len(batch.Filled()) > 0 {
		persist(ctx, a)
	}

	rows := make([][]string, 0, len(batch.Lines))
	failed := 0
	for _, l := range batch.Lines {
		if l.Err != nil {
			failed++
			fmt.Fprintf(stderr, "Error: %s: %v\n", l.Ticker, l.Err)
			continue
		}
		rows = append(rows, []string{l.Ticker, l.Result.Quantity.String(), r.Money(l.Result.Price), r.Money(l.Result.Amount)})
	}
	if len(rows) > 0 {
		if err := printTable(r, "Purchases for "+p.Name, []string{"Ticker", "Qty", "Price", "Cost"}, rows); err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "Total spent: %s\n", r.Money(batch.Total()))
		filled := batch.Filled()
		fmt.Fprintf(stdout, "Cash balance: %s\n", r.Money(filled[len(filled)-1].Balance))
	}

	if failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type sellCmd struct {
	tradeFlags
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell securities from a portfolio" }
func (*sellCmd) Usage() string {
	return `sell -u <username> -portfolio <name-or-id> -ticker <TICKER> -qty <n> [-price <p>]

  Sells qty of ticker at price and credits the proceeds to your cash balance.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *sellCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openApp(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	user, err := c.login(ctx, a, false)
	if err != nil {
		return fail(err)
	}
	tickers, qty, price, err := c.parse(a)
	if err != nil {
		return fail(err)
	}
	if len(tickers) != 1 {
		return fail(models.NewValidationError("sell takes exactly one ticker"))
	}
	p, err := a.PortfolioService.Resolve(ctx, user.Username, c.portfolio)
	if err != nil {
		return fail(err)
	}
	r, err := session.NewRenderer(a.Config.Display)
	if err != nil {
		return fail(err)
	}

	res, err := a.PortfolioService.Sell(ctx, models.TradeRequest{
		Owner:       user.Username,
		PortfolioID: p.ID,
		Ticker:      tickers[0],
		Quantity:    qty,
		Price:       price,
	})
	if err != nil {
		return fail(err)
	}
	persist(ctx, a)

	fmt.Fprintf(stdout, "Sold %s %s @ %s for %s.\n", res.Quantity.String(), res.Ticker, r.Money(res.Price), r.Money(res.Amount))
	fmt.Fprintf(stdout, "Cash balance: %s\n", r.Money(res.Balance))
	return subcommands.ExitSuccess
}
