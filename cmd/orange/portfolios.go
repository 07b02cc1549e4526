package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/bobmcallan/orange/internal/session"
	"github.com/google/subcommands"
)

type portfoliosCmd struct {
	credentials
}

func (*portfoliosCmd) Name() string     { return "portfolios" }
func (*portfoliosCmd) Synopsis() string { return "list your portfolios and holdings" }
func (*portfoliosCmd) Usage() string {
	return `portfolios -u <username> [-p <password>]
`
}

func (c *portfoliosCmd) SetFlags(f *flag.FlagSet) { c.credentials.setFlags(f) }

func (c *portfoliosCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openApp(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	user, err := c.login(ctx, a, false)
	if err != nil {
		return fail(err)
	}
	list, err := a.PortfolioService.ListByOwner(ctx, user.Username)
	if err != nil {
		return fail(err)
	}
	r, err := session.NewRenderer(a.Config.Display)
	if err != nil {
		return fail(err)
	}

	rows := make([][]string, 0, len(list))
	for _, p := range list {
		var holdings []string
		for _, h := range p.SortedHoldings() {
			holdings = append(holdings, fmt.Sprintf("%s: %s", h.Ticker, h.Quantity.String()))
		}
		rows = append(rows, []string{p.Name, p.Strategy, strings.Join(holdings, ", "), p.ID})
	}
	if err := printTable(r, "Your Portfolios", []string{"Name", "Strategy", "Holdings", "ID"}, rows); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "Cash balance: %s\n", r.Money(user.Balance))
	return subcommands.ExitSuccess
}

type portfolioCreateCmd struct {
	credentials
	name     string
	strategy string
}

func (*portfolioCreateCmd) Name() string     { return "portfolio-create" }
func (*portfolioCreateCmd) Synopsis() string { return "create an empty portfolio" }
func (*portfolioCreateCmd) Usage() string {
	return `portfolio-create -u <username> -name <name> [-strategy <text>]

  Creates an empty portfolio and prints its id.
`
}

func (c *portfolioCreateCmd) SetFlags(f *flag.FlagSet) {
	c.credentials.setFlags(f)
	f.StringVar(&c.name, "name", "", "Portfolio name (required)")
	f.StringVar(&c.strategy, "strategy", "", "Free-text strategy label")
}

func (c *portfolioCreateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openApp(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	user, err := c.login(ctx, a, false)
	if err != nil {
		return fail(err)
	}
	p, err := a.PortfolioService.Create(ctx, user.Username, c.name, c.strategy)
	if err != nil {
		return fail(err)
	}
	persist(ctx, a)

	fmt.Fprintf(stdout, "Created portfolio %s (%s).\n", p.ID, p.Name)
	return subcommands.ExitSuccess
}

type portfolioDeleteCmd struct {
	credentials
}

func (*portfolioDeleteCmd) Name() string     { return "portfolio-delete" }
func (*portfolioDeleteCmd) Synopsis() string { return "delete one of your portfolios" }
func (*portfolioDeleteCmd) Usage() string {
	return `portfolio-delete -u <username> <name-or-id>
`
}

func (c *portfolioDeleteCmd) SetFlags(f *flag.FlagSet) { c.credentials.setFlags(f) }

func (c *portfolioDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: exactly one portfolio name or id is required")
		return subcommands.ExitUsageError
	}

	a, status := openApp(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	user, err := c.login(ctx, a, false)
	if err != nil {
		return fail(err)
	}
	p, err := a.PortfolioService.Resolve(ctx, user.Username, f.Arg(0))
	if err != nil {
		return fail(err)
	}
	if err := a.PortfolioService.Delete(ctx, user.Username, p.ID); err != nil {
		return fail(err)
	}
	persist(ctx, a)

	fmt.Fprintf(stdout, "Portfolio %s (%s) deleted.\n", p.ID, p.Name)
	return subcommands.ExitSuccess
}
