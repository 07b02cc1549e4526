package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/bobmcallan/orange/internal/common"
	"github.com/bobmcallan/orange/internal/session"
	"github.com/google/subcommands"
)

type versionCmd struct{}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "print the version" }
func (*versionCmd) Usage() string            { return "version\n" }
func (*versionCmd) SetFlags(_ *flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	common.LoadVersionFromFile()
	fmt.Fprintf(stdout, "orange %s\n", common.GetFullVersion())
	return subcommands.ExitSuccess
}

type catalogCmd struct{}

func (*catalogCmd) Name() string             { return "catalog" }
func (*catalogCmd) Synopsis() string         { return "list the securities available in the marketplace" }
func (*catalogCmd) Usage() string            { return "catalog\n" }
func (*catalogCmd) SetFlags(_ *flag.FlagSet) {}

func (*catalogCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openApp(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	r, err := session.NewRenderer(a.Config.Display)
	if err != nil {
		return fail(err)
	}
	securities := a.MarketService.List()
	rows := make([][]string, 0, len(securities))
	for _, s := range securities {
		rows = append(rows, []string{s.Ticker, s.Issuer, r.Money(s.Price)})
	}
	if err := printTable(r, "Marketplace", []string{"Ticker", "Name", "Price"}, rows); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
