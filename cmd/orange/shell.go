package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bobmcallan/orange/internal/common"
	"github.com/bobmcallan/orange/internal/session"
	"github.com/google/subcommands"
	"golang.org/x/term"
)

type shellCmd struct {
	noBanner bool
}

func (*shellCmd) Name() string     { return "shell" }
func (*shellCmd) Synopsis() string { return "start the interactive menu session (default)" }
func (*shellCmd) Usage() string {
	return `shell [-no-banner]

  Starts the interactive session: log in or sign up, then manage users,
  portfolios and purchases through numbered menus. State is saved after
  every change and on exit.
`
}

func (c *shellCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.noBanner, "no-banner", false, "Do not print the startup banner")
}

func (c *shellCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openApp(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	var opts []session.Option
	if fd := int(os.Stdin.Fd()); stdin == os.Stdin && term.IsTerminal(fd) {
		opts = append(opts, session.WithPasswordReader(func() (string, error) {
			b, err := term.ReadPassword(fd)
			return string(b), err
		}))
	}

	s, err := session.New(a, stdin, stdout, opts...)
	if err != nil {
		return fail(err)
	}

	if !c.noBanner {
		common.PrintBanner(stdout, a.Config, a.Logger)
	}

	// Save on interrupt; the session itself is blocked reading input
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()
	go func() {
		if _, ok := <-sigChan; !ok {
			return
		}
		a.Logger.Info().Msg("Interrupt received")
		fmt.Fprintln(stdout, "\nInterrupted. Bye!")
		persist(context.Background(), a)
		a.Close()
		os.Exit(130)
	}()

	if err := s.Run(ctx); err != nil {
		return fail(err)
	}

	if !c.noBanner {
		common.PrintShutdownBanner(stdout, a.Logger)
	}
	return subcommands.ExitSuccess
}
