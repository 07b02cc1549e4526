// Command orange is a terminal investment-portfolio tracker.
//
// Run without arguments for the interactive shell, or use one of the
// subcommands for one-shot operations.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

// As a short-lived CLI, flags and output streams are package globals.
var (
	configPath = flag.String("config", "", "Path to orange.toml (default: $ORANGE_CONFIG, next to the binary, then config/orange.toml)")

	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// register adds every orange command to c.
func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&shellCmd{}, "")
	c.Register(&versionCmd{}, "")
	c.Register(&catalogCmd{}, "")

	c.Register(&usersCmd{}, "users")
	c.Register(&userAddCmd{}, "users")
	c.Register(&userDelCmd{}, "users")

	c.Register(&portfoliosCmd{}, "portfolios")
	c.Register(&portfolioCreateCmd{}, "portfolios")
	c.Register(&portfolioDeleteCmd{}, "portfolios")
	c.Register(&buyCmd{}, "portfolios")
	c.Register(&sellCmd{}, "portfolios")
}

func main() {
	// A missing .env is fine
	_ = godotenv.Load()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)
	flag.Parse()

	ctx := context.Background()
	if flag.NArg() == 0 {
		os.Exit(int((&shellCmd{}).Execute(ctx, flag.CommandLine)))
	}
	os.Exit(int(commander.Execute(ctx)))
}
