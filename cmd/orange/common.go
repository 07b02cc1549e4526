package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bobmcallan/orange/internal/app"
	"github.com/bobmcallan/orange/internal/models"
	"github.com/bobmcallan/orange/internal/session"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

// openApp loads config and state for one command.
func openApp(ctx context.Context) (*app.App, subcommands.ExitStatus) {
	a, err := app.NewApp(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return a, subcommands.ExitSuccess
}

// credentials are the -u/-p flags shared by commands acting for a user.
type credentials struct {
	username string
	password string
}

func (c *credentials) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "Username (default $ORANGE_USER)")
	f.StringVar(&c.password, "p", "", "Password (default $ORANGE_PASSWORD, prompted when unset)")
}

// login authenticates the caller. Admin-only commands pass requireAdmin.
func (c *credentials) login(ctx context.Context, a *app.App, requireAdmin bool) (*models.User, error) {
	username := c.username
	if username == "" {
		username = os.Getenv("ORANGE_USER")
	}
	if username == "" {
		return nil, models.NewValidationError("username is required (-u or ORANGE_USER)")
	}

	password := c.password
	if password == "" {
		password = os.Getenv("ORANGE_PASSWORD")
	}
	if password == "" {
		pw, err := readHiddenPassword()
		if err != nil {
			return nil, models.NewValidationError("password is required (-p or ORANGE_PASSWORD)")
		}
		password = pw
	}

	user, err := a.AuthService.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if requireAdmin && !user.IsAdmin {
		return nil, models.NewAuthenticationError("this command requires an admin account")
	}
	return user, nil
}

var errNoTerminal = errors.New("stdin is not a terminal")

// readHiddenPassword prompts on stderr and reads without echo.
func readHiddenPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if stdin != os.Stdin || !term.IsTerminal(fd) {
		return "", errNoTerminal
	}
	fmt.Fprint(stderr, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// fail prints err and maps it to an exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	if models.KindOf(err) == models.KindValidation {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// persist saves after a mutation. A failed save is reported but the command
// still succeeds.
func persist(ctx context.Context, a *app.App) {
	if err := a.Persist(ctx); err != nil {
		fmt.Fprintf(stderr, "Warning: change not saved: %v\n", err)
	}
}

// parseDecimal parses a flag value; empty returns def, or an error when def is nil.
func parseDecimal(name, value string, def *decimal.Decimal) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if def != nil {
			return *def, nil
		}
		return decimal.Zero, models.NewValidationError("-%s is required", name)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, models.NewValidationError("-%s: %q is not a number", name, value)
	}
	return d, nil
}

// printTable renders a titled table to stdout.
func printTable(r *session.Renderer, title string, columns []string, rows [][]string) error {
	out, err := r.Table(title, columns, rows)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, out)
	return nil
}
