package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/bobmcallan/orange/internal/interfaces"
	"github.com/bobmcallan/orange/internal/session"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type usersCmd struct {
	credentials
}

func (*usersCmd) Name() string     { return "users" }
func (*usersCmd) Synopsis() string { return "list user accounts (admin)" }
func (*usersCmd) Usage() string {
	return `users -u <admin> [-p <password>]

  Lists every account with its cash balance.
`
}

func (c *usersCmd) SetFlags(f *flag.FlagSet) { c.credentials.setFlags(f) }

func (c *usersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := openApp(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	if _, err := c.login(ctx, a, true); err != nil {
		return fail(err)
	}
	users, err := a.UserService.List(ctx)
	if err != nil {
		return fail(err)
	}
	r, err := session.NewRenderer(a.Config.Display)
	if err != nil {
		return fail(err)
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		admin := "N"
		if u.IsAdmin {
			admin = "Y"
		}
		rows = append(rows, []string{u.Username, u.FirstName, u.LastName, r.Money(u.Balance), admin})
	}
	if err := printTable(r, "Users", []string{"Username", "First", "Last", "Balance", "Admin"}, rows); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type userAddCmd struct {
	credentials
	name      string
	password  string
	firstName string
	lastName  string
	balance   string
	admin     bool
}

func (*userAddCmd) Name() string     { return "useradd" }
func (*userAddCmd) Synopsis() string { return "create a user account (admin)" }
func (*userAddCmd) Usage() string {
	return `useradd -u <admin> -name <username> -password <password> [-first <name>] [-last <name>] [-balance <amount>] [-admin]

  Creates an account. The balance defaults to 0 and must not be negative.
`
}

func (c *userAddCmd) SetFlags(f *flag.FlagSet) {
	c.credentials.setFlags(f)
	f.StringVar(&c.name, "name", "", "Username of the new account (required)")
	f.StringVar(&c.password, "password", "", "Password of the new account (required)")
	f.StringVar(&c.firstName, "first", "", "First name")
	f.StringVar(&c.lastName, "last", "", "Last name")
	f.StringVar(&c.balance, "balance", "0", "Starting cash balance")
	f.BoolVar(&c.admin, "admin", false, "Grant admin rights")
}

func (c *userAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	balance, err := parseDecimal("balance", c.balance, &decimal.Zero)
	if err != nil {
		return fail(err)
	}

	a, status := openApp(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	if _, err := c.login(ctx, a, true); err != nil {
		return fail(err)
	}
	user, err := a.UserService.Create(ctx, interfaces.CreateUserRequest{
		Username:  c.name,
		Password:  c.password,
		FirstName: c.firstName,
		LastName:  c.lastName,
		Balance:   balance,
		IsAdmin:   c.admin,
	})
	if err != nil {
		return fail(err)
	}
	persist(ctx, a)

	fmt.Fprintf(stdout, "User '%s' created.\n", user.Username)
	return subcommands.ExitSuccess
}

type userDelCmd struct {
	credentials
}

func (*userDelCmd) Name() string     { return "userdel" }
func (*userDelCmd) Synopsis() string { return "delete a user account (admin)" }
func (*userDelCmd) Usage() string {
	return `userdel -u <admin> <username>

  Deletes an account. The admin account cannot be deleted. Portfolios owned
  by the account are kept.
`
}

func (c *userDelCmd) SetFlags(f *flag.FlagSet) { c.credentials.setFlags(f) }

func (c *userDelCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: exactly one username is required")
		return subcommands.ExitUsageError
	}
	username := f.Arg(0)

	a, status := openApp(ctx)
	if a == nil {
		return status
	}
	defer a.Close()

	if _, err := c.login(ctx, a, true); err != nil {
		return fail(err)
	}
	if err := a.UserService.Delete(ctx, username); err != nil {
		return fail(err)
	}
	persist(ctx, a)

	fmt.Fprintf(stdout, "User '%s' deleted.\n", username)
	return subcommands.ExitSuccess
}
