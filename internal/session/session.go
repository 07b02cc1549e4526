// Package session runs the interactive menu-driven shell.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bobmcallan/orange/internal/app"
	"github.com/bobmcallan/orange/internal/common"
	"github.com/bobmcallan/orange/internal/models"
)

type menuID int

const (
	menuLogin menuID = iota
	menuMain
	menuExit
)

const (
	loginMenu = `Welcome to orange, a CLI based investment app
1. Admin login
2. User login
3. New user sign-up
0. Exit`

	mainMenu = `Main Menu
1. Manage application users
2. Manage portfolios
3. Visit marketplace
0. Exit`

	usersMenu = `Manage Users (admin only)
1. View users
2. Create new user
3. Delete user
9. Back`

	portfoliosMenu = `Manage Portfolios
1. View my portfolios
2. Create new portfolio
3. Delete a portfolio
4. Sell securities (liquidate)
9. Back`

	marketMenu = `Marketplace
1. View securities
2. Place purchase order
9. Back`
)

// Session is one interactive run: a login, any number of menu actions, and
// a final save on exit or end of input.
type Session struct {
	app    *app.App
	logger *common.Logger
	out    io.Writer
	prompt *prompter
	render *Renderer
	user   *models.User
}

// Option configures a Session
type Option func(*Session)

// WithPasswordReader reads passwords with fn instead of the visible input stream.
func WithPasswordReader(fn func() (string, error)) Option {
	return func(s *Session) { s.prompt.readSecret = fn }
}

// WithRenderer replaces the renderer built from the display config.
func WithRenderer(r *Renderer) Option {
	return func(s *Session) { s.render = r }
}

// New creates a Session reading answers from in and writing to out.
func New(a *app.App, in io.Reader, out io.Writer, opts ...Option) (*Session, error) {
	s := &Session{
		app:    a,
		logger: a.Logger,
		out:    out,
		prompt: &prompter{in: bufio.NewScanner(in), out: out},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.render == nil {
		r, err := NewRenderer(a.Config.Display)
		if err != nil {
			return nil, err
		}
		s.render = r
	}
	return s, nil
}

// Run drives the menus until the user exits or input ends. State is saved
// before Run returns either way.
func (s *Session) Run(ctx context.Context) error {
	current := menuLogin
	for current != menuExit {
		var err error
		switch current {
		case menuLogin:
			current, err = s.loginMenu(ctx)
		case menuMain:
			current, err = s.mainMenu(ctx)
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			s.info("Input closed. Bye!")
			current = menuExit
		case errors.Is(err, context.Canceled):
			s.info("Interrupted. Bye!")
			current = menuExit
		case models.IsDomainError(err):
			s.fail(err)
		default:
			s.logger.Error().Err(err).Msg("Unexpected session error")
			s.printf("✖ Unexpected error: %v\n", err)
		}
	}

	s.persist(context.WithoutCancel(ctx))
	return nil
}

func (s *Session) loginMenu(ctx context.Context) (menuID, error) {
	s.header("Portfolio CLI")
	s.printf("%s\n", loginMenu)
	choice, err := s.prompt.text(">")
	if err != nil {
		return menuExit, err
	}

	switch choice {
	case "0":
		s.info("Bye!")
		return menuExit, nil
	case "1":
		return s.login(ctx, true)
	case "2":
		return s.login(ctx, false)
	case "3":
		return s.signup(ctx)
	default:
		s.warn("Invalid option.")
		return menuLogin, nil
	}
}

func (s *Session) login(ctx context.Context, adminOnly bool) (menuID, error) {
	username, err := s.prompt.text("Username")
	if err != nil {
		return menuExit, err
	}
	password, err := s.prompt.password("Password")
	if err != nil {
		return menuExit, err
	}

	user, err := s.app.AuthService.Login(ctx, username, password)
	if err != nil {
		s.fail(err)
		return menuLogin, nil
	}
	if adminOnly && !user.IsAdmin {
		s.warn("This account is not an admin. Use 'User login'.")
		return menuLogin, nil
	}

	s.user = user
	s.success(fmt.Sprintf("Welcome, %s!", displayName(user)))
	return menuMain, nil
}

func (s *Session) mainMenu(ctx context.Context) (menuID, error) {
	if err := s.refreshUser(ctx); err != nil {
		s.fail(err)
		s.user = nil
		return menuLogin, nil
	}

	s.header("Portfolio CLI")
	s.printf("Logged in as %s, cash %s\n", s.user.Username, s.render.Money(s.user.Balance))
	s.printf("%s\n", mainMenu)
	choice, err := s.prompt.text(">")
	if err != nil {
		return menuExit, err
	}

	switch choice {
	case "0":
		s.info("Goodbye!")
		return menuExit, nil
	case "1":
		if !s.user.IsAdmin {
			s.warn("Admins only.")
			switchNow, err := s.prompt.yes("Switch to Admin login now?")
			if err != nil {
				return menuExit, err
			}
			if switchNow {
				s.user = nil
				return menuLogin, nil
			}
			return menuMain, nil
		}
		return menuMain, s.manageUsers(ctx)
	case "2":
		return menuMain, s.managePortfolios(ctx)
	case "3":
		return menuMain, s.marketplace(ctx)
	default:
		s.warn("Invalid option.")
		return menuMain, nil
	}
}

// refreshUser reloads the logged-in account so balances shown are current.
func (s *Session) refreshUser(ctx context.Context) error {
	if s.user == nil {
		return models.NewAuthenticationError("not logged in")
	}
	u, err := s.app.UserService.Get(ctx, s.user.Username)
	if err != nil {
		return err
	}
	s.user = u
	return nil
}

// persist saves state and tells the user when the save did not go through.
func (s *Session) persist(ctx context.Context) {
	if err := s.app.Persist(ctx); err != nil {
		s.warn("Changes are kept for this session but could not be saved.")
	}
}

func displayName(u *models.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// output helpers

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Session) header(title string) {
	s.printf("\n== %s ==\n", title)
}

func (s *Session) info(msg string)    { s.printf("ℹ %s\n", msg) }
func (s *Session) success(msg string) { s.printf("✓ %s\n", msg) }
func (s *Session) warn(msg string)    { s.printf("⚠ %s\n", msg) }

func (s *Session) fail(err error) {
	s.printf("✖ %s\n", err.Error())
}

func (s *Session) table(title string, columns []string, rows [][]string) {
	out, err := s.render.Table(title, columns, rows)
	if err != nil {
		s.logger.Warn().Err(err).Str("table", title).Msg("Failed to render table")
		return
	}
	s.printf("%s", out)
}
