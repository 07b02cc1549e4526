package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/orange/internal/interfaces"
	"github.com/bobmcallan/orange/internal/models"
	"github.com/bobmcallan/orange/internal/services/portfolio"
	"github.com/shopspring/decimal"
)

var minQuantity = decimal.New(1, -4)

func (s *Session) signup(ctx context.Context) (menuID, error) {
	s.header("Create your account")
	username, err := s.prompt.text("Choose a username")
	if err != nil {
		return menuExit, err
	}
	if username == models.AdminUsername {
		s.warn("Username 'admin' is reserved.")
		return menuLogin, nil
	}

	req, err := s.askAccount(username, "Choose a password", "Initial cash balance")
	if err != nil {
		return menuExit, err
	}
	user, err := s.app.UserService.Create(ctx, req)
	if err != nil {
		s.fail(err)
		return menuLogin, nil
	}
	s.persist(ctx)
	s.success("Account created.")
	s.user = user

	create, err := s.prompt.yes("Create your first portfolio now?")
	if err != nil {
		return menuExit, err
	}
	if create {
		if err := s.createPortfolio(ctx, "Initial Purchase Allocation"); err != nil {
			return menuExit, err
		}
	}

	s.success(fmt.Sprintf("Welcome, %s!", displayName(user)))
	return menuMain, nil
}

// askAccount collects the fields of a new non-admin account.
func (s *Session) askAccount(username, passwordLabel, balanceLabel string) (interfaces.CreateUserRequest, error) {
	req := interfaces.CreateUserRequest{Username: username}
	var err error
	if req.Password, err = s.prompt.password(passwordLabel); err != nil {
		return req, err
	}
	if req.FirstName, err = s.prompt.text("First name"); err != nil {
		return req, err
	}
	if req.LastName, err = s.prompt.text("Last name"); err != nil {
		return req, err
	}
	req.Balance, err = s.prompt.decimal(balanceLabel, decimal.Zero, nil)
	return req, err
}

func (s *Session) manageUsers(ctx context.Context) error {
	for {
		s.header("Manage Users")
		s.printf("%s\n", usersMenu)
		choice, err := s.prompt.text(">")
		if err != nil {
			return err
		}

		switch choice {
		case "9":
			return nil
		case "1":
			users, err := s.app.UserService.List(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				admin := "N"
				if u.IsAdmin {
					admin = "Y"
				}
				rows = append(rows, []string{u.Username, u.FirstName, u.LastName, s.render.Money(u.Balance), admin})
			}
			s.table("Users", []string{"Username", "First", "Last", "Balance", "Admin"}, rows)
		case "2":
			username, err := s.prompt.text("New username")
			if err != nil {
				return err
			}
			if username == models.AdminUsername {
				s.warn("Use a different username.")
				continue
			}
			req, err := s.askAccount(username, "New password", "Starting balance")
			if err != nil {
				return err
			}
			if _, err := s.app.UserService.Create(ctx, req); err != nil {
				s.fail(err)
				continue
			}
			s.persist(ctx)
			s.success("User created.")
		case "3":
			username, err := s.prompt.text("Username to delete")
			if err != nil {
				return err
			}
			if err := s.app.UserService.Delete(ctx, username); err != nil {
				s.fail(err)
				continue
			}
			s.persist(ctx)
			s.success("User deleted.")
		default:
			s.warn("Invalid option.")
		}
	}
}

func (s *Session) managePortfolios(ctx context.Context) error {
	for {
		s.header("Manage Portfolios")
		s.printf("%s\n", portfoliosMenu)
		choice, err := s.prompt.text(">")
		if err != nil {
			return err
		}

		switch choice {
		case "9":
			return nil
		case "1":
			if err := s.showPortfolios(ctx); err != nil {
				return err
			}
		case "2":
			if err := s.createPortfolio(ctx, ""); err != nil {
				return err
			}
		case "3":
			p, err := s.askPortfolio(ctx)
			if err != nil {
				if models.IsDomainError(err) {
					s.fail(err)
					continue
				}
				return err
			}
			if err := s.app.PortfolioService.Delete(ctx, s.user.Username, p.ID); err != nil {
				s.fail(err)
				continue
			}
			s.persist(ctx)
			s.success("Portfolio deleted.")
		case "4":
			if err := s.sell(ctx); err != nil {
				return err
			}
		default:
			s.warn("Invalid option.")
		}
	}
}

func (s *Session) showPortfolios(ctx context.Context) error {
	list, err := s.app.PortfolioService.ListByOwner(ctx, s.user.Username)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		var holdings []string
		for _, h := range p.SortedHoldings() {
			holdings = append(holdings, fmt.Sprintf("%s: %s", h.Ticker, h.Quantity.String()))
		}
		rows = append(rows, []string{p.Name, p.Strategy, strings.Join(holdings, ", "), p.ID})
	}
	s.table("Your Portfolios", []string{"Name", "Strategy", "Holdings", "ID"}, rows)
	return nil
}

// createPortfolio asks for a name and strategy, creates the portfolio and
// offers to buy into it straight away. summaryTitle names the allocation
// table; empty uses "Purchases for <name>".
func (s *Session) createPortfolio(ctx context.Context, summaryTitle string) error {
	name, err := s.prompt.text("Portfolio name")
	if err != nil {
		return err
	}
	strategy, err := s.prompt.text("Strategy (free text)")
	if err != nil {
		return err
	}

	p, err := s.app.PortfolioService.Create(ctx, s.user.Username, name, strategy)
	if err != nil {
		s.fail(err)
		return nil
	}
	s.persist(ctx)
	s.success(fmt.Sprintf("Created portfolio %s.", p.ID))

	add, err := s.prompt.yes("Add securities now?")
	if err != nil || !add {
		return err
	}
	if summaryTitle == "" {
		summaryTitle = "Purchases for " + p.Name
	}
	return s.purchaseLoop(ctx, p.ID, summaryTitle)
}

// askPortfolio resolves a portfolio name or id typed by the user.
func (s *Session) askPortfolio(ctx context.Context) (*models.Portfolio, error) {
	key, err := s.prompt.text("Portfolio name or ID")
	if err != nil {
		return nil, err
	}
	return s.app.PortfolioService.Resolve(ctx, s.user.Username, key)
}

func (s *Session) sell(ctx context.Context) error {
	p, err := s.askPortfolio(ctx)
	if err != nil {
		if models.IsDomainError(err) {
			s.fail(err)
			return nil
		}
		return err
	}

	ticker, err := s.prompt.text("Ticker")
	if err != nil {
		return err
	}
	qty, err := s.prompt.decimal("Quantity to sell", minQuantity, nil)
	if err != nil {
		return err
	}
	var suggested *decimal.Decimal
	if sec, ok := s.app.MarketService.Lookup(ticker); ok {
		suggested = &sec.Price
	}
	price, err := s.prompt.decimal("Sale price", decimal.Zero, suggested)
	if err != nil {
		return err
	}

	res, err := s.app.PortfolioService.Sell(ctx, models.TradeRequest{
		Owner:       s.user.Username,
		PortfolioID: p.ID,
		Ticker:      ticker,
		Quantity:    qty,
		Price:       price,
	})
	if err != nil {
		s.fail(err)
		return nil
	}
	s.persist(ctx)
	s.success("Sale completed.")
	s.info("Cash balance: " + s.render.Money(res.Balance))
	return nil
}

func (s *Session) marketplace(ctx context.Context) error {
	for {
		s.header("Marketplace")
		s.printf("%s\n", marketMenu)
		choice, err := s.prompt.text(">")
		if err != nil {
			return err
		}

		switch choice {
		case "9":
			return nil
		case "1":
			s.showCatalog()
		case "2":
			p, err := s.askPortfolio(ctx)
			if err != nil {
				if models.IsDomainError(err) {
					s.fail(err)
					continue
				}
				return err
			}
			if err := s.purchaseLoop(ctx, p.ID, "Purchase Allocation"); err != nil {
				return err
			}
		default:
			s.warn("Invalid option.")
		}
	}
}

func (s *Session) showCatalog() {
	securities := s.app.MarketService.List()
	rows := make([][]string, 0, len(securities))
	for _, sec := range securities {
		rows = append(rows, []string{sec.Ticker, sec.Issuer, s.render.Money(sec.Price)})
	}
	s.table("Marketplace", []string{"Ticker", "Name", "Price"}, rows)
}

// purchaseLoop places multi-ticker orders against portfolioID until the
// user stops, then prints the allocation of everything that filled.
func (s *Session) purchaseLoop(ctx context.Context, portfolioID, summaryTitle string) error {
	var filled []*models.TradeResult
	for {
		s.showCatalog()
		line, err := s.prompt.text("Ticker(s) (space/comma separated)")
		if err != nil {
			return err
		}
		tickers := portfolio.ParseTickers(line)
		if len(tickers) == 0 {
			s.warn("No tickers entered.")
		} else {
			qty, err := s.prompt.decimal("Quantity (applied to each)", minQuantity, nil)
			if err != nil {
				return err
			}
			var suggested *decimal.Decimal
			if len(tickers) == 1 {
				if sec, ok := s.app.MarketService.Lookup(tickers[0]); ok {
					suggested = &sec.Price
				}
			}
			price, err := s.prompt.decimal("Purchase price (applied to each)", decimal.Zero, suggested)
			if err != nil {
				return err
			}

			batch, err := s.app.PortfolioService.BuyBatch(ctx, s.user.Username, portfolioID, tickers, qty, price)
			if err != nil {
				s.fail(err)
			} else {
				for _, l := range batch.Lines {
					if l.Err != nil {
						s.printf("✖ %s: %s\n", l.Ticker, l.Err.Error())
						continue
					}
					s.success(fmt.Sprintf("Purchase completed: %s x %s @ %s", l.Ticker, l.Result.Quantity.String(), s.render.Money(l.Result.Price)))
				}
				if len(batch.Filled()) > 0 {
					s.persist(ctx)
				}
				filled = append(filled, batch.Filled()...)
			}
		}

		again, err := s.prompt.yes("Add another security?")
		if err != nil {
			return err
		}
		if !again {
			break
		}
	}

	if len(filled) == 0 {
		return nil
	}

	total := decimal.Zero
	rows := make([][]string, 0, len(filled))
	for _, r := range filled {
		total = total.Add(r.Amount)
		rows = append(rows, []string{r.Ticker, r.Quantity.String(), s.render.Money(r.Price), s.render.Money(r.Amount)})
	}
	s.table(summaryTitle, []string{"Ticker", "Qty", "Price", "Cost"}, rows)
	s.info("Total spent: " + s.render.Money(total))
	s.info("Cash balance: " + s.render.Money(filled[len(filled)-1].Balance))
	return nil
}
