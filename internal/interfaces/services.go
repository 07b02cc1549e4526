package interfaces

import (
	"context"

	"github.com/bobmcallan/orange/internal/models"
	"github.com/shopspring/decimal"
)

// AuthService verifies credentials and hashes passwords
type AuthService interface {
	// HashPassword returns a one-way credential for password.
	HashPassword(password string) (string, error)

	// VerifyPassword reports whether password matches the stored credential.
	VerifyPassword(hash, password string) bool

	// Login returns the user when the credentials are valid.
	Login(ctx context.Context, username, password string) (*models.User, error)
}

// CreateUserRequest carries the fields for a new account
type CreateUserRequest struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Balance   decimal.Decimal
	IsAdmin   bool
}

// UserService manages user accounts
type UserService interface {
	Create(ctx context.Context, req CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, username string) error

	// EnsureAdmin seeds the reserved admin account when it is missing.
	// Returns true when the account was created.
	EnsureAdmin(ctx context.Context, password string, balance decimal.Decimal) (bool, error)
}

// PortfolioService manages portfolios and the trades against them
type PortfolioService interface {
	ListByOwner(ctx context.Context, owner string) ([]*models.Portfolio, error)
	Create(ctx context.Context, owner, name, strategy string) (*models.Portfolio, error)
	Delete(ctx context.Context, owner, portfolioID string) error

	// Resolve finds one of owner's portfolios by id, or failing that by name.
	Resolve(ctx context.Context, owner, idOrName string) (*models.Portfolio, error)

	Buy(ctx context.Context, req models.TradeRequest) (*models.TradeResult, error)
	Sell(ctx context.Context, req models.TradeRequest) (*models.TradeResult, error)

	// BuyBatch buys the same quantity at the same price for each ticker.
	// Each ticker succeeds or fails on its own.
	BuyBatch(ctx context.Context, owner, portfolioID string, tickers []string, quantity, price decimal.Decimal) (*models.PurchaseBatch, error)
}

// MarketService exposes the fixed marketplace catalog
type MarketService interface {
	List() []models.Security
	Lookup(ticker string) (models.Security, bool)
}
