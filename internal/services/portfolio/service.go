// Package portfolio provides portfolio management and trading services
package portfolio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/orange/internal/common"
	"github.com/bobmcallan/orange/internal/interfaces"
	"github.com/bobmcallan/orange/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Compile-time interface check
var _ interfaces.PortfolioService = (*Service)(nil)

const (
	idLength   = 8
	idAttempts = 10
)

// Service implements PortfolioService. Every trade runs inside one store
// transaction, so the balance change and the holding change land together.
type Service struct {
	store  interfaces.StateStore
	logger *common.Logger
	now    func() time.Time
	newID  func() string
}

// NewService creates a new portfolio service
func NewService(store interfaces.StateStore, logger *common.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString()[:idLength] },
	}
}

// ownedPortfolio loads portfolio id if owner holds it. A portfolio owned by
// someone else is reported exactly like a missing one.
func ownedPortfolio(tx interfaces.StateTx, owner, id string) (*models.Portfolio, error) {
	p, ok := tx.Portfolio(id)
	if !ok || p.Owner != owner {
		return nil, models.NewNotFoundError("portfolio '%s' not found", id)
	}
	return p, nil
}

// ListByOwner returns owner's portfolios, oldest first.
func (s *Service) ListByOwner(ctx context.Context, owner string) ([]*models.Portfolio, error) {
	var out []*models.Portfolio
	err := s.store.View(ctx, func(tx interfaces.StateTx) error {
		for _, p := range tx.Portfolios() {
			if p.Owner == owner {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

// Create adds an empty portfolio for owner under a fresh id.
func (s *Service) Create(ctx context.Context, owner, name, strategy string) (*models.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("portfolio name is required")
	}

	var created *models.Portfolio
	err := s.store.Update(ctx, func(tx interfaces.StateTx) error {
		if _, ok := tx.User(owner); !ok {
			return models.NewNotFoundError("owner '%s' not found", owner)
		}

		id := ""
		for i := 0; i < idAttempts; i++ {
			candidate := s.newID()
			if _, taken := tx.Portfolio(candidate); !taken {
				id = candidate
				break
			}
		}
		if id == "" {
			return fmt.Errorf("failed to allocate a portfolio id after %d attempts", idAttempts)
		}

		created = &models.Portfolio{
			ID:        id,
			Owner:     owner,
			Name:      name,
			Strategy:  strings.TrimSpace(strategy),
			Holdings:  make(map[string]decimal.Decimal),
			CreatedAt: s.now().UTC(),
		}
		tx.PutPortfolio(created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("owner", owner).Str("id", created.ID).Str("name", created.Name).Msg("Portfolio created")
	return created, nil
}

// Delete removes one of owner's portfolios.
func (s *Service) Delete(ctx context.Context, owner, portfolioID string) error {
	err := s.store.Update(ctx, func(tx interfaces.StateTx) error {
		if _, err := ownedPortfolio(tx, owner, portfolioID); err != nil {
			return err
		}
		tx.DeletePortfolio(portfolioID)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("owner", owner).Str("id", portfolioID).Msg("Portfolio deleted")
	return nil
}

// Resolve finds one of owner's portfolios by exact id, then by exact name.
// When several share the name the oldest wins.
func (s *Service) Resolve(ctx context.Context, owner, idOrName string) (*models.Portfolio, error) {
	key := strings.TrimSpace(idOrName)
	var found *models.Portfolio
	err := s.store.View(ctx, func(tx interfaces.StateTx) error {
		if p, err := ownedPortfolio(tx, owner, key); err == nil {
			found = p
			return nil
		}
		for _, p := range tx.Portfolios() {
			if p.Owner == owner && p.Name == key {
				found = p
				return nil
			}
		}
		return models.NewNotFoundError("portfolio '%s' not found", key)
	})
	return found, err
}

// validateTrade checks the inputs shared by buy and sell and returns the
// normalized ticker.
func validateTrade(req models.TradeRequest) (string, error) {
	ticker := models.NormalizeTicker(req.Ticker)
	if ticker == "" {
		return "", models.NewValidationError("ticker is required")
	}
	if !req.Quantity.IsPositive() {
		return "", models.NewValidationError("quantity must be > 0, got %s", req.Quantity.String())
	}
	if req.Price.IsNegative() {
		return "", models.NewValidationError("price must be >= 0, got %s", req.Price.String())
	}
	return ticker, nil
}

// Buy debits quantity*price from the owner and adds quantity to the holding.
func (s *Service) Buy(ctx context.Context, req models.TradeRequest) (*models.TradeResult, error) {
	ticker, err := validateTrade(req)
	if err != nil {
		return nil, err
	}
	cost := req.Quantity.Mul(req.Price)

	var result *models.TradeResult
	err = s.store.Update(ctx, func(tx interfaces.StateTx) error {
		user, ok := tx.User(req.Owner)
		if !ok {
			return models.NewNotFoundError("owner '%s' not found", req.Owner)
		}
		p, err := ownedPortfolio(tx, req.Owner, req.PortfolioID)
		if err != nil {
			return err
		}
		if user.Balance.LessThan(cost) {
			return models.NewInsufficientFundsError("insufficient balance: %s %s costs %s, available %s",
				req.Quantity.String(), ticker, cost.String(), user.Balance.String())
		}

		user.Balance = user.Balance.Sub(cost)
		p.Add(ticker, req.Quantity)
		tx.PutUser(user)
		tx.PutPortfolio(p)

		result = &models.TradeResult{
			Side:        models.TradeBuy,
			PortfolioID: p.ID,
			Ticker:      ticker,
			Quantity:    req.Quantity,
			Price:       req.Price,
			Amount:      cost,
			Balance:     user.Balance,
			Holding:     p.Quantity(ticker),
		}
		return nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("owner", req.Owner).Str("ticker", ticker).Msg("Buy rejected")
		return nil, err
	}

	s.logger.Info().
		Str("owner", req.Owner).
		Str("portfolio", result.PortfolioID).
		Str("ticker", ticker).
		Str("quantity", req.Quantity.String()).
		Str("price", req.Price.String()).
		Msg("Buy executed")
	return result, nil
}

// Sell removes quantity from the holding and credits quantity*price to the owner.
func (s *Service) Sell(ctx context.Context, req models.TradeRequest) (*models.TradeResult, error) {
	ticker, err := validateTrade(req)
	if err != nil {
		return nil, err
	}
	proceeds := req.Quantity.Mul(req.Price)

	var result *models.TradeResult
	err = s.store.Update(ctx, func(tx interfaces.StateTx) error {
		user, ok := tx.User(req.Owner)
		if !ok {
			return models.NewNotFoundError("owner '%s' not found", req.Owner)
		}
		p, err := ownedPortfolio(tx, req.Owner, req.PortfolioID)
		if err != nil {
			return err
		}
		if !p.Has(ticker, req.Quantity) {
			return models.NewInsufficientHoldingsError("not enough %s to sell: holding %s, requested %s",
				ticker, p.Quantity(ticker).String(), req.Quantity.String())
		}

		p.Add(ticker, req.Quantity.Neg())
		user.Balance = user.Balance.Add(proceeds)
		tx.PutUser(user)
		tx.PutPortfolio(p)

		result = &models.TradeResult{
			Side:        models.TradeSell,
			PortfolioID: p.ID,
			Ticker:      ticker,
			Quantity:    req.Quantity,
			Price:       req.Price,
			Amount:      proceeds,
			Balance:     user.Balance,
			Holding:     p.Quantity(ticker),
		}
		return nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("owner", req.Owner).Str("ticker", ticker).Msg("Sell rejected")
		return nil, err
	}

	s.logger.Info().
		Str("owner", req.Owner).
		Str("portfolio", result.PortfolioID).
		Str("ticker", ticker).
		Str("quantity", req.Quantity.String()).
		Str("price", req.Price.String()).
		Msg("Sell executed")
	return result, nil
}

// BuyBatch buys quantity of each ticker at price. Lines are independent:
// a rejected ticker does not undo the ones before it. Errors that apply to
// the whole batch (bad quantity or price, unknown portfolio) are returned
// before anything is bought.
func (s *Service) BuyBatch(ctx context.Context, owner, portfolioID string, tickers []string, quantity, price decimal.Decimal) (*models.PurchaseBatch, error) {
	if len(tickers) == 0 {
		return nil, models.NewValidationError("at least one ticker is required")
	}
	if !quantity.IsPositive() {
		return nil, models.NewValidationError("quantity must be > 0, got %s", quantity.String())
	}
	if price.IsNegative() {
		return nil, models.NewValidationError("price must be >= 0, got %s", price.String())
	}
	err := s.store.View(ctx, func(tx interfaces.StateTx) error {
		_, err := ownedPortfolio(tx, owner, portfolioID)
		return err
	})
	if err != nil {
		return nil, err
	}

	batch := &models.PurchaseBatch{PortfolioID: portfolioID}
	for _, t := range tickers {
		line := models.BatchLine{Ticker: models.NormalizeTicker(t)}
		line.Result, line.Err = s.Buy(ctx, models.TradeRequest{
			Owner:       owner,
			PortfolioID: portfolioID,
			Ticker:      t,
			Quantity:    quantity,
			Price:       price,
		})
		batch.Lines = append(batch.Lines, line)
	}

	s.logger.Info().
		Str("owner", owner).
		Str("portfolio", portfolioID).
		Int("requested", len(tickers)).
		Int("filled", len(batch.Filled())).
		Str("total", batch.Total().String()).
		Msg("Purchase batch complete")
	return batch, nil
}

// ParseTickers splits a line such as "AAPL, msft tsla" into normalized tickers.
func ParseTickers(line string) []string {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := models.NormalizeTicker(f); t != "" {
			out = append(out, t)
		}
	}
	return out
}
