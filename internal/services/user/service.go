// Package user provides account management services
package user

import (
	"context"
	"strings"
	"time"

	"github.com/bobmcallan/orange/internal/common"
	"github.com/bobmcallan/orange/internal/interfaces"
	"github.com/bobmcallan/orange/internal/models"
	"github.com/shopspring/decimal"
)

// Compile-time interface check
var _ interfaces.UserService = (*Service)(nil)

// Service implements UserService
type Service struct {
	store  interfaces.StateStore
	auth   interfaces.AuthService
	logger *common.Logger
	now    func() time.Time
}

// NewService creates a new user service
func NewService(store interfaces.StateStore, auth interfaces.AuthService, logger *common.Logger) *Service {
	return &Service{
		store:  store,
		auth:   auth,
		logger: logger,
		now:    time.Now,
	}
}

// validateUsername returns a message describing why username is unusable,
// or "" when it is acceptable.
func validateUsername(username string) string {
	if username == "" {
		return "username is required"
	}
	if len(username) > 128 {
		return "username must be 128 characters or fewer"
	}
	if strings.TrimSpace(username) != username {
		return "username must not start or end with whitespace"
	}
	for _, c := range username {
		if c < 0x20 || c == 0x7f {
			return "username contains invalid control characters"
		}
	}
	return ""
}

// Create adds a new account. The password is hashed before it is stored.
func (s *Service) Create(ctx context.Context, req interfaces.CreateUserRequest) (*models.User, error) {
	if msg := validateUsername(req.Username); msg != "" {
		return nil, models.NewValidationError("%s", msg)
	}
	if req.Password == "" {
		return nil, models.NewValidationError("password is required")
	}
	if req.Balance.IsNegative() {
		return nil, models.NewValidationError("balance must not be negative, got %s", req.Balance.String())
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Balance:      req.Balance,
		IsAdmin:      req.IsAdmin,
		CreatedAt:    s.now().UTC(),
	}

	err = s.store.Update(ctx, func(tx interfaces.StateTx) error {
		if _, exists := tx.User(req.Username); exists {
			return models.NewValidationError("user '%s' already exists", req.Username)
		}
		tx.PutUser(user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", user.Username).Bool("admin", user.IsAdmin).Str("balance", user.Balance.String()).Msg("User created")
	return user, nil
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, username string) (*models.User, error) {
	var user *models.User
	err := s.store.View(ctx, func(tx interfaces.StateTx) error {
		u, ok := tx.User(username)
		if !ok {
			return models.NewNotFoundError("user '%s' not found", username)
		}
		user = u
		return nil
	})
	return user, err
}

// List returns every account ordered by username.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := s.store.View(ctx, func(tx interfaces.StateTx) error {
		users = tx.Users()
		return nil
	})
	return users, err
}

// Delete removes an account. The admin account is protected. Portfolios
// owned by the user are left in place.
func (s *Service) Delete(ctx context.Context, username string) error {
	if username == models.AdminUsername {
		return models.NewValidationError("the '%s' account cannot be deleted", models.AdminUsername)
	}

	orphaned := 0
	err := s.store.Update(ctx, func(tx interfaces.StateTx) error {
		if _, ok := tx.User(username); !ok {
			return models.NewNotFoundError("user '%s' not found", username)
		}
		for _, p := range tx.Portfolios() {
			if p.Owner == username {
				orphaned++
			}
		}
		tx.DeleteUser(username)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("username", username).Msg("User deleted")
	if orphaned > 0 {
		s.logger.Warn().Str("username", username).Int("portfolios", orphaned).Msg("Deleted user still owns portfolios")
	}
	return nil
}

// EnsureAdmin seeds the admin account if it does not exist yet.
func (s *Service) EnsureAdmin(ctx context.Context, password string, balance decimal.Decimal) (bool, error) {
	if _, err := s.Get(ctx, models.AdminUsername); err == nil {
		return false, nil
	}

	_, err := s.Create(ctx, interfaces.CreateUserRequest{
		Username:  models.AdminUsername,
		Password:  password,
		FirstName: "Admin",
		LastName:  "User",
		Balance:   balance,
		IsAdmin:   true,
	})
	if err != nil {
		return false, err
	}
	s.logger.Info().Msg("Admin account seeded")
	return true, nil
}
