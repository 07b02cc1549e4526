// Package auth provides credential hashing and login
package auth

import (
	"context"
	"fmt"

	"github.com/bobmcallan/orange/internal/common"
	"github.com/bobmcallan/orange/internal/interfaces"
	"github.com/bobmcallan/orange/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Compile-time interface check
var _ interfaces.AuthService = (*Service)(nil)

// bcrypt only reads the first 72 bytes of a password.
const maxPasswordBytes = 72

// Service implements AuthService using bcrypt
type Service struct {
	store  interfaces.StateStore
	cost   int
	logger *common.Logger
}

// NewService creates a new auth service. A cost outside bcrypt's range falls
// back to bcrypt.DefaultCost.
func NewService(store interfaces.StateStore, cost int, logger *common.Logger) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		store:  store,
		cost:   cost,
		logger: logger,
	}
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

// HashPassword returns a salted bcrypt hash of password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncate(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash.
func (s *Service) VerifyPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}

// Login returns the user when username exists and password matches.
// Unknown users and wrong passwords fail with the same message.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	var user *models.User
	err := s.store.View(ctx, func(tx interfaces.StateTx) error {
		u, ok := tx.User(username)
		if !ok {
			return models.NewAuthenticationError("invalid username or password")
		}
		user = u
		return nil
	})
	if err != nil {
		s.logger.Debug().Str("username", username).Msg("Login rejected: unknown user")
		return nil, err
	}

	if !s.VerifyPassword(user.PasswordHash, password) {
		s.logger.Debug().Str("username", username).Msg("Login rejected: wrong password")
		return nil, models.NewAuthenticationError("invalid username or password")
	}

	s.logger.Info().Str("username", username).Bool("admin", user.IsAdmin).Msg("User logged in")
	return user, nil
}
