// Package interfaces defines service contracts for Orange
package interfaces

import (
	"context"
	"errors"

	"github.com/bobmcallan/orange/internal/models"
)

// ErrNoSnapshot is returned by a SnapshotBackend when nothing has been saved yet.
var ErrNoSnapshot = errors.New("snapshot not found")

// SnapshotBackend reads and writes the encoded snapshot document.
type SnapshotBackend interface {
	// Name identifies the backend in logs ("file", "redis", "surrealdb").
	Name() string

	// ReadSnapshot returns the last written document, or an error wrapping
	// ErrNoSnapshot when none exists.
	ReadSnapshot(ctx context.Context) ([]byte, error)

	// WriteSnapshot replaces the stored document with data.
	WriteSnapshot(ctx context.Context, data []byte) error

	Close() error
}

// StateTx is a unit of work over the user and portfolio tables. Records
// returned by a StateTx are copies; staged changes become visible to other
// transactions only when the enclosing Update function returns nil.
type StateTx interface {
	User(username string) (*models.User, bool)
	Users() []*models.User
	PutUser(user *models.User)
	DeleteUser(username string)

	Portfolio(id string) (*models.Portfolio, bool)
	Portfolios() []*models.Portfolio
	PutPortfolio(portfolio *models.Portfolio)
	DeletePortfolio(id string)
}

// StateStore holds the in-memory tables and their durable snapshot.
type StateStore interface {
	// Load replaces the tables with the stored snapshot. A missing snapshot
	// leaves the store empty and returns nil; an unreadable one leaves it
	// empty and returns a KindPersistence error.
	Load(ctx context.Context) error

	// Save writes both tables to the backend. Failures return a
	// KindPersistence error and never touch the in-memory tables.
	Save(ctx context.Context) error

	// Update runs fn in a read-write transaction.
	Update(ctx context.Context, fn func(tx StateTx) error) error

	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(tx StateTx) error) error

	Close() error
}
