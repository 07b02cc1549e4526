// Package storage holds the in-memory state tables and persists them as a
// snapshot through a pluggable backend.
package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/bobmcallan/orange/internal/common"
	"github.com/bobmcallan/orange/internal/interfaces"
	"github.com/bobmcallan/orange/internal/models"
)

// Store implements interfaces.StateStore. One lock guards both tables, so
// every transaction sees and produces a consistent pair of user and
// portfolio records.
type Store struct {
	mu     sync.RWMutex
	saveMu sync.Mutex
	t      tables

	backend interfaces.SnapshotBackend
	logger  *common.Logger
	now     func() time.Time
}

// NewStore creates an empty Store persisting through backend.
func NewStore(logger *common.Logger, backend interfaces.SnapshotBackend) *Store {
	return &Store{
		t:       newTables(),
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// Backend returns the snapshot backend.
func (s *Store) Backend() interfaces.SnapshotBackend {
	return s.backend
}

// Load replaces the tables with the stored snapshot.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.backend.ReadSnapshot(ctx)
	if err != nil {
		s.reset()
		if errors.Is(err, interfaces.ErrNoSnapshot) {
			s.logger.Info().Str("backend", s.backend.Name()).Msg("No snapshot found, starting empty")
			return nil
		}
		s.logger.Warn().Err(err).Str("backend", s.backend.Name()).Msg("Snapshot unreadable, starting empty")
		return models.NewPersistenceError("failed to read snapshot", err)
	}

	t, err := decodeSnapshot(data)
	if err != nil {
		s.reset()
		s.logger.Warn().Err(err).Str("backend", s.backend.Name()).Msg("Snapshot corrupt, starting empty")
		return models.NewPersistenceError("failed to decode snapshot", err)
	}

	s.mu.Lock()
	s.t = t
	s.mu.Unlock()

	s.logger.Info().
		Str("backend", s.backend.Name()).
		Int("users", len(t.users)).
		Int("portfolios", len(t.portfolios)).
		Msg("Snapshot loaded")
	return nil
}

func (s *Store) reset() {
	s.mu.Lock()
	s.t = newTables()
	s.mu.Unlock()
}

// Save writes both tables to the backend.
func (s *Store) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	data, err := encodeSnapshot(s.t, s.now())
	users, portfolios := len(s.t.users), len(s.t.portfolios)
	s.mu.RUnlock()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode snapshot")
		return models.NewPersistenceError("failed to encode snapshot", err)
	}

	if err := s.backend.WriteSnapshot(ctx, data); err != nil {
		s.logger.Warn().Err(err).Str("backend", s.backend.Name()).Msg("Failed to save snapshot")
		return models.NewPersistenceError("failed to save snapshot", err)
	}

	s.logger.Debug().
		Str("backend", s.backend.Name()).
		Int("users", users).
		Int("portfolios", portfolios).
		Int("bytes", len(data)).
		Msg("Snapshot saved")
	return nil
}

// Update runs fn in a read-write transaction. Staged changes are applied
// together when fn returns nil and discarded otherwise.
func (s *Store) Update(ctx context.Context, fn func(tx interfaces.StateTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newTx(&s.t)
	if err := fn(tx); err != nil {
		return err
	}
	tx.apply()
	return nil
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(tx interfaces.StateTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(newTx(&s.t))
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// tx stages changes over a base table set. A nil staged value marks a delete.
type tx struct {
	base       *tables
	users      map[string]*models.User
	portfolios map[string]*models.Portfolio
}

func newTx(base *tables) *tx {
	return &tx{
		base:       base,
		users:      make(map[string]*models.User),
		portfolios: make(map[string]*models.Portfolio),
	}
}

func (t *tx) User(username string) (*models.User, bool) {
	if u, staged := t.users[username]; staged {
		if u == nil {
			return nil, false
		}
		return u.Clone(), true
	}
	u, ok := t.base.users[username]
	if !ok {
		return nil, false
	}
	return u.Clone(), true
}

func (t *tx) Users() []*models.User {
	out := make([]*models.User, 0, len(t.base.users)+len(t.users))
	for name := range t.base.users {
		if _, staged := t.users[name]; !staged {
			out = append(out, t.base.users[name].Clone())
		}
	}
	for _, u := range t.users {
		if u != nil {
			out = append(out, u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (t *tx) PutUser(user *models.User) {
	t.users[user.Username] = user.Clone()
}

func (t *tx) DeleteUser(username string) {
	t.users[username] = nil
}

func (t *tx) Portfolio(id string) (*models.Portfolio, bool) {
	if p, staged := t.portfolios[id]; staged {
		if p == nil {
			return nil, false
		}
		return p.Clone(), true
	}
	p, ok := t.base.portfolios[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Portfolios returns every portfolio, oldest first (ties broken by id).
func (t *tx) Portfolios() []*models.Portfolio {
	out := make([]*models.Portfolio, 0, len(t.base.portfolios)+len(t.portfolios))
	for id := range t.base.portfolios {
		if _, staged := t.portfolios[id]; !staged {
			out = append(out, t.base.portfolios[id].Clone())
		}
	}
	for _, p := range t.portfolios {
		if p != nil {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (t *tx) PutPortfolio(portfolio *models.Portfolio) {
	t.portfolios[portfolio.ID] = portfolio.Clone()
}

func (t *tx) DeletePortfolio(id string) {
	t.portfolios[id] = nil
}

// apply copies staged changes into the base tables.
func (t *tx) apply() {
	for name, u := range t.users {
		if u == nil {
			delete(t.base.users, name)
			continue
		}
		t.base.users[name] = u
	}
	for id, p := range t.portfolios {
		if p == nil {
			delete(t.base.portfolios, id)
			continue
		}
		t.base.portfolios[id] = p
	}
}
