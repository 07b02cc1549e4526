package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/orange/internal/models"
	"github.com/shopspring/decimal"
)

// tables is the in-memory form of a snapshot.
type tables struct {
	users      map[string]*models.User
	portfolios map[string]*models.Portfolio
}

func newTables() tables {
	return tables{
		users:      make(map[string]*models.User),
		portfolios: make(map[string]*models.Portfolio),
	}
}

// encodeSnapshot writes t as an indented, versioned JSON document.
// Users and portfolios are sorted by key so unchanged state encodes identically.
func encodeSnapshot(t tables, now time.Time) ([]byte, error) {
	snap := models.Snapshot{
		Version:    models.SnapshotVersion,
		SavedAt:    now.UTC(),
		Users:      make([]models.UserRecord, 0, len(t.users)),
		Portfolios: make([]models.PortfolioRecord, 0, len(t.portfolios)),
	}

	for _, u := range t.users {
		snap.Users = append(snap.Users, models.UserRecord{
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Balance:      u.Balance.String(),
			IsAdmin:      u.IsAdmin,
			CreatedAt:    u.CreatedAt,
		})
	}
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].Username < snap.Users[j].Username })

	for _, p := range t.portfolios {
		rec := models.PortfolioRecord{
			ID:        p.ID,
			Owner:     p.Owner,
			Name:      p.Name,
			Strategy:  p.Strategy,
			Holdings:  make([]models.HoldingRecord, 0, len(p.Holdings)),
			CreatedAt: p.CreatedAt,
		}
		for _, h := range p.SortedHoldings() {
			rec.Holdings = append(rec.Holdings, models.HoldingRecord{Ticker: h.Ticker, Quantity: h.Quantity.String()})
		}
		snap.Portfolios = append(snap.Portfolios, rec)
	}
	sort.Slice(snap.Portfolios, func(i, j int) bool { return snap.Portfolios[i].ID < snap.Portfolios[j].ID })

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// decodeSnapshot parses a document written by encodeSnapshot. Any schema
// version other than models.SnapshotVersion, or any malformed record, fails
// the whole decode; partial data is never returned.
func decodeSnapshot(data []byte) (tables, error) {
	if len(data) == 0 {
		return tables{}, fmt.Errorf("snapshot is empty")
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return tables{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if snap.Version != models.SnapshotVersion {
		return tables{}, fmt.Errorf("unsupported snapshot version %d (want %d)", snap.Version, models.SnapshotVersion)
	}

	t := newTables()
	for _, rec := range snap.Users {
		if rec.Username == "" {
			return tables{}, fmt.Errorf("user record without username")
		}
		balance, err := decimal.NewFromString(rec.Balance)
		if err != nil {
			return tables{}, fmt.Errorf("user '%s': invalid balance %q: %w", rec.Username, rec.Balance, err)
		}
		t.users[rec.Username] = &models.User{
			Username:     rec.Username,
			PasswordHash: rec.PasswordHash,
			FirstName:    rec.FirstName,
			LastName:     rec.LastName,
			Balance:      balance,
			IsAdmin:      rec.IsAdmin,
			CreatedAt:    rec.CreatedAt,
		}
	}

	for _, rec := range snap.Portfolios {
		if rec.ID == "" {
			return tables{}, fmt.Errorf("portfolio record without id")
		}
		p := &models.Portfolio{
			ID:        rec.ID,
			Owner:     rec.Owner,
			Name:      rec.Name,
			Strategy:  rec.Strategy,
			Holdings:  make(map[string]decimal.Decimal, len(rec.Holdings)),
			CreatedAt: rec.CreatedAt,
		}
		for _, h := range rec.Holdings {
			qty, err := decimal.NewFromString(h.Quantity)
			if err != nil {
				return tables{}, fmt.Errorf("portfolio '%s': invalid quantity for %s: %w", rec.ID, h.Ticker, err)
			}
			p.Add(h.Ticker, qty)
		}
		t.portfolios[rec.ID] = p
	}

	return t, nil
}
