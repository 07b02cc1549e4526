package models

import "time"

// SnapshotVersion is the schema version written by this build. Snapshots with
// any other version are treated as unreadable.
const SnapshotVersion = 1

// Snapshot is the persisted form of the state tables. Every record is written
// field by field so the schema can evolve without breaking old files.
// Decimal values are carried as strings.
type Snapshot struct {
	Version    int               `json:"version"`
	SavedAt    time.Time         `json:"saved_at"`
	Users      []UserRecord      `json:"users"`
	Portfolios []PortfolioRecord `json:"portfolios"`
}

// UserRecord is the snapshot row for a User.
type UserRecord struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Balance      string    `json:"balance"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// PortfolioRecord is the snapshot row for a Portfolio.
type PortfolioRecord struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	Name      string          `json:"name"`
	Strategy  string          `json:"strategy"`
	Holdings  []HoldingRecord `json:"holdings"`
	CreatedAt time.Time       `json:"created_at"`
}

// HoldingRecord is one ticker/quantity pair inside a PortfolioRecord.
type HoldingRecord struct {
	Ticker   string `json:"ticker"`
	Quantity string `json:"quantity"`
}
