// Package surrealdb implements a snapshot backend on a SurrealDB record.
package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/orange/internal/common"
	"github.com/bobmcallan/orange/internal/interfaces"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const snapshotTable = "snapshot"

// maxCBORDocBytes is the maximum encoded document size for SurrealDB's CBOR wire format.
const maxCBORDocBytes = 10_000_000

// snapshotRecord is the SurrealDB record shape for the snapshot table.
type snapshotRecord struct {
	Key       string    `json:"key"`
	Size      int       `json:"size"`
	Data      string    `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Backend stores the snapshot document in a single record, snapshot:<key>.
type Backend struct {
	db     *surrealdb.DB
	key    string
	logger *common.Logger
}

// NewBackend connects, signs in and selects the namespace/database.
func NewBackend(ctx context.Context, logger *common.Logger, cfg *common.SurrealDBConfig) (*Backend, error) {
	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	b, err := newBackend(ctx, db, logger, cfg.Key)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", cfg.Address).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB backend opened")
	return b, nil
}

// newBackend wraps an already connected db and makes sure the table exists
// (SurrealDB v3 errors on selecting from undefined tables).
func newBackend(ctx context.Context, db *surrealdb.DB, logger *common.Logger, key string) (*Backend, error) {
	if key == "" {
		key = "state"
	}

	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", snapshotTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", snapshotTable, err)
	}

	return &Backend{db: db, key: sanitizeKey(key), logger: logger}, nil
}

// sanitizeKey keeps record ids to characters SurrealDB accepts unquoted.
func sanitizeKey(key string) string {
	return strings.NewReplacer(".", "_", "/", "_", ":", "_", "-", "_").Replace(key)
}

func (b *Backend) Name() string { return common.BackendSurrealDB }

func (b *Backend) recordID() surrealmodels.RecordID {
	return surrealmodels.NewRecordID(snapshotTable, b.key)
}

// ReadSnapshot returns the stored document.
func (b *Backend) ReadSnapshot(ctx context.Context) ([]byte, error) {
	record, err := surrealdb.Select[snapshotRecord](ctx, b.db, b.recordID())
	if err != nil {
		return nil, fmt.Errorf("failed to select snapshot %s: %w", b.key, err)
	}
	if record == nil || record.Data == "" {
		return nil, fmt.Errorf("record %s:%s: %w", snapshotTable, b.key, interfaces.ErrNoSnapshot)
	}
	return []byte(record.Data), nil
}

// WriteSnapshot upserts the snapshot record. A single UPSERT replaces the
// whole record, so readers never observe a partial document.
func (b *Backend) WriteSnapshot(ctx context.Context, data []byte) error {
	if len(data) > maxCBORDocBytes {
		return fmt.Errorf("snapshot too large for storage: %d bytes (limit %d)", len(data), maxCBORDocBytes)
	}

	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{
		"rid": b.recordID(),
		"record": snapshotRecord{
			Key:       b.key,
			Size:      len(data),
			Data:      string(data),
			UpdatedAt: time.Now(),
		},
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]snapshotRecord](ctx, b.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save snapshot after retries: %w", lastErr)
}

// Close closes the SurrealDB connection.
func (b *Backend) Close() error {
	if b.db != nil {
		return b.db.Close(context.Background())
	}
	return nil
}

// Compile-time check
var _ interfaces.SnapshotBackend = (*Backend)(nil)
