package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/orange/internal/common"
	"github.com/bobmcallan/orange/internal/interfaces"
	"github.com/bobmcallan/orange/internal/storage/redisstore"
	"github.com/bobmcallan/orange/internal/storage/surrealdb"
)

// NewSnapshotBackend creates the snapshot backend named by storage.backend.
// Supported backends: "file" (default), "redis", "surrealdb".
func NewSnapshotBackend(ctx context.Context, logger *common.Logger, config *common.Config) (interfaces.SnapshotBackend, error) {
	switch config.Storage.Backend {
	case common.BackendFile, "":
		return NewFileBackend(logger, &config.Storage.File)

	case common.BackendRedis:
		return redisstore.NewBackend(ctx, logger, &config.Storage.Redis)

	case common.BackendSurrealDB:
		return surrealdb.NewBackend(ctx, logger, &config.Storage.SurrealDB)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: file, redis, surrealdb)", config.Storage.Backend)
	}
}

// NewStateStore opens the configured backend and wraps it in a Store.
// The store starts empty; call Load to read the snapshot.
func NewStateStore(ctx context.Context, logger *common.Logger, config *common.Config) (*Store, error) {
	backend, err := NewSnapshotBackend(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s snapshot backend: %w", config.Storage.Backend, err)
	}

	logger.Info().
		Str("backend", backend.Name()).
		Str("address", config.StorageAddress()).
		Msg("State store initialized")

	return NewStore(logger, backend), nil
}
