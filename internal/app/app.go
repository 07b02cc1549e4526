// Package app wires configuration, storage and services into one App shared
// by the interactive shell and the one-shot commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/orange/internal/common"
	"github.com/bobmcallan/orange/internal/interfaces"
	"github.com/bobmcallan/orange/internal/models"
	"github.com/bobmcallan/orange/internal/services/auth"
	"github.com/bobmcallan/orange/internal/services/market"
	"github.com/bobmcallan/orange/internal/services/portfolio"
	"github.com/bobmcallan/orange/internal/services/user"
	"github.com/bobmcallan/orange/internal/storage"
	"github.com/shopspring/decimal"
)

// App holds the loaded state store and every service built on it.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Store            interfaces.StateStore
	AuthService      interfaces.AuthService
	UserService      interfaces.UserService
	PortfolioService interfaces.PortfolioService
	MarketService    interfaces.MarketService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath picks the config file: explicit path, ORANGE_CONFIG,
// orange.toml next to the binary, then config/orange.toml.
func resolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("ORANGE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "orange.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/orange.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and builds the App.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	common.LoadVersionFromFile()

	configPath = resolveConfigPath(configPath)
	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Relative paths in a config file are relative to that file
	if _, err := os.Stat(configPath); err == nil {
		base := filepath.Dir(configPath)
		if p := config.Storage.File.Path; p != "" && !filepath.IsAbs(p) {
			config.Storage.File.Path = filepath.Join(base, p)
		}
		if p := config.Logging.FilePath; p != "" && !filepath.IsAbs(p) {
			config.Logging.FilePath = filepath.Join(base, p)
		}
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	logger.Debug().Str("config", configPath).Msg("Configuration loaded")

	return NewAppWithConfig(ctx, config, logger)
}

// NewAppWithConfig builds the App from an already loaded config: it opens the
// snapshot backend, loads state, and seeds the admin account when missing.
func NewAppWithConfig(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	adminBalance, err := decimal.NewFromString(config.Admin.Balance)
	if err != nil {
		return nil, fmt.Errorf("invalid admin.balance %q: %w", config.Admin.Balance, err)
	}

	store, err := storage.NewStateStore(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// A bad snapshot is logged by the store and the app starts empty
	if err := store.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("Continuing with empty state")
	}

	authService := auth.NewService(store, config.Auth.BcryptCost, logger)
	userService := user.NewService(store, authService, logger)
	portfolioService := portfolio.NewService(store, logger)
	marketService := market.NewDefaultCatalog()

	a := &App{
		Config:           config,
		Logger:           logger,
		Store:            store,
		AuthService:      authService,
		UserService:      userService,
		PortfolioService: portfolioService,
		MarketService:    marketService,
		StartupTime:      startupStart,
	}

	seeded, err := userService.EnsureAdmin(ctx, config.Admin.Password, adminBalance)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}
	if seeded {
		a.Persist(ctx)
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// Persist saves a snapshot after a mutation. A failure is logged and
// returned for display; the in-memory change stands either way.
func (a *App) Persist(ctx context.Context) error {
	err := a.Store.Save(ctx)
	if err != nil && !errors.Is(err, models.ErrPersistence) {
		err = models.NewPersistenceError("failed to save state", err)
	}
	if err != nil {
		a.Logger.Warn().Err(err).Msg("State not persisted")
	}
	return err
}

// Close releases the storage backend.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Store = nil
	}
}
