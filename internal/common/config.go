// Package common provides shared utilities for Orange
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Storage backend names accepted in storage.backend.
const (
	BackendFile      = "file"
	BackendRedis     = "redis"
	BackendSurrealDB = "surrealdb"
)

// Config holds all configuration for Orange
type Config struct {
	Environment string        `toml:"environment"`
	Storage     StorageConfig `toml:"storage"`
	Auth        AuthConfig    `toml:"auth"`
	Admin       AdminConfig   `toml:"admin"`
	Display     DisplayConfig `toml:"display"`
	Logging     LoggingConfig `toml:"logging"`
}

// StorageConfig selects the snapshot backend and holds per-backend settings.
type StorageConfig struct {
	Backend   string          `toml:"backend"` // "file" (default), "redis" or "surrealdb"
	File      FileConfig      `toml:"file"`
	Redis     RedisConfig     `toml:"redis"`
	SurrealDB SurrealDBConfig `toml:"surrealdb"`
}

// FileConfig holds the snapshot file location and how many prior versions to keep.
type FileConfig struct {
	Path     string `toml:"path"`
	Versions int    `toml:"versions"`
}

// RedisConfig holds the Redis connection used by the redis snapshot backend.
type RedisConfig struct {
	Address  string `toml:"address"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Key      string `toml:"key"`
}

// SurrealDBConfig holds the SurrealDB connection used by the surrealdb snapshot backend.
type SurrealDBConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Key       string `toml:"key"`
}

// AuthConfig holds credential hashing settings.
type AuthConfig struct {
	BcryptCost int `toml:"bcrypt_cost"`
}

// AdminConfig holds the values used to seed the reserved admin account on first run.
type AdminConfig struct {
	Password string `toml:"password"`
	Balance  string `toml:"balance"` // decimal string, e.g. "1000"
}

// DisplayConfig holds presentation settings for the interactive session.
type DisplayConfig struct {
	Currency string `toml:"currency"` // ISO 4217 code used to format balances
	Style    string `toml:"style"`    // glamour style: "auto", "dark", "light", "notty"
	Width    int    `toml:"width"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `toml:"level"`
	Format   string `toml:"format"` // "console" or "json"
	FilePath string `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Backend: BackendFile,
			File: FileConfig{
				Path:     "data/state.json",
				Versions: 3,
			},
			Redis: RedisConfig{
				Address: "localhost:6379",
				Key:     "orange:snapshot",
			},
			SurrealDB: SurrealDBConfig{
				Address:   "ws://localhost:8000/rpc",
				Namespace: "orange",
				Database:  "orange",
				Username:  "root",
				Password:  "root",
				Key:       "state",
			},
		},
		Auth: AuthConfig{
			BcryptCost: 10,
		},
		Admin: AdminConfig{
			Password: "adminpass",
			Balance:  "1000",
		},
		Display: DisplayConfig{
			Currency: "USD",
			Style:    "auto",
			Width:    100,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ORANGE_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("ORANGE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("ORANGE_DATA_PATH"); path != "" {
		config.Storage.File.Path = filepath.Join(path, "state.json")
	}

	if backend := os.Getenv("ORANGE_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if addr := os.Getenv("ORANGE_REDIS_ADDRESS"); addr != "" {
		config.Storage.Redis.Address = addr
	}
	if db := os.Getenv("ORANGE_REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			config.Storage.Redis.DB = n
		}
	}

	if addr := os.Getenv("ORANGE_SURREALDB_ADDRESS"); addr != "" {
		config.Storage.SurrealDB.Address = addr
	}

	if pw := os.Getenv("ORANGE_ADMIN_PASSWORD"); pw != "" {
		config.Admin.Password = pw
	}

	if dc := os.Getenv("ORANGE_DISPLAY_CURRENCY"); dc != "" {
		config.Display.Currency = strings.ToUpper(dc)
	}
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendRedis, BackendSurrealDB:
	case "":
		c.Storage.Backend = BackendFile
	default:
		return fmt.Errorf("unknown storage backend '%s'", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendFile && c.Storage.File.Path == "" {
		return fmt.Errorf("storage.file.path is required for the file backend")
	}
	if c.Storage.File.Versions < 0 {
		c.Storage.File.Versions = 0
	}
	if c.Admin.Password == "" {
		return fmt.Errorf("admin.password must not be empty")
	}
	if c.Display.Currency == "" {
		c.Display.Currency = "USD"
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// StorageAddress describes where snapshots go, for banners and logs.
func (c *Config) StorageAddress() string {
	switch c.Storage.Backend {
	case BackendRedis:
		return fmt.Sprintf("redis://%s/%d %s", c.Storage.Redis.Address, c.Storage.Redis.DB, c.Storage.Redis.Key)
	case BackendSurrealDB:
		return fmt.Sprintf("%s %s/%s", c.Storage.SurrealDB.Address, c.Storage.SurrealDB.Namespace, c.Storage.SurrealDB.Database)
	default:
		return c.Storage.File.Path
	}
}
