// Package config loads recipeflow settings.
//
// Settings are layered, later sources winning:
//
//  1. built-in defaults
//  2. the TOML config file ($XDG_CONFIG_HOME/recipeflow/config.toml)
//  3. a .env file in the working directory, if present
//  4. RECIPEFLOW_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/recipeflow/pkg/errors"
)

const appName = "recipeflow"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds all settings.
type Config struct {
	// Database is the path of the recipe database (.json, .toml, .yaml).
	Database string `toml:"database"`

	// Barrels makes liquid-in-barrels the default for every command.
	Barrels bool `toml:"barrels"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string `toml:"addr"`
	Concurrency int    `toml:"concurrency"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Database: "recipes.json",
		Cache: CacheConfig{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			Concurrency: 8,
		},
	}
}

// DefaultPath returns the config file location following XDG.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file at path (or the default location if path is
// empty), then ".env" and the environment. A missing default file is not
// an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	return LoadFiles(path, ".env")
}

// LoadFiles is Load with an explicit .env location.
func LoadFiles(path, envFile string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			switch {
			case stderrors.Is(err, fs.ErrNotExist) && !explicit:
			case stderrors.Is(err, fs.ErrNotExist):
				return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
			default:
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
			}
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "load %s", envFile)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays RECIPEFLOW_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s: invalid boolean %q", key, v)
		}
		*dst = b
		return nil
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s: invalid integer %q", key, v)
		}
		*dst = n
		return nil
	}

	str("RECIPEFLOW_DB", &c.Database)
	str("RECIPEFLOW_CACHE", &c.Cache.Backend)
	str("RECIPEFLOW_CACHE_DIR", &c.Cache.Dir)
	str("RECIPEFLOW_REDIS_ADDR", &c.Cache.RedisAddr)
	str("RECIPEFLOW_REDIS_PASSWORD", &c.Cache.RedisPassword)
	str("RECIPEFLOW_ADDR", &c.Server.Addr)

	return stderrors.Join(
		boolean("RECIPEFLOW_BARRELS", &c.Barrels),
		integer("RECIPEFLOW_REDIS_DB", &c.Cache.RedisDB),
		integer("RECIPEFLOW_CONCURRENCY", &c.Server.Concurrency),
	)
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "redis cache needs an address")
	}
	if c.Server.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "concurrency must be at least 1, got %d", c.Server.Concurrency)
	}
	return nil
}
