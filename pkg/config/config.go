/*
Package config manages the TOML config for tripserve.

A missing config file is created with defaults. A broken one is parsed
section by section, keeping every value that still has the right type.
*/
package config

import (
	"fmt"
	"path/filepath"

	"github.com/bastiangx/tripserve/internal/utils"
	"github.com/charmbracelet/log"
)

const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
)

// Config holds the entire config structure
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Catalog CatalogConfig `toml:"catalog"`
	Listing ListingConfig `toml:"listing"`
	CLI     CliConfig     `toml:"cli"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MinPrefix    int  `toml:"min_prefix"`
	MaxPrefix    int  `toml:"max_prefix"`
	EnableFilter bool `toml:"enable_filter"`
}

// CatalogConfig selects where trips come from.
type CatalogConfig struct {
	Backend  string `toml:"backend"`
	SeedFile string `toml:"seed_file"`
	DBPath   string `toml:"db_path"`
}

// ListingConfig holds trip listing paging options.
type ListingConfig struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultMinLen   int  `toml:"default_min_len"`
	DefaultMaxLen   int  `toml:"default_max_len"`
	DefaultNoFilter bool `toml:"default_no_filter"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MinPrefix:    1,
			MaxPrefix:    60,
			EnableFilter: false,
		},
		Catalog: CatalogConfig{
			Backend:  BackendMemory,
			SeedFile: "data/trips.toml",
			DBPath:   "data/trips.db",
		},
		Listing: ListingConfig{
			DefaultPageSize: 10,
			MaxPageSize:     50,
		},
		CLI: CliConfig{
			DefaultMinLen:   1,
			DefaultMaxLen:   60,
			DefaultNoFilter: false,
		},
	}
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.MinPrefix < 1 {
		return fmt.Errorf("server.min_prefix must be >= 1, got %d", c.Server.MinPrefix)
	}
	if c.Server.MaxPrefix < c.Server.MinPrefix {
		return fmt.Errorf("server.max_prefix (%d) is below min_prefix (%d)", c.Server.MaxPrefix, c.Server.MinPrefix)
	}
	switch c.Catalog.Backend {
	case BackendMemory, BackendBolt:
	default:
		return fmt.Errorf("catalog.backend must be %q or %q, got %q", BackendMemory, BackendBolt, c.Catalog.Backend)
	}
	if c.Listing.DefaultPageSize < 1 || c.Listing.MaxPageSize < c.Listing.DefaultPageSize {
		return fmt.Errorf("listing page sizes are invalid: default=%d max=%d", c.Listing.DefaultPageSize, c.Listing.MaxPageSize)
	}
	return nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		log.Warnf("Invalid config in %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps whatever sections still decode from a broken file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "catalog"); ok {
		extractCatalogConfig(section, &config.Catalog)
	}
	if section, ok := utils.ExtractSection(tempConfig, "listing"); ok {
		extractListingConfig(section, &config.Listing)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt(data, "min_prefix"); ok {
		server.MinPrefix = val
	}
	if val, ok := utils.ExtractInt(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractBool(data, "enable_filter"); ok {
		server.EnableFilter = val
	}
}

func extractCatalogConfig(data map[string]any, catalog *CatalogConfig) {
	if val, ok := utils.ExtractString(data, "backend"); ok {
		catalog.Backend = val
	}
	if val, ok := utils.ExtractString(data, "seed_file"); ok {
		catalog.SeedFile = val
	}
	if val, ok := utils.ExtractString(data, "db_path"); ok {
		catalog.DBPath = val
	}
}

func extractListingConfig(data map[string]any, listing *ListingConfig) {
	if val, ok := utils.ExtractInt(data, "default_page_size"); ok {
		listing.DefaultPageSize = val
	}
	if val, ok := utils.ExtractInt(data, "max_page_size"); ok {
		listing.MaxPageSize = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt(data, "default_min_len"); ok {
		cli.DefaultMinLen = val
	}
	if val, ok := utils.ExtractInt(data, "default_max_len"); ok {
		cli.DefaultMaxLen = val
	}
	if val, ok := utils.ExtractBool(data, "default_no_filter"); ok {
		cli.DefaultNoFilter = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
