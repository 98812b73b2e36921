// Package config provides TOML configuration for cakechain embedders,
// including the genesis allocation the protocol leaves as a deployment
// constant.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/Tiramisu-Cake/cakechain/blockstore"
	"github.com/Tiramisu-Cake/cakechain/types"
)

// Config is the main configuration for a cakechain embedder.
type Config struct {
	Chain      ChainConfig      `toml:"chain"`
	Genesis    GenesisConfig    `toml:"genesis"`
	BlockStore BlockStoreConfig `toml:"blockstore"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Logging    LoggingConfig    `toml:"logging"`
}

// ChainConfig identifies the chain.
type ChainConfig struct {
	// ID is the chain identifier mixed into transaction signing bytes.
	// All nodes of a chain must agree on it.
	ID uint64 `toml:"id"`
}

// GenesisConfig fixes the initial allocation. The genesis hash commits to
// it, so all nodes of a chain must configure the same entries.
type GenesisConfig struct {
	// Alloc lists the accounts funded at genesis. May be empty.
	Alloc []AllocEntry `toml:"alloc"`
}

// AllocEntry funds one account at genesis.
type AllocEntry struct {
	// Address is the 64-hex-character account address.
	Address string `toml:"address"`

	// Balance is the starting balance.
	Balance uint64 `toml:"balance"`
}

// BlockStoreConfig configures the optional block archive.
type BlockStoreConfig struct {
	// Enabled determines whether accepted blocks are archived.
	Enabled bool `toml:"enabled"`

	// Backend is the storage backend ("memory", "leveldb" or "badgerdb").
	Backend string `toml:"backend"`

	// Path is the directory path for block storage.
	Path string `toml:"path"`

	// CacheSize is the number of blocks held in the LRU read cache.
	// 0 disables the cache.
	CacheSize int `toml:"cache_size"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Enabled determines whether metrics collection is active.
	Enabled bool `toml:"enabled"`

	// Namespace is the Prometheus metrics namespace prefix.
	Namespace string `toml:"namespace"`

	// ListenAddr is the address to serve metrics on (e.g., ":9090").
	ListenAddr string `toml:"listen_addr"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `toml:"level"`

	// Format is the log output format ("text" or "json").
	Format string `toml:"format"`

	// Output is the log output destination ("stdout", "stderr", or a file path).
	Output string `toml:"output"`
}

// DefaultConfig returns a Config with sensible default values: the canonical
// chain ID, an empty allocation, archival disabled.
func DefaultConfig() *Config {
	return &Config{
		Chain: ChainConfig{
			ID: types.DefaultChainID,
		},
		Genesis: GenesisConfig{
			Alloc: []AllocEntry{},
		},
		BlockStore: BlockStoreConfig{
			Enabled:   false,
			Backend:   "leveldb",
			Path:      "data/blocks",
			CacheSize: 256,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			Namespace:  "cakechain",
			ListenAddr: ":9090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// LoadConfig loads configuration from a TOML file.
// Missing values are filled with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validation errors.
var (
	ErrZeroChainID              = errors.New("chain id cannot be zero")
	ErrInvalidAllocAddress      = errors.New("alloc address must be 64 hex characters")
	ErrDuplicateAllocAddress    = errors.New("alloc address appears more than once")
	ErrInvalidBlockStoreBackend = errors.New("blockstore backend must be 'memory', 'leveldb' or 'badgerdb'")
	ErrEmptyBlockStorePath      = errors.New("blockstore path cannot be empty")
	ErrInvalidCacheSize         = errors.New("blockstore cache_size must be non-negative")
	ErrEmptyMetricsNamespace    = errors.New("metrics namespace cannot be empty when enabled")
	ErrEmptyMetricsListenAddr   = errors.New("metrics listen_addr cannot be empty when enabled")
	ErrInvalidLogLevel          = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("log format must be 'text' or 'json'")
	ErrEmptyLogOutput           = errors.New("log output cannot be empty")
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Chain.Validate(); err != nil {
		return fmt.Errorf("chain config: %w", err)
	}
	if err := c.Genesis.Validate(); err != nil {
		return fmt.Errorf("genesis config: %w", err)
	}
	if err := c.BlockStore.Validate(); err != nil {
		return fmt.Errorf("blockstore config: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate checks the chain configuration for errors.
func (c *ChainConfig) Validate() error {
	if c.ID == 0 {
		return ErrZeroChainID
	}
	return nil
}

// Validate checks the genesis configuration for errors.
func (c *GenesisConfig) Validate() error {
	seen := make(map[types.Address]struct{}, len(c.Alloc))
	for _, entry := range c.Alloc {
		addr, err := types.AddressFromHex(entry.Address)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidAllocAddress, entry.Address, err)
		}
		if _, dup := seen[addr]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateAllocAddress, entry.Address)
		}
		seen[addr] = struct{}{}
	}
	return nil
}

// Allocation converts the genesis entries into the allocation map the chain
// engine consumes. The configuration must have been validated.
func (c *GenesisConfig) Allocation() (map[types.Address]uint64, error) {
	alloc := make(map[types.Address]uint64, len(c.Alloc))
	for _, entry := range c.Alloc {
		addr, err := types.AddressFromHex(entry.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAllocAddress, entry.Address, err)
		}
		if _, dup := alloc[addr]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAllocAddress, entry.Address)
		}
		alloc[addr] = entry.Balance
	}
	return alloc, nil
}

// Validate checks the block store configuration for errors.
func (c *BlockStoreConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Backend {
	case "memory", "leveldb", "badgerdb":
	default:
		return ErrInvalidBlockStoreBackend
	}
	if c.Backend != "memory" && c.Path == "" {
		return ErrEmptyBlockStorePath
	}
	if c.CacheSize < 0 {
		return ErrInvalidCacheSize
	}
	return nil
}

// Open constructs the configured block store, wrapped in an LRU read cache
// when cache_size is positive. Returns nil when archival is disabled.
// The caller owns the returned store and must Close it.
func (c *BlockStoreConfig) Open() (blockstore.Store, error) {
	if !c.Enabled {
		return nil, nil
	}

	var (
		store blockstore.Store
		err   error
	)
	switch c.Backend {
	case "memory":
		store = blockstore.NewMemStore()
	case "leveldb":
		store, err = blockstore.NewLevelDBStore(c.Path)
	case "badgerdb":
		store, err = blockstore.NewBadgerStore(c.Path)
	default:
		return nil, ErrInvalidBlockStoreBackend
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s block store: %w", c.Backend, err)
	}

	if c.CacheSize > 0 {
		cached, err := blockstore.NewCachedStore(store, c.CacheSize)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("wrapping block store cache: %w", err)
		}
		store = cached
	}
	return store, nil
}

// Validate checks the metrics configuration for errors.
func (c *MetricsConfig) Validate() error {
	if c.Enabled {
		if c.Namespace == "" {
			return ErrEmptyMetricsNamespace
		}
		if c.ListenAddr == "" {
			return ErrEmptyMetricsListenAddr
		}
	}
	return nil
}

// Validate checks the logging configuration for errors.
func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	switch c.Format {
	case "text", "json":
	default:
		return ErrInvalidLogFormat
	}

	if c.Output == "" {
		return ErrEmptyLogOutput
	}

	return nil
}

// WriteConfigFile writes the configuration to a TOML file.
func WriteConfigFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}

// EnsureDataDirs creates the data directories specified in the configuration.
func (c *Config) EnsureDataDirs() error {
	if !c.BlockStore.Enabled || c.BlockStore.Backend == "memory" {
		return nil
	}
	if err := os.MkdirAll(c.BlockStore.Path, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", c.BlockStore.Path, err)
	}
	return nil
}
