package lexgen

import (
	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
)

// Config controls table generation.
//
// Example:
//
//	config := lexgen.DefaultConfig()
//	config.BlockSharing = false // one low-byte entry per non-ASCII block
//	out, err := lexgen.Generate(grammar, config)
type Config struct {
	// BlockSharing groups non-ASCII blocks with identical content under one
	// shared bit vector pair. Disabling it yields larger, equivalent tables.
	// Default: true
	BlockSharing bool `toml:"block-sharing" json:"block-sharing"`

	// MaxRecursionDepth limits the nesting of token patterns.
	// Default: 100
	MaxRecursionDepth int `toml:"max-recursion-depth" json:"max-recursion-depth"`

	// Logger receives construction diagnostics at debug level.
	// Default: no-op logger
	Logger *zap.Logger `toml:"-" json:"-"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BlockSharing:      true,
		MaxRecursionDepth: 100,
	}
}

// Validate checks if the configuration is valid.
//
// Valid ranges:
//   - MaxRecursionDepth: 10 to 1,000
func (c Config) Validate() error {
	if c.MaxRecursionDepth < 10 || c.MaxRecursionDepth > 1_000 {
		return &ConfigError{
			Field:   "MaxRecursionDepth",
			Message: "must be between 10 and 1,000",
		}
	}
	return nil
}

// LoadConfig reads a TOML configuration file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	meta, err := toml.DecodeFile(path, &c)
	if err != nil {
		return c, errors.Trace(err)
	}
	if len(meta.Undecoded()) > 0 {
		return c, errors.Errorf("unknown keys in config file %s: %v", path, meta.Undecoded())
	}
	return c, c.Validate()
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "lexgen: invalid config: " + e.Field + ": " + e.Message
}
