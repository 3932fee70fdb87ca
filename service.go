package storekit

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gobeaver/beaver-kit/config"
	"github.com/gobeaver/storekit/mimecheck"
)

// Global instance
var (
	defaultStorage Storage
	defaultOnce    sync.Once
	defaultErr     error
)

// Builder provides a way to create Storage instances with custom env prefixes
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global Storage instance using the builder's prefix
func (b *Builder) Init() error {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return err
	}
	return Init(cfg)
}

// New creates a new Storage instance using the builder's prefix
func (b *Builder) New() (Storage, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return New(cfg)
}

// Init initializes the global storage instance
func Init(configs ...*Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultStorage, defaultErr = New(cfg)
	})

	return defaultErr
}

// New creates a new storage instance with given config
func New(cfg *Config) (Storage, error) {
	// Validation
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Create base storage using factory
	st, err := CreateDriver(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	// Wrap with MIME checking if an allow-list is configured
	checker, err := createChecker(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create checker: %w", err)
	}
	if checker != nil {
		st = NewValidatedStorage(st, checker, cfg.MaxUploadSize)
	}

	return st, nil
}

// validateConfig checks configuration validity
func validateConfig(cfg *Config) error {
	if cfg.Driver == "" {
		return errors.New("driver is required")
	}

	switch cfg.Driver {
	case "local":
		if cfg.LocalBasePath == "" {
			return errors.New("local base path is required for local driver")
		}
	case "memory":
		// No required settings
	default:
		return fmt.Errorf("unknown driver: %s", cfg.Driver)
	}

	if cfg.ChecksumAlgorithm != "" {
		if _, err := NewHasher(ChecksumAlgorithm(cfg.ChecksumAlgorithm)); err != nil {
			return err
		}
	}

	return nil
}

// createChecker creates a MIME checker from config.
// Returns nil when no allow-list is configured.
func createChecker(cfg *Config) (*mimecheck.Checker, error) {
	if cfg.AllowedMimeTypes == "" {
		return nil, nil
	}

	allowed := strings.Split(cfg.AllowedMimeTypes, ",")
	for i := range allowed {
		allowed[i] = strings.TrimSpace(allowed[i])
	}

	return mimecheck.New(mimecheck.Options{
		Allowed:      mimecheck.ExpandGroups(allowed),
		MagicFile:    cfg.MagicFile,
		DisableMagic: cfg.DisableMagic,
		HeaderCheck:  cfg.HeaderCheck,
	})
}

// Store returns the global storage instance
func Store() Storage {
	if defaultStorage == nil {
		_ = Init()
	}
	return defaultStorage
}

// Default returns the global instance, initializing if needed with error handling
func Default() (Storage, error) {
	if defaultStorage == nil {
		if err := Init(); err != nil {
			return nil, err
		}
	}
	return defaultStorage, nil
}

// NewFromEnv creates an instance from environment variables (convenience constructor)
func NewFromEnv() (Storage, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// Reset clears the global instance (for testing)
func Reset() {
	defaultStorage = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
}
