package storekit

import (
	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Default driver to use (local, memory)
	Driver string `env:"STOREKIT_DRIVER,default:local"`

	// Local driver configuration
	LocalBasePath string `env:"STOREKIT_LOCAL_BASE_PATH,default:./storage"`

	// Memory driver configuration
	MemoryMaxSize int64 `env:"STOREKIT_MEMORY_MAX_SIZE,default:0"` // 0 = unlimited

	// Upload validation defaults
	AllowedMimeTypes string `env:"STOREKIT_ALLOWED_MIME_TYPES"` // comma-separated allow-list
	MagicFile        string `env:"STOREKIT_MAGIC_FILE"`         // custom signature database path
	DisableMagic     bool   `env:"STOREKIT_DISABLE_MAGIC,default:false"`
	HeaderCheck      bool   `env:"STOREKIT_HEADER_CHECK,default:false"`
	MaxUploadSize    int64  `env:"STOREKIT_MAX_UPLOAD_SIZE,default:10485760"` // 10MB default

	// Default checksum algorithm for write results
	ChecksumAlgorithm string `env:"STOREKIT_CHECKSUM_ALGORITHM,default:xxhash"`

	// Search cluster management API
	ClusterAddr   string `env:"STOREKIT_CLUSTER_ADDR"`
	ClusterAPIKey string `env:"STOREKIT_CLUSTER_API_KEY"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
