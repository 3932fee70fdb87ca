package memory

import "github.com/gobeaver/storekit"

func init() {
	storekit.RegisterDriver("memory", func(cfg *storekit.Config) (storekit.Storage, error) {
		return New(Config{
			MaxSize:  cfg.MemoryMaxSize,
			Checksum: storekit.ChecksumAlgorithm(cfg.ChecksumAlgorithm),
		}), nil
	})
}
