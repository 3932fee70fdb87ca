package local

import "github.com/gobeaver/storekit"

func init() {
	storekit.RegisterDriver("local", func(cfg *storekit.Config) (storekit.Storage, error) {
		return New(cfg.LocalBasePath, Config{
			Checksum: storekit.ChecksumAlgorithm(cfg.ChecksumAlgorithm),
		})
	})
}
