package mimecheck

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Signature is one entry of a custom signature database: a byte pattern
// identifying a MIME type at a fixed offset from the start of the file.
type Signature struct {
	MIME   string
	Offset int
	Magic  []byte
}

// signatureEntry is the on-disk form of a Signature. Magic bytes are
// hex-encoded so the database stays a plain text file.
type signatureEntry struct {
	MIME   string `json:"mime"`
	Offset int    `json:"offset"`
	Magic  string `json:"magic"`
}

// LoadSignatureFile reads a custom signature database from path.
// The file is a JSON array of {mime, offset, magic} entries with magic
// hex-encoded. A malformed database is an error, never a silent skip.
func LoadSignatureFile(path string) ([]Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signature database %s: %w", path, err)
	}

	var entries []signatureEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("malformed signature database %s: %w", path, err)
	}

	sigs := make([]Signature, 0, len(entries))
	for i, e := range entries {
		if e.MIME == "" {
			return nil, fmt.Errorf("malformed signature database %s: entry %d has no mime", path, i)
		}
		if e.Offset < 0 {
			return nil, fmt.Errorf("malformed signature database %s: entry %d has negative offset", path, i)
		}
		magic, err := hex.DecodeString(e.Magic)
		if err != nil {
			return nil, fmt.Errorf("malformed signature database %s: entry %d: %w", path, i, err)
		}
		if len(magic) == 0 {
			return nil, fmt.Errorf("malformed signature database %s: entry %d has empty magic", path, i)
		}
		sigs = append(sigs, Signature{MIME: e.MIME, Offset: e.Offset, Magic: magic})
	}

	return sigs, nil
}

// matchSignatures checks data against the given signatures in order.
// Returns the MIME of the first match, or empty string.
func matchSignatures(sigs []Signature, data []byte) string {
	for _, sig := range sigs {
		if sig.Offset+len(sig.Magic) > len(data) {
			continue
		}
		if bytes.Equal(data[sig.Offset:sig.Offset+len(sig.Magic)], sig.Magic) {
			return sig.MIME
		}
	}
	return ""
}

// maxSignatureLen returns the number of leading bytes needed to test
// every signature in the set.
func maxSignatureLen(sigs []Signature) int {
	max := 0
	for _, sig := range sigs {
		if n := sig.Offset + len(sig.Magic); n > max {
			max = n
		}
	}
	return max
}

// MagicFileEnv names the environment variable pointing at the default
// signature database used when Options.MagicFile is empty.
const MagicFileEnv = "MIMECHECK_MAGIC"

var (
	defaultMagicOnce sync.Once
	defaultMagicPath string
)

// DefaultMagicFile returns the signature database named by MIMECHECK_MAGIC.
// The environment is consulted once per process and the result cached.
func DefaultMagicFile() string {
	defaultMagicOnce.Do(func() {
		defaultMagicPath = os.Getenv(MagicFileEnv)
	})
	return defaultMagicPath
}

// resetDefaultMagicFile clears the cached env lookup (for testing).
func resetDefaultMagicFile() {
	defaultMagicOnce = sync.Once{}
	defaultMagicPath = ""
}
