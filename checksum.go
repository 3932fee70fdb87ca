package storekit

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"

	"github.com/cespare/xxhash/v2"
)

// NewHasher creates a new hash.Hash for the given algorithm.
// An empty algorithm selects xxHash. Returns an error if the algorithm
// is not supported.
func NewHasher(algorithm ChecksumAlgorithm) (hash.Hash, error) {
	switch algorithm {
	case ChecksumXXHash, "":
		return xxhash.New(), nil
	case ChecksumCRC32:
		return crc32.NewIEEE(), nil
	case ChecksumSHA256:
		return sha256.New(), nil
	case ChecksumSHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported checksum algorithm: %s", ErrNotSupported, algorithm)
	}
}

// CalculateChecksum reads from the reader and calculates the checksum using
// the specified algorithm. Returns the hex-encoded checksum string.
func CalculateChecksum(r io.Reader, algorithm ChecksumAlgorithm) (string, error) {
	h, err := NewHasher(algorithm)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to calculate checksum: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashingWriter tees written bytes into a hasher so drivers can produce a
// WriteResult checksum in a single pass.
type hashingWriter struct {
	w io.Writer
	h hash.Hash
	n int64
}

// NewHashingWriter wraps w so that everything written to it is also hashed.
func NewHashingWriter(w io.Writer, algorithm ChecksumAlgorithm) (*hashingWriter, error) {
	h, err := NewHasher(algorithm)
	if err != nil {
		return nil, err
	}
	return &hashingWriter{w: w, h: h}, nil
}

func (hw *hashingWriter) Write(p []byte) (int, error) {
	n, err := hw.w.Write(p)
	if n > 0 {
		hw.h.Write(p[:n])
		hw.n += int64(n)
	}
	return n, err
}

// Sum returns the hex-encoded checksum of everything written so far.
func (hw *hashingWriter) Sum() string {
	return hex.EncodeToString(hw.h.Sum(nil))
}

// Size returns the number of bytes written so far.
func (hw *hashingWriter) Size() int64 {
	return hw.n
}
