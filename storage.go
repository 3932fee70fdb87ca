package storekit

import (
	"context"
	"io"
	"time"
)

// FileInfo represents file/directory metadata
type FileInfo struct {
	Name        string
	Path        string
	Size        int64
	ModTime     time.Time
	IsDir       bool
	ContentType string
	Metadata    map[string]string
}

// WriteResult describes a completed write.
type WriteResult struct {
	// Path is the stored path of the file.
	Path string

	// Size is the number of bytes written.
	Size int64

	// ContentType is the stored content type, if one was set or detected.
	ContentType string

	// Checksum is the hex-encoded checksum of the written content,
	// computed with the algorithm selected in the write options.
	Checksum string
}

// ============================================================================
// Core Interfaces (Interface Segregation)
// ============================================================================

// Reader provides read-only storage access.
// Use this type in function signatures to enforce read-only at compile time.
type Reader interface {
	// Read returns a stream for reading file content.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// ReadAll reads entire file into memory. Use for small files only.
	ReadAll(ctx context.Context, path string) ([]byte, error)

	// FileExists checks if a file exists at path.
	FileExists(ctx context.Context, path string) (bool, error)

	// Stat returns file/directory metadata.
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// ListContents lists directory contents.
	// If recursive is true, includes all descendants.
	ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error)
}

// Writer provides write storage operations.
type Writer interface {
	// Write writes content from reader to path.
	// Use bytes.NewReader(data) for []byte, os.Open() for local files.
	Write(ctx context.Context, path string, r io.Reader, opts ...Option) (*WriteResult, error)

	// Delete removes a file.
	Delete(ctx context.Context, path string) error

	// CreateDir creates a directory (and parents if needed).
	CreateDir(ctx context.Context, path string) error

	// DeleteDir removes a directory and all contents.
	DeleteDir(ctx context.Context, path string) error
}

// Storage provides full read-write storage access.
type Storage interface {
	Reader
	Writer
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================
// Drivers may expose optional capabilities. Use type assertion to check:
//
//	if g, ok := st.(storekit.CanGlob); ok {
//	    matches, err := g.Glob(ctx, "uploads/**/*.png")
//	}

// CanGlob indicates the storage supports glob-pattern listing.
// Patterns follow github.com/gobwas/glob syntax with "/" as separator.
type CanGlob interface {
	Glob(ctx context.Context, pattern string) ([]FileInfo, error)
}

// ChecksumAlgorithm represents a supported checksum algorithm
type ChecksumAlgorithm string

const (
	// ChecksumXXHash is the xxHash algorithm (64-bit, extremely fast, default)
	ChecksumXXHash ChecksumAlgorithm = "xxhash"
	// ChecksumCRC32 is the CRC32 checksum (32-bit, integrity only)
	ChecksumCRC32 ChecksumAlgorithm = "crc32"
	// ChecksumSHA256 is the SHA-256 hash algorithm (256-bit)
	ChecksumSHA256 ChecksumAlgorithm = "sha256"
	// ChecksumSHA512 is the SHA-512 hash algorithm (512-bit)
	ChecksumSHA512 ChecksumAlgorithm = "sha512"
)
