package storekit

import (
	"github.com/gobeaver/storekit/mimecheck"
)

// Option represents a configuration option
type Option func(*Options)

// Options contains all possible options for file operations
type Options struct {
	// ContentType specifies the MIME type of the file
	ContentType string

	// Metadata contains additional metadata for the file
	Metadata map[string]string

	// Overwrite determines whether to overwrite existing files
	Overwrite bool

	// Checksum selects the checksum algorithm for the write result.
	// Empty means ChecksumXXHash.
	Checksum ChecksumAlgorithm

	// MaxSize rejects content larger than this many bytes (0 = no limit)
	MaxSize int64

	// PreserveFilename keeps the original client filename when saving
	// uploads instead of generating a random one
	PreserveFilename bool

	// Checker overrides the storage's MIME checker for this operation
	Checker *mimecheck.Checker
}

// ApplyOptions folds a list of options into an Options value.
// Drivers call this at the top of Write.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithContentType sets the content type of the file
func WithContentType(contentType string) Option {
	return func(o *Options) {
		o.ContentType = contentType
	}
}

// WithMetadata sets additional metadata for the file
func WithMetadata(metadata map[string]string) Option {
	return func(o *Options) {
		o.Metadata = metadata
	}
}

// WithOverwrite enables or disables overwriting existing files
func WithOverwrite(overwrite bool) Option {
	return func(o *Options) {
		o.Overwrite = overwrite
	}
}

// WithChecksum selects the checksum algorithm for the write result
func WithChecksum(algorithm ChecksumAlgorithm) Option {
	return func(o *Options) {
		o.Checksum = algorithm
	}
}

// WithMaxSize rejects content larger than the given number of bytes
func WithMaxSize(maxSize int64) Option {
	return func(o *Options) {
		o.MaxSize = maxSize
	}
}

// WithPreserveFilename keeps the original client filename when saving uploads
func WithPreserveFilename(preserve bool) Option {
	return func(o *Options) {
		o.PreserveFilename = preserve
	}
}

// WithChecker sets a MIME checker to run before the write
func WithChecker(checker *mimecheck.Checker) Option {
	return func(o *Options) {
		o.Checker = checker
	}
}
