package storekit

import (
	"errors"
	"fmt"
)

// Common storage errors
var (
	ErrNotExist     = errors.New("file does not exist")
	ErrExist        = errors.New("file already exists")
	ErrNotDir       = errors.New("not a directory")
	ErrIsDir        = errors.New("is a directory")
	ErrNotAllowed   = errors.New("operation not allowed")
	ErrNotSupported = errors.New("operation not supported")
	ErrInvalidSize  = errors.New("invalid file size")
	ErrTooLarge     = errors.New("file exceeds size limit")
)

// PathError records an error and the operation and file path that caused it
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Err
}

// IsNotExist reports whether an error indicates that a file or directory
// does not exist
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}

// IsExist reports whether an error indicates that a file or directory
// already exists
func IsExist(err error) bool {
	return errors.Is(err, ErrExist)
}

// IsTooLarge reports whether an error indicates a file exceeded the
// configured size limit
func IsTooLarge(err error) bool {
	return errors.Is(err, ErrTooLarge)
}
