package storekit

import (
	"context"
	"errors"
	"io"
)

// ErrReadOnly is returned when a write operation is attempted on a
// read-only storage.
var ErrReadOnly = errors.New("storage is read-only")

// ReadOnlyStorage wraps a Storage to reject all write operations.
// Useful for exposing a storage to code that must not modify it.
type ReadOnlyStorage struct {
	st Storage
}

// NewReadOnlyStorage creates a read-only view of a storage.
func NewReadOnlyStorage(st Storage) *ReadOnlyStorage {
	return &ReadOnlyStorage{st: st}
}

// Read implements Reader
func (r *ReadOnlyStorage) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	return r.st.Read(ctx, path)
}

// ReadAll implements Reader
func (r *ReadOnlyStorage) ReadAll(ctx context.Context, path string) ([]byte, error) {
	return r.st.ReadAll(ctx, path)
}

// FileExists implements Reader
func (r *ReadOnlyStorage) FileExists(ctx context.Context, path string) (bool, error) {
	return r.st.FileExists(ctx, path)
}

// Stat implements Reader
func (r *ReadOnlyStorage) Stat(ctx context.Context, path string) (*FileInfo, error) {
	return r.st.Stat(ctx, path)
}

// ListContents implements Reader
func (r *ReadOnlyStorage) ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error) {
	return r.st.ListContents(ctx, path, recursive)
}

// Write always fails with ErrReadOnly.
func (r *ReadOnlyStorage) Write(ctx context.Context, path string, content io.Reader, options ...Option) (*WriteResult, error) {
	return nil, &PathError{Op: "write", Path: path, Err: ErrReadOnly}
}

// Delete always fails with ErrReadOnly.
func (r *ReadOnlyStorage) Delete(ctx context.Context, path string) error {
	return &PathError{Op: "delete", Path: path, Err: ErrReadOnly}
}

// CreateDir always fails with ErrReadOnly.
func (r *ReadOnlyStorage) CreateDir(ctx context.Context, path string) error {
	return &PathError{Op: "createdir", Path: path, Err: ErrReadOnly}
}

// DeleteDir always fails with ErrReadOnly.
func (r *ReadOnlyStorage) DeleteDir(ctx context.Context, path string) error {
	return &PathError{Op: "deletedir", Path: path, Err: ErrReadOnly}
}

// Glob implements CanGlob when the wrapped storage supports it.
func (r *ReadOnlyStorage) Glob(ctx context.Context, pattern string) ([]FileInfo, error) {
	if g, ok := r.st.(CanGlob); ok {
		return g.Glob(ctx, pattern)
	}
	return nil, &PathError{Op: "glob", Path: pattern, Err: ErrNotSupported}
}

// IsReadOnly reports whether an error indicates a rejected write on a
// read-only storage.
func IsReadOnly(err error) bool {
	return errors.Is(err, ErrReadOnly)
}

// Ensure ReadOnlyStorage implements Storage
var _ Storage = (*ReadOnlyStorage)(nil)
