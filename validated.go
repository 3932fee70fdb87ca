package storekit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gobeaver/storekit/mimecheck"
)

// ValidatedStorage wraps a Storage so every write runs a MIME acceptance
// check first. Content is staged on local disk for the check: file-backed
// readers are checked in place, other streams are spooled to a temp file
// (which also enforces the size limit before anything reaches the backend).
type ValidatedStorage struct {
	st      Storage
	checker *mimecheck.Checker
	maxSize int64
}

// NewValidatedStorage creates a Storage that checks content before writing.
// maxSize of 0 means no size limit.
func NewValidatedStorage(st Storage, checker *mimecheck.Checker, maxSize int64) *ValidatedStorage {
	return &ValidatedStorage{
		st:      st,
		checker: checker,
		maxSize: maxSize,
	}
}

// Checker returns the wrapped storage's MIME checker.
func (v *ValidatedStorage) Checker() *mimecheck.Checker {
	return v.checker
}

// Write implements Storage with MIME checking
func (v *ValidatedStorage) Write(ctx context.Context, path string, content io.Reader, options ...Option) (*WriteResult, error) {
	opts := ApplyOptions(options...)

	// Per-operation checker override
	checker := v.checker
	if opts.Checker != nil {
		checker = opts.Checker
	}

	maxSize := v.maxSize
	if opts.MaxSize > 0 {
		maxSize = opts.MaxSize
	}

	// File-backed readers are checked in place, no staging needed
	if f, ok := content.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return nil, &PathError{Op: "write", Path: path, Err: err}
		}
		if maxSize > 0 && info.Size() > maxSize {
			return nil, &PathError{Op: "write", Path: path, Err: ErrTooLarge}
		}

		if checker != nil {
			target := mimecheck.FromPath(f.Name())
			target.Name = filepath.Base(path)
			target.Type = opts.ContentType
			if err := checker.Check(target); err != nil {
				return nil, err
			}
		}

		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, &PathError{Op: "write", Path: path, Err: err}
		}
		return v.st.Write(ctx, path, f, options...)
	}

	// Stage the stream to a temp file so the checker can read it by path
	staged, err := v.stage(content, maxSize)
	if err != nil {
		return nil, &PathError{Op: "write", Path: path, Err: err}
	}
	defer os.Remove(staged)

	if checker != nil {
		target := mimecheck.FromPath(staged)
		target.Name = filepath.Base(path)
		target.Type = opts.ContentType
		if err := checker.Check(target); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(staged)
	if err != nil {
		return nil, &PathError{Op: "write", Path: path, Err: err}
	}
	defer f.Close()

	return v.st.Write(ctx, path, f, options...)
}

// stage copies the stream to a temp file, enforcing maxSize while copying.
func (v *ValidatedStorage) stage(content io.Reader, maxSize int64) (string, error) {
	tmp, err := os.CreateTemp("", "storekit-stage-*")
	if err != nil {
		return "", err
	}

	src := content
	if maxSize > 0 {
		src = io.LimitReader(content, maxSize+1)
	}

	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if maxSize > 0 && n > maxSize {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: limit %d bytes", ErrTooLarge, maxSize)
	}

	return tmp.Name(), nil
}

// Read implements Storage
func (v *ValidatedStorage) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	return v.st.Read(ctx, path)
}

// ReadAll implements Storage
func (v *ValidatedStorage) ReadAll(ctx context.Context, path string) ([]byte, error) {
	return v.st.ReadAll(ctx, path)
}

// Delete implements Storage
func (v *ValidatedStorage) Delete(ctx context.Context, path string) error {
	return v.st.Delete(ctx, path)
}

// FileExists implements Storage
func (v *ValidatedStorage) FileExists(ctx context.Context, path string) (bool, error) {
	return v.st.FileExists(ctx, path)
}

// Stat implements Storage
func (v *ValidatedStorage) Stat(ctx context.Context, path string) (*FileInfo, error) {
	return v.st.Stat(ctx, path)
}

// ListContents implements Storage
func (v *ValidatedStorage) ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error) {
	return v.st.ListContents(ctx, path, recursive)
}

// CreateDir implements Storage
func (v *ValidatedStorage) CreateDir(ctx context.Context, path string) error {
	return v.st.CreateDir(ctx, path)
}

// DeleteDir implements Storage
func (v *ValidatedStorage) DeleteDir(ctx context.Context, path string) error {
	return v.st.DeleteDir(ctx, path)
}

// Glob implements CanGlob when the wrapped storage supports it
func (v *ValidatedStorage) Glob(ctx context.Context, pattern string) ([]FileInfo, error) {
	if g, ok := v.st.(CanGlob); ok {
		return g.Glob(ctx, pattern)
	}
	return nil, fmt.Errorf("%w: storage does not support glob listing", ErrNotSupported)
}
