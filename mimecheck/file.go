package mimecheck

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// File is a normalized validation target: a readable local file plus the
// metadata the upload transport declared for it.
type File struct {
	// Name is the client-side filename.
	Name string

	// Type is the MIME type declared by the transport (e.g. the upload's
	// Content-Type header). Only consulted when HeaderCheck is enabled.
	Type string

	// Path is the readable local path of the content.
	Path string

	// Size is the content size in bytes, if known.
	Size int64
}

// FromPath builds a File target from a local file path.
func FromPath(path string) File {
	return File{
		Name: filepath.Base(path),
		Path: path,
	}
}

// FromUpload normalizes an uploaded-file handle into a File target.
// Uploads already spooled to disk are referenced in place; in-memory
// uploads are copied to a temp file. The returned cleanup removes any
// temp file created and must be called after the check.
func FromUpload(fh *multipart.FileHeader) (File, func(), error) {
	target := File{
		Name: fh.Filename,
		Type: fh.Header.Get("Content-Type"),
		Size: fh.Size,
	}

	f, err := fh.Open()
	if err != nil {
		return File{}, nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	// multipart spools large parts to *os.File; use that path directly
	if osf, ok := f.(*os.File); ok {
		target.Path = osf.Name()
		return target, func() {}, nil
	}

	tmp, err := os.CreateTemp("", "mimecheck-*")
	if err != nil {
		return File{}, nil, fmt.Errorf("spool upload %s: %w", fh.Filename, err)
	}
	if _, err := io.Copy(tmp, f); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return File{}, nil, fmt.Errorf("spool upload %s: %w", fh.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return File{}, nil, fmt.Errorf("spool upload %s: %w", fh.Filename, err)
	}

	target.Path = tmp.Name()
	cleanup := func() { os.Remove(tmp.Name()) }
	return target, cleanup, nil
}

// checkReadable verifies the target names an existing, openable regular
// file. A failure is reported as NOT_READABLE.
func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return NewCheckError(NotReadable, fmt.Sprintf("file %s is not readable or does not exist", path))
	}
	if info.IsDir() {
		return NewCheckError(NotReadable, fmt.Sprintf("path %s is a directory, not a file", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return NewCheckError(NotReadable, fmt.Sprintf("file %s is not readable", path))
	}
	return f.Close()
}

// readHead reads up to n leading bytes of the target.
// A missing or unreadable file is reported as NOT_READABLE.
func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewCheckError(NotReadable, fmt.Sprintf("file %s is not readable", path))
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, NewCheckError(NotReadable, fmt.Sprintf("file %s is not readable", path))
	}
	return buf[:read], nil
}

// statKey builds a cache key for a target from its path and stat info.
// Returns false if the file cannot be stat'ed.
func statKey(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano()), true
}
