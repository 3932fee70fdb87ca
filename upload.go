package storekit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
)

// SaveUpload stores an uploaded file under dir and returns the write result.
// The stored name is a random hex string with the upload's extension unless
// WithPreserveFilename is set, in which case the client filename is kept
// (sanitized to its base name).
func SaveUpload(ctx context.Context, st Storage, dir string, fh *multipart.FileHeader, options ...Option) (*WriteResult, error) {
	opts := ApplyOptions(options...)

	if opts.MaxSize > 0 && fh.Size > opts.MaxSize {
		return nil, &PathError{Op: "upload", Path: fh.Filename, Err: ErrTooLarge}
	}

	name, err := uploadName(fh.Filename, opts.PreserveFilename)
	if err != nil {
		return nil, &PathError{Op: "upload", Path: fh.Filename, Err: err}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, &PathError{Op: "upload", Path: fh.Filename, Err: err}
	}
	defer f.Close()

	if opts.ContentType == "" {
		if ct := fh.Header.Get("Content-Type"); ct != "" {
			options = append(options, WithContentType(ct))
		}
	}

	return st.Write(ctx, path.Join(dir, name), f, options...)
}

// uploadName picks the stored filename for an upload.
func uploadName(original string, preserve bool) (string, error) {
	if preserve {
		base := filepath.Base(filepath.ToSlash(original))
		if base == "" || base == "." || base == "/" {
			return "", fmt.Errorf("invalid upload filename %q", original)
		}
		return base, nil
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate upload name: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(original))
	return hex.EncodeToString(buf) + ext, nil
}
