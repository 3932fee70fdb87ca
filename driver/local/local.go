package local

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/gobeaver/storekit"
)

// Adapter provides a local filesystem implementation of storekit.Storage
type Adapter struct {
	root     string
	checksum storekit.ChecksumAlgorithm
}

// Config holds optional adapter settings
type Config struct {
	// Checksum is the default algorithm for write result checksums.
	// Per-write options take precedence.
	Checksum storekit.ChecksumAlgorithm
}

// New creates a new local filesystem adapter rooted at root
func New(root string, cfg ...Config) (*Adapter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	// Ensure the root directory exists
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, err
	}

	a := &Adapter{
		root: absRoot,
	}
	if len(cfg) > 0 {
		a.checksum = cfg[0].Checksum
	}
	return a, nil
}

// Root returns the absolute root directory of the adapter
func (a *Adapter) Root() string {
	return a.root
}

// Write implements storekit.Writer
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader, options ...storekit.Option) (*storekit.WriteResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	opts := storekit.ApplyOptions(options...)

	fullPath := filepath.Join(a.root, filepath.Clean(path))

	// Check if the path is under the root
	if !isPathUnderRoot(a.root, fullPath) {
		return nil, &storekit.PathError{
			Op:   "write",
			Path: path,
			Err:  storekit.ErrNotAllowed,
		}
	}

	// Refuse to silently replace an existing file unless asked to
	if !opts.Overwrite {
		if _, err := os.Stat(fullPath); err == nil {
			return nil, &storekit.PathError{
				Op:   "write",
				Path: path,
				Err:  storekit.ErrExist,
			}
		}
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, &storekit.PathError{
			Op:   "write",
			Path: path,
			Err:  err,
		}
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return nil, &storekit.PathError{
			Op:   "write",
			Path: path,
			Err:  err,
		}
	}
	defer f.Close()

	// Hash while writing so the result checksum costs no second pass
	alg := opts.Checksum
	if alg == "" {
		alg = a.checksum
	}
	hw, err := storekit.NewHashingWriter(f, alg)
	if err != nil {
		return nil, &storekit.PathError{
			Op:   "write",
			Path: path,
			Err:  err,
		}
	}

	src := content
	if opts.MaxSize > 0 {
		src = io.LimitReader(content, opts.MaxSize+1)
	}

	if _, err := io.Copy(hw, src); err != nil {
		os.Remove(fullPath)
		return nil, &storekit.PathError{
			Op:   "write",
			Path: path,
			Err:  err,
		}
	}

	if opts.MaxSize > 0 && hw.Size() > opts.MaxSize {
		os.Remove(fullPath)
		return nil, &storekit.PathError{
			Op:   "write",
			Path: path,
			Err:  storekit.ErrTooLarge,
		}
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = detectContentType(fullPath)
	}

	return &storekit.WriteResult{
		Path:        path,
		Size:        hw.Size(),
		ContentType: contentType,
		Checksum:    hw.Sum(),
	}, nil
}

// Read implements storekit.Reader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath := filepath.Join(a.root, filepath.Clean(path))

	if !isPathUnderRoot(a.root, fullPath) {
		return nil, &storekit.PathError{
			Op:   "read",
			Path: path,
			Err:  storekit.ErrNotAllowed,
		}
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &storekit.PathError{
				Op:   "read",
				Path: path,
				Err:  storekit.ErrNotExist,
			}
		}
		return nil, &storekit.PathError{
			Op:   "read",
			Path: path,
			Err:  err,
		}
	}

	return f, nil
}

// ReadAll implements storekit.Reader
func (a *Adapter) ReadAll(ctx context.Context, path string) ([]byte, error) {
	rc, err := a.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// Delete implements storekit.Writer
func (a *Adapter) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := filepath.Join(a.root, filepath.Clean(path))

	if !isPathUnderRoot(a.root, fullPath) {
		return &storekit.PathError{
			Op:   "delete",
			Path: path,
			Err:  storekit.ErrNotAllowed,
		}
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return &storekit.PathError{
				Op:   "delete",
				Path: path,
				Err:  storekit.ErrNotExist,
			}
		}
		return &storekit.PathError{
			Op:   "delete",
			Path: path,
			Err:  err,
		}
	}

	return nil
}

// FileExists implements storekit.Reader
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	fullPath := filepath.Join(a.root, filepath.Clean(path))

	if !isPathUnderRoot(a.root, fullPath) {
		return false, &storekit.PathError{
			Op:   "fileexists",
			Path: path,
			Err:  storekit.ErrNotAllowed,
		}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &storekit.PathError{
			Op:   "fileexists",
			Path: path,
			Err:  err,
		}
	}

	// Only files count
	return !info.IsDir(), nil
}

// Stat implements storekit.Reader
func (a *Adapter) Stat(ctx context.Context, path string) (*storekit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath := filepath.Join(a.root, filepath.Clean(path))

	if !isPathUnderRoot(a.root, fullPath) {
		return nil, &storekit.PathError{
			Op:   "stat",
			Path: path,
			Err:  storekit.ErrNotAllowed,
		}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &storekit.PathError{
				Op:   "stat",
				Path: path,
				Err:  storekit.ErrNotExist,
			}
		}
		return nil, &storekit.PathError{
			Op:   "stat",
			Path: path,
			Err:  err,
		}
	}

	contentType := ""
	if !info.IsDir() {
		contentType = detectContentType(fullPath)
	}

	return &storekit.FileInfo{
		Name:        filepath.Base(path),
		Path:        path,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		IsDir:       info.IsDir(),
		ContentType: contentType,
	}, nil
}

// ListContents implements storekit.Reader
func (a *Adapter) ListContents(ctx context.Context, path string, recursive bool) ([]storekit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath := filepath.Join(a.root, filepath.Clean(path))

	if !isPathUnderRoot(a.root, fullPath) {
		return nil, &storekit.PathError{
			Op:   "listcontents",
			Path: path,
			Err:  storekit.ErrNotAllowed,
		}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &storekit.PathError{
				Op:   "listcontents",
				Path: path,
				Err:  storekit.ErrNotExist,
			}
		}
		return nil, &storekit.PathError{
			Op:   "listcontents",
			Path: path,
			Err:  err,
		}
	}

	if !info.IsDir() {
		return nil, &storekit.PathError{
			Op:   "listcontents",
			Path: path,
			Err:  storekit.ErrNotDir,
		}
	}

	var files []storekit.FileInfo

	if recursive {
		err = filepath.Walk(fullPath, func(walkPath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Skip the root directory itself
			if walkPath == fullPath {
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			relPath, err := filepath.Rel(a.root, walkPath)
			if err != nil {
				return err
			}

			contentType := ""
			if !info.IsDir() {
				contentType = detectContentType(walkPath)
			}

			files = append(files, storekit.FileInfo{
				Name:        info.Name(),
				Path:        filepath.ToSlash(relPath),
				Size:        info.Size(),
				ModTime:     info.ModTime(),
				IsDir:       info.IsDir(),
				ContentType: contentType,
			})

			return nil
		})
		if err != nil {
			return nil, &storekit.PathError{
				Op:   "listcontents",
				Path: path,
				Err:  err,
			}
		}
	} else {
		entries, err := os.ReadDir(fullPath)
		if err != nil {
			return nil, &storekit.PathError{
				Op:   "listcontents",
				Path: path,
				Err:  err,
			}
		}

		files = make([]storekit.FileInfo, 0, len(entries))
		for _, entry := range entries {
			entryPath := filepath.Join(path, entry.Name())
			info, err := entry.Info()
			if err != nil {
				continue
			}

			contentType := ""
			if !info.IsDir() {
				contentType = detectContentType(filepath.Join(a.root, entryPath))
			}

			files = append(files, storekit.FileInfo{
				Name:        entry.Name(),
				Path:        filepath.ToSlash(entryPath),
				Size:        info.Size(),
				ModTime:     info.ModTime(),
				IsDir:       info.IsDir(),
				ContentType: contentType,
			})
		}
	}

	return files, nil
}

// CreateDir implements storekit.Writer
func (a *Adapter) CreateDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := filepath.Join(a.root, filepath.Clean(path))

	if !isPathUnderRoot(a.root, fullPath) {
		return &storekit.PathError{
			Op:   "createdir",
			Path: path,
			Err:  storekit.ErrNotAllowed,
		}
	}

	if err := os.MkdirAll(fullPath, 0755); err != nil {
		return &storekit.PathError{
			Op:   "createdir",
			Path: path,
			Err:  err,
		}
	}

	return nil
}

// DeleteDir implements storekit.Writer
func (a *Adapter) DeleteDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath := filepath.Join(a.root, filepath.Clean(path))

	if !isPathUnderRoot(a.root, fullPath) {
		return &storekit.PathError{
			Op:   "deletedir",
			Path: path,
			Err:  storekit.ErrNotAllowed,
		}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &storekit.PathError{
				Op:   "deletedir",
				Path: path,
				Err:  storekit.ErrNotExist,
			}
		}
		return &storekit.PathError{
			Op:   "deletedir",
			Path: path,
			Err:  err,
		}
	}

	if !info.IsDir() {
		return &storekit.PathError{
			Op:   "deletedir",
			Path: path,
			Err:  storekit.ErrNotDir,
		}
	}

	if err := os.RemoveAll(fullPath); err != nil {
		return &storekit.PathError{
			Op:   "deletedir",
			Path: path,
			Err:  err,
		}
	}

	return nil
}

// Glob implements storekit.CanGlob. Patterns use "/" as the separator,
// so "uploads/*.png" matches only direct children of uploads.
func (a *Adapter) Glob(ctx context.Context, pattern string) ([]storekit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, &storekit.PathError{
			Op:   "glob",
			Path: pattern,
			Err:  err,
		}
	}

	var files []storekit.FileInfo
	err = filepath.Walk(a.root, func(walkPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if walkPath == a.root || info.IsDir() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		relPath, err := filepath.Rel(a.root, walkPath)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if !g.Match(relPath) {
			return nil
		}

		files = append(files, storekit.FileInfo{
			Name:        info.Name(),
			Path:        relPath,
			Size:        info.Size(),
			ModTime:     info.ModTime(),
			IsDir:       false,
			ContentType: detectContentType(walkPath),
		})
		return nil
	})
	if err != nil {
		return nil, &storekit.PathError{
			Op:   "glob",
			Path: pattern,
			Err:  err,
		}
	}

	return files, nil
}

// Checksum recomputes the checksum of a stored file.
func (a *Adapter) Checksum(ctx context.Context, path string, algorithm storekit.ChecksumAlgorithm) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	fullPath := filepath.Join(a.root, filepath.Clean(path))

	if !isPathUnderRoot(a.root, fullPath) {
		return "", &storekit.PathError{Op: "checksum", Path: path, Err: storekit.ErrNotAllowed}
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &storekit.PathError{Op: "checksum", Path: path, Err: storekit.ErrNotExist}
		}
		return "", &storekit.PathError{Op: "checksum", Path: path, Err: err}
	}
	defer f.Close()

	checksum, err := storekit.CalculateChecksum(f, algorithm)
	if err != nil {
		return "", &storekit.PathError{Op: "checksum", Path: path, Err: err}
	}

	return checksum, nil
}

// isPathUnderRoot checks if a path is under a given root directory
func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return !filepath.IsAbs(rel) && rel != ".." && !strings.HasPrefix(rel, "../")
}

// detectContentType determines a file's content type from its extension,
// reading the file header when the extension is unknown
func detectContentType(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		if contentType := mime.TypeByExtension(ext); contentType != "" {
			return contentType
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}

	return http.DetectContentType(buf[:n])
}

// Ensure Adapter implements interfaces
var (
	_ storekit.Storage = (*Adapter)(nil)
	_ storekit.Reader  = (*Adapter)(nil)
	_ storekit.Writer  = (*Adapter)(nil)
	_ storekit.CanGlob = (*Adapter)(nil)
)
