package memory

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/gobeaver/storekit"
)

// memoryFile represents a file stored in memory
type memoryFile struct {
	content     []byte
	contentType string
	metadata    map[string]string
	modTime     time.Time
}

// memoryDir represents a directory in memory
type memoryDir struct {
	modTime time.Time
}

// Adapter provides an in-memory implementation of storekit.Storage
// Useful for testing and caching scenarios
type Adapter struct {
	mu      sync.RWMutex
	files   map[string]*memoryFile
	dirs    map[string]*memoryDir
	maxSize int64 // Maximum total storage size (0 = unlimited)
	size    int64 // Current total size

	checksum storekit.ChecksumAlgorithm
}

// Config holds configuration for the memory adapter
type Config struct {
	// MaxSize is the maximum total storage size in bytes (0 = unlimited)
	MaxSize int64

	// Checksum is the default algorithm for write result checksums.
	// Per-write options take precedence.
	Checksum storekit.ChecksumAlgorithm
}

// New creates a new in-memory storage adapter
func New(cfg ...Config) *Adapter {
	var c Config
	if len(cfg) > 0 {
		c = cfg[0]
	}

	a := &Adapter{
		files:    make(map[string]*memoryFile),
		dirs:     make(map[string]*memoryDir),
		maxSize:  c.MaxSize,
		checksum: c.Checksum,
	}

	// Create root directory
	a.dirs[""] = &memoryDir{modTime: time.Now()}
	a.dirs["/"] = &memoryDir{modTime: time.Now()}

	return a
}

// Write implements storekit.Writer
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader, options ...storekit.Option) (*storekit.WriteResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path = normalizePath(path)

	if !isValidPath(path) {
		return nil, &storekit.PathError{
			Op:   "write",
			Path: path,
			Err:  storekit.ErrNotAllowed,
		}
	}

	opts := storekit.ApplyOptions(options...)

	src := content
	if opts.MaxSize > 0 {
		src = io.LimitReader(content, opts.MaxSize+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, &storekit.PathError{
			Op:   "write",
			Path: path,
			Err:  err,
		}
	}

	if opts.MaxSize > 0 && int64(len(data)) > opts.MaxSize {
		return nil, &storekit.PathError{
			Op:   "write",
			Path: path,
			Err:  storekit.ErrTooLarge,
		}
	}

	alg := opts.Checksum
	if alg == "" {
		alg = a.checksum
	}
	checksum, err := storekit.CalculateChecksum(bytes.NewReader(data), alg)
	if err != nil {
		return nil, &storekit.PathError{
			Op:   "write",
			Path: path,
			Err:  err,
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Check if file exists and overwrite is not allowed
	if existing, exists := a.files[path]; exists {
		if !opts.Overwrite {
			return nil, &storekit.PathError{
				Op:   "write",
				Path: path,
				Err:  storekit.ErrExist,
			}
		}
		a.size -= int64(len(existing.content))
	}

	// Check total size limit
	newSize := a.size + int64(len(data))
	if a.maxSize > 0 && newSize > a.maxSize {
		return nil, &storekit.PathError{
			Op:   "write",
			Path: path,
			Err:  storekit.ErrInvalidSize,
		}
	}

	a.ensureParentDirs(path)

	contentType := opts.ContentType
	if contentType == "" {
		contentType = detectContentType(path, data)
	}

	a.files[path] = &memoryFile{
		content:     data,
		contentType: contentType,
		metadata:    opts.Metadata,
		modTime:     time.Now(),
	}
	a.size = newSize

	return &storekit.WriteResult{
		Path:        path,
		Size:        int64(len(data)),
		ContentType: contentType,
		Checksum:    checksum,
	}, nil
}

// Read implements storekit.Reader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[path]
	if !exists {
		return nil, &storekit.PathError{
			Op:   "read",
			Path: path,
			Err:  storekit.ErrNotExist,
		}
	}

	// Return a reader over the stored bytes; the map entry is never mutated
	return io.NopCloser(bytes.NewReader(file.content)), nil
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

	path = normalizePath(path)

	a.mu.Lock()
	defer a.mu.Unlock()

	file, exists := a.files[path]
	if !exists {
		return &storekit.PathError{
			Op:   "delete",
			Path: path,
			Err:  storekit.ErrNotExist,
		}
	}

	a.size -= int64(len(file.content))
	delete(a.files, path)

	return nil
}

// FileExists implements storekit.Reader
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	_, fileExists := a.files[path]

	return fileExists, nil
}

// DirExists checks if a directory exists
func (a *Adapter) DirExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	_, dirExists := a.dirs[path]

	return dirExists, nil
}

// Stat implements storekit.Reader
func (a *Adapter) Stat(ctx context.Context, path string) (*storekit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if file, exists := a.files[path]; exists {
		return &storekit.FileInfo{
			Name:        filepath.Base(path),
			Path:        path,
			Size:        int64(len(file.content)),
			ModTime:     file.modTime,
			IsDir:       false,
			ContentType: file.contentType,
			Metadata:    file.metadata,
		}, nil
	}

	if dir, exists := a.dirs[path]; exists {
		return &storekit.FileInfo{
			Name:    filepath.Base(path),
			Path:    path,
			Size:    0,
			ModTime: dir.modTime,
			IsDir:   true,
		}, nil
	}

	return nil, &storekit.PathError{
		Op:   "stat",
		Path: path,
		Err:  storekit.ErrNotExist,
	}
}

// ListContents implements storekit.Reader
func (a *Adapter) ListContents(ctx context.Context, path string, recursive bool) ([]storekit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, exists := a.dirs[path]; !exists {
		if _, isFile := a.files[path]; isFile {
			return nil, &storekit.PathError{
				Op:   "listcontents",
				Path: path,
				Err:  storekit.ErrNotDir,
			}
		}
		return nil, &storekit.PathError{
			Op:   "listcontents",
			Path: path,
			Err:  storekit.ErrNotExist,
		}
	}

	var files []storekit.FileInfo

	if recursive {
		prefixWithSlash := path
		if path != "" && path != "/" {
			prefixWithSlash = path + "/"
		}

		isRoot := path == "" || path == "/"

		for filePath, file := range a.files {
			if isRoot || strings.HasPrefix(filePath, prefixWithSlash) {
				files = append(files, storekit.FileInfo{
					Name:        filepath.Base(filePath),
					Path:        filePath,
					Size:        int64(len(file.content)),
					ModTime:     file.modTime,
					IsDir:       false,
					ContentType: file.contentType,
					Metadata:    file.metadata,
				})
			}
		}

		for dirPath, dir := range a.dirs {
			if dirPath == path || dirPath == "" || dirPath == "/" {
				continue
			}
			if isRoot || strings.HasPrefix(dirPath, prefixWithSlash) {
				files = append(files, storekit.FileInfo{
					Name:    filepath.Base(dirPath),
					Path:    dirPath,
					Size:    0,
					ModTime: dir.modTime,
					IsDir:   true,
				})
			}
		}
	} else {
		seen := make(map[string]bool)
		isRoot := path == "" || path == "/"

		for filePath, file := range a.files {
			var relPath string
			if isRoot {
				relPath = filePath
			} else {
				if !strings.HasPrefix(filePath, path+"/") {
					continue
				}
				relPath = strings.TrimPrefix(filePath, path+"/")
			}

			if relPath == "" {
				continue
			}

			parts := strings.SplitN(relPath, "/", 2)
			childName := parts[0]

			if seen[childName] {
				continue
			}

			// Nested file; its directory gets listed instead
			if len(parts) > 1 {
				continue
			}

			seen[childName] = true
			childPath := filepath.Join(path, childName)

			files = append(files, storekit.FileInfo{
				Name:        childName,
				Path:        childPath,
				Size:        int64(len(file.content)),
				ModTime:     file.modTime,
				IsDir:       false,
				ContentType: file.contentType,
				Metadata:    file.metadata,
			})
		}

		for dirPath, dir := range a.dirs {
			if dirPath == path || dirPath == "" || dirPath == "/" {
				continue
			}

			var relPath string
			if isRoot {
				relPath = dirPath
			} else {
				if !strings.HasPrefix(dirPath, path+"/") {
					continue
				}
				relPath = strings.TrimPrefix(dirPath, path+"/")
			}

			if relPath == "" {
				continue
			}

			parts := strings.SplitN(relPath, "/", 2)
			childName := parts[0]

			if seen[childName] {
				continue
			}

			if len(parts) > 1 {
				continue
			}

			seen[childName] = true
			childPath := filepath.Join(path, childName)

			files = append(files, storekit.FileInfo{
				Name:    childName,
				Path:    childPath,
				Size:    0,
				ModTime: dir.modTime,
				IsDir:   true,
			})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// CreateDir implements storekit.Writer
func (a *Adapter) CreateDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path = normalizePath(path)

	if !isValidPath(path) {
		return &storekit.PathError{
			Op:   "createdir",
			Path: path,
			Err:  storekit.ErrNotAllowed,
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.files[path]; exists {
		return &storekit.PathError{
			Op:   "createdir",
			Path: path,
			Err:  storekit.ErrExist,
		}
	}

	a.ensureParentDirs(path)
	a.dirs[path] = &memoryDir{modTime: time.Now()}

	return nil
}

// DeleteDir implements storekit.Writer
func (a *Adapter) DeleteDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.dirs[path]; !exists {
		if _, isFile := a.files[path]; isFile {
			return &storekit.PathError{
				Op:   "deletedir",
				Path: path,
				Err:  storekit.ErrNotDir,
			}
		}
		return &storekit.PathError{
			Op:   "deletedir",
			Path: path,
			Err:  storekit.ErrNotExist,
		}
	}

	prefixWithSlash := path
	if !strings.HasSuffix(path, "/") {
		prefixWithSlash = path + "/"
	}

	for filePath, file := range a.files {
		if strings.HasPrefix(filePath, prefixWithSlash) {
			a.size -= int64(len(file.content))
			delete(a.files, filePath)
		}
	}

	for dirPath := range a.dirs {
		if strings.HasPrefix(dirPath, prefixWithSlash) || dirPath == path {
			delete(a.dirs, dirPath)
		}
	}

	return nil
}

// Glob implements storekit.CanGlob. Supports patterns like "**/*.txt",
// "*.json", "config/*" with "/" as the separator.
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

	a.mu.RLock()
	defer a.mu.RUnlock()

	var files []storekit.FileInfo
	for filePath, file := range a.files {
		if !g.Match(filePath) {
			continue
		}
		files = append(files, storekit.FileInfo{
			Name:        filepath.Base(filePath),
			Path:        filePath,
			Size:        int64(len(file.content)),
			ModTime:     file.modTime,
			IsDir:       false,
			ContentType: file.contentType,
			Metadata:    file.metadata,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// Checksum recomputes the checksum of a stored file.
func (a *Adapter) Checksum(ctx context.Context, path string, algorithm storekit.ChecksumAlgorithm) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[path]
	if !exists {
		return "", &storekit.PathError{Op: "checksum", Path: path, Err: storekit.ErrNotExist}
	}

	checksum, err := storekit.CalculateChecksum(bytes.NewReader(file.content), algorithm)
	if err != nil {
		return "", &storekit.PathError{Op: "checksum", Path: path, Err: err}
	}

	return checksum, nil
}

// Clear removes all files and directories from the memory storage
// Useful for testing cleanup
func (a *Adapter) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.files = make(map[string]*memoryFile)
	a.dirs = make(map[string]*memoryDir)
	a.size = 0

	a.dirs[""] = &memoryDir{modTime: time.Now()}
	a.dirs["/"] = &memoryDir{modTime: time.Now()}
}

// Size returns the current total size of all stored files
func (a *Adapter) Size() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.size
}

// FileCount returns the number of files stored
func (a *Adapter) FileCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.files)
}

// ensureParentDirs creates all parent directories for a given path
// Must be called with lock held
func (a *Adapter) ensureParentDirs(path string) {
	dir := filepath.Dir(path)
	for dir != "" && dir != "." && dir != "/" {
		if _, exists := a.dirs[dir]; !exists {
			a.dirs[dir] = &memoryDir{modTime: time.Now()}
		}
		dir = filepath.Dir(dir)
	}
}

// normalizePath normalizes a file path
func normalizePath(path string) string {
	path = strings.TrimPrefix(path, "/")
	if path == "" || path == "." {
		return ""
	}
	path = filepath.Clean(path)
	return path
}

// isValidPath checks if a path is valid (no directory traversal)
func isValidPath(path string) bool {
	return !strings.Contains(path, "..")
}

// detectContentType determines the content type of a file
func detectContentType(path string, data []byte) string {
	ext := filepath.Ext(path)
	if ext != "" {
		if contentType := mime.TypeByExtension(ext); contentType != "" {
			return contentType
		}
	}

	if len(data) > 0 {
		return http.DetectContentType(data)
	}

	return "application/octet-stream"
}

// Ensure Adapter implements interfaces
var (
	_ storekit.Storage = (*Adapter)(nil)
	_ storekit.Reader  = (*Adapter)(nil)
	_ storekit.Writer  = (*Adapter)(nil)
	_ storekit.CanGlob = (*Adapter)(nil)
)
