package storekit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrMountNotFound is returned when no mount point matches the path
	ErrMountNotFound = errors.New("no mount point found for path")
	// ErrMountExists is returned when trying to mount at an existing path
	ErrMountExists = errors.New("mount point already exists")
	// ErrEmptyMountPath is returned when the mount path is empty
	ErrEmptyMountPath = errors.New("mount path cannot be empty")
	// ErrNilStorage is returned when trying to mount a nil storage
	ErrNilStorage = errors.New("storage cannot be nil")
)

// MountManager provides virtual path namespacing for multiple storages.
// It allows mounting different backends under virtual paths and provides
// a unified Storage over them all.
type MountManager struct {
	mu     sync.RWMutex
	mounts map[string]Storage
	// sorted mount paths for longest-prefix matching
	sortedPaths []string
}

// NewMountManager creates a new mount manager instance.
func NewMountManager() *MountManager {
	return &MountManager{
		mounts: make(map[string]Storage),
	}
}

// Mount attaches a storage at the specified virtual path.
// The path must start with "/" and be unique.
//
// Example:
//
//	mounts.Mount("/uploads", localDriver)
//	mounts.Mount("/cache", memoryDriver)
func (m *MountManager) Mount(mountPath string, st Storage) error {
	if st == nil {
		return ErrNilStorage
	}

	mountPath = normalizeMountPath(mountPath)
	if mountPath == "" {
		return ErrEmptyMountPath
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.mounts[mountPath]; exists {
		return fmt.Errorf("%w: %s", ErrMountExists, mountPath)
	}

	m.mounts[mountPath] = st
	m.updateSortedPaths()

	return nil
}

// Unmount removes the storage at the specified path.
func (m *MountManager) Unmount(mountPath string) error {
	mountPath = normalizeMountPath(mountPath)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.mounts[mountPath]; !exists {
		return fmt.Errorf("%w: %s", ErrMountNotFound, mountPath)
	}

	delete(m.mounts, mountPath)
	m.updateSortedPaths()

	return nil
}

// MountPaths returns all mount paths, longest first.
func (m *MountManager) MountPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, len(m.sortedPaths))
	copy(result, m.sortedPaths)
	return result
}

// GetMount returns the storage mounted at the exact path.
func (m *MountManager) GetMount(mountPath string) (Storage, error) {
	mountPath = normalizeMountPath(mountPath)

	m.mu.RLock()
	defer m.mu.RUnlock()

	st, exists := m.mounts[mountPath]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMountNotFound, mountPath)
	}
	return st, nil
}

// resolve finds the correct mount and relative path for an absolute path.
// Uses longest-prefix matching to support nested mounts.
func (m *MountManager) resolve(absPath string) (Storage, string, error) {
	absPath = normalizeMountPath(absPath)
	if absPath == "" {
		return nil, "", ErrEmptyMountPath
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, mountPath := range m.sortedPaths {
		if absPath == mountPath || strings.HasPrefix(absPath, mountPath+"/") {
			st := m.mounts[mountPath]
			relativePath := strings.TrimPrefix(absPath, mountPath)
			relativePath = strings.TrimPrefix(relativePath, "/")
			return st, relativePath, nil
		}
	}

	return nil, "", fmt.Errorf("%w: %s", ErrMountNotFound, absPath)
}

// updateSortedPaths refreshes the slice used for longest-prefix matching.
// Must be called with lock held.
func (m *MountManager) updateSortedPaths() {
	paths := make([]string, 0, len(m.mounts))
	for p := range m.mounts {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		return len(paths[i]) > len(paths[j])
	})
	m.sortedPaths = paths
}

// normalizeMountPath ensures the path starts with "/" and has no trailing slash.
func normalizeMountPath(p string) string {
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// Write writes content to the path, routing to the appropriate mount.
func (m *MountManager) Write(ctx context.Context, filePath string, content io.Reader, options ...Option) (*WriteResult, error) {
	st, relativePath, err := m.resolve(filePath)
	if err != nil {
		return nil, err
	}

	res, err := st.Write(ctx, relativePath, content, options...)
	if err != nil {
		return nil, err
	}
	res.Path = path.Join(m.getMountPathForFile(filePath), res.Path)
	return res, nil
}

// Read reads content from the path, routing to the appropriate mount.
func (m *MountManager) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	st, relativePath, err := m.resolve(filePath)
	if err != nil {
		return nil, err
	}
	return st.Read(ctx, relativePath)
}

// ReadAll reads all content from the path and returns it as a byte slice.
func (m *MountManager) ReadAll(ctx context.Context, filePath string) ([]byte, error) {
	st, relativePath, err := m.resolve(filePath)
	if err != nil {
		return nil, err
	}
	return st.ReadAll(ctx, relativePath)
}

// Delete deletes the file at the path, routing to the appropriate mount.
func (m *MountManager) Delete(ctx context.Context, filePath string) error {
	st, relativePath, err := m.resolve(filePath)
	if err != nil {
		return err
	}
	return st.Delete(ctx, relativePath)
}

// FileExists checks if a file exists at the path.
func (m *MountManager) FileExists(ctx context.Context, filePath string) (bool, error) {
	st, relativePath, err := m.resolve(filePath)
	if err != nil {
		return false, err
	}
	return st.FileExists(ctx, relativePath)
}

// Stat returns information about a file.
func (m *MountManager) Stat(ctx context.Context, filePath string) (*FileInfo, error) {
	st, relativePath, err := m.resolve(filePath)
	if err != nil {
		return nil, err
	}
	info, err := st.Stat(ctx, relativePath)
	if err != nil {
		return nil, err
	}
	if info != nil {
		mountPath := m.getMountPathForFile(filePath)
		info.Path = path.Join(mountPath, info.Path)
	}
	return info, nil
}

// ListContents lists files under the given prefix.
// Listing "/" returns one virtual directory per mount point.
func (m *MountManager) ListContents(ctx context.Context, prefix string, recursive bool) ([]FileInfo, error) {
	prefix = normalizeMountPath(prefix)

	if prefix == "/" {
		return m.listMountPoints(), nil
	}

	st, relativePath, err := m.resolve(prefix)
	if err != nil {
		return nil, err
	}

	files, err := st.ListContents(ctx, relativePath, recursive)
	if err != nil {
		return nil, err
	}

	mountPath := m.getMountPathForFile(prefix)
	for i := range files {
		files[i].Path = path.Join(mountPath, files[i].Path)
	}

	return files, nil
}

// CreateDir creates a directory at the path.
func (m *MountManager) CreateDir(ctx context.Context, dirPath string) error {
	st, relativePath, err := m.resolve(dirPath)
	if err != nil {
		return err
	}
	return st.CreateDir(ctx, relativePath)
}

// DeleteDir deletes a directory at the path.
func (m *MountManager) DeleteDir(ctx context.Context, dirPath string) error {
	st, relativePath, err := m.resolve(dirPath)
	if err != nil {
		return err
	}
	return st.DeleteDir(ctx, relativePath)
}

// Copy copies a file from source to destination, crossing mount
// boundaries by reading from the source and writing to the destination.
func (m *MountManager) Copy(ctx context.Context, srcPath, dstPath string, options ...Option) error {
	srcSt, srcRelative, err := m.resolve(srcPath)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}

	dstSt, dstRelative, err := m.resolve(dstPath)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}

	reader, err := srcSt.Read(ctx, srcRelative)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	defer reader.Close()

	srcInfo, err := srcSt.Stat(ctx, srcRelative)
	if err != nil {
		return fmt.Errorf("get source info: %w", err)
	}

	opts := options
	if srcInfo.ContentType != "" {
		opts = append(opts, WithContentType(srcInfo.ContentType))
	}
	if len(srcInfo.Metadata) > 0 {
		opts = append(opts, WithMetadata(srcInfo.Metadata))
	}

	if _, err := dstSt.Write(ctx, dstRelative, reader, opts...); err != nil {
		return fmt.Errorf("write destination: %w", err)
	}

	return nil
}

// Move moves a file from source to destination as copy + delete.
func (m *MountManager) Move(ctx context.Context, srcPath, dstPath string, options ...Option) error {
	if err := m.Copy(ctx, srcPath, dstPath, options...); err != nil {
		return err
	}

	srcSt, srcRelative, err := m.resolve(srcPath)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	if err := srcSt.Delete(ctx, srcRelative); err != nil {
		return fmt.Errorf("delete source after move: %w", err)
	}

	return nil
}

// getMountPathForFile returns the mount path covering a given file path.
func (m *MountManager) getMountPathForFile(filePath string) string {
	filePath = normalizeMountPath(filePath)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, mountPath := range m.sortedPaths {
		if filePath == mountPath || strings.HasPrefix(filePath, mountPath+"/") {
			return mountPath
		}
	}
	return ""
}

// listMountPoints renders each mount point as a virtual directory.
func (m *MountManager) listMountPoints() []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]FileInfo, 0, len(m.mounts))
	for mountPath := range m.mounts {
		infos = append(infos, FileInfo{
			Name:    strings.TrimPrefix(mountPath, "/"),
			Path:    mountPath,
			IsDir:   true,
			ModTime: time.Time{},
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Path < infos[j].Path
	})
	return infos
}

// Ensure MountManager implements Storage
var _ Storage = (*MountManager)(nil)
