package storekit_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gobeaver/storekit"
	"github.com/gobeaver/storekit/driver/memory"
)

func TestMountErrors(t *testing.T) {
	m := storekit.NewMountManager()

	if err := m.Mount("/uploads", nil); !errors.Is(err, storekit.ErrNilStorage) {
		t.Errorf("expected ErrNilStorage, got %v", err)
	}
	if err := m.Mount("", memory.New()); !errors.Is(err, storekit.ErrEmptyMountPath) {
		t.Errorf("expected ErrEmptyMountPath, got %v", err)
	}

	if err := m.Mount("/uploads", memory.New()); err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	if err := m.Mount("/uploads", memory.New()); !errors.Is(err, storekit.ErrMountExists) {
		t.Errorf("expected ErrMountExists, got %v", err)
	}

	if err := m.Unmount("/missing"); !errors.Is(err, storekit.ErrMountNotFound) {
		t.Errorf("expected ErrMountNotFound, got %v", err)
	}
	if err := m.Unmount("/uploads"); err != nil {
		t.Fatalf("unmount failed: %v", err)
	}
	if _, err := m.GetMount("/uploads"); !errors.Is(err, storekit.ErrMountNotFound) {
		t.Errorf("expected ErrMountNotFound after unmount, got %v", err)
	}
}

func TestMountRouting(t *testing.T) {
	ctx := context.Background()
	uploads := memory.New()
	cache := memory.New()

	m := storekit.NewMountManager()
	if err := m.Mount("/uploads", uploads); err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	if err := m.Mount("/cache", cache); err != nil {
		t.Fatalf("mount failed: %v", err)
	}

	res, err := m.Write(ctx, "/uploads/docs/a.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if res.Path != "/uploads/docs/a.txt" {
		t.Errorf("expected mount-prefixed path, got %q", res.Path)
	}

	// The file landed in the uploads backend, not the cache backend.
	if uploads.FileCount() != 1 {
		t.Errorf("expected 1 file in uploads backend, got %d", uploads.FileCount())
	}
	if cache.FileCount() != 0 {
		t.Errorf("expected empty cache backend, got %d files", cache.FileCount())
	}

	exists, err := m.FileExists(ctx, "/uploads/docs/a.txt")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if !exists {
		t.Error("expected file to exist via mount path")
	}

	data, err := m.ReadAll(ctx, "/uploads/docs/a.txt")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("expected %q, got %q", "hello", data)
	}

	info, err := m.Stat(ctx, "/uploads/docs/a.txt")
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Path != "/uploads/docs/a.txt" {
		t.Errorf("expected stat path with mount prefix, got %q", info.Path)
	}

	if _, err := m.Write(ctx, "/other/x.txt", strings.NewReader("x")); !errors.Is(err, storekit.ErrMountNotFound) {
		t.Errorf("expected ErrMountNotFound for unmounted path, got %v", err)
	}

	if err := m.Delete(ctx, "/uploads/docs/a.txt"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if uploads.FileCount() != 0 {
		t.Errorf("expected uploads backend empty after delete, got %d", uploads.FileCount())
	}
}

func TestMountLongestPrefix(t *testing.T) {
	ctx := context.Background()
	outer := memory.New()
	inner := memory.New()

	m := storekit.NewMountManager()
	if err := m.Mount("/data", outer); err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	if err := m.Mount("/data/images", inner); err != nil {
		t.Fatalf("mount failed: %v", err)
	}

	if _, err := m.Write(ctx, "/data/images/a.png", strings.NewReader("png bytes")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := m.Write(ctx, "/data/readme.txt", strings.NewReader("text")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if inner.FileCount() != 1 {
		t.Errorf("expected nested mount to receive the write, got %d files", inner.FileCount())
	}
	if outer.FileCount() != 1 {
		t.Errorf("expected outer mount to keep only its own file, got %d files", outer.FileCount())
	}

	paths := m.MountPaths()
	if len(paths) != 2 || paths[0] != "/data/images" {
		t.Errorf("expected longest path first, got %v", paths)
	}
}

func TestMountListRoot(t *testing.T) {
	ctx := context.Background()
	m := storekit.NewMountManager()
	if err := m.Mount("/uploads", memory.New()); err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	if err := m.Mount("/cache", memory.New()); err != nil {
		t.Fatalf("mount failed: %v", err)
	}

	infos, err := m.ListContents(ctx, "/", false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 mount points, got %d", len(infos))
	}
	if infos[0].Path != "/cache" || infos[1].Path != "/uploads" {
		t.Errorf("expected sorted mount points, got %v", infos)
	}
	for _, info := range infos {
		if !info.IsDir {
			t.Errorf("expected %q to list as a directory", info.Path)
		}
	}
}

func TestMountListContentsPrefixed(t *testing.T) {
	ctx := context.Background()
	m := storekit.NewMountManager()
	if err := m.Mount("/uploads", memory.New()); err != nil {
		t.Fatalf("mount failed: %v", err)
	}

	for _, p := range []string{"/uploads/a.txt", "/uploads/b.txt"} {
		if _, err := m.Write(ctx, p, strings.NewReader("x")); err != nil {
			t.Fatalf("write %s failed: %v", p, err)
		}
	}

	infos, err := m.ListContents(ctx, "/uploads", false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(infos))
	}
	for _, info := range infos {
		if !strings.HasPrefix(info.Path, "/uploads/") {
			t.Errorf("expected listed path under /uploads, got %q", info.Path)
		}
	}
}

func TestMountCopyAndMove(t *testing.T) {
	ctx := context.Background()
	m := storekit.NewMountManager()
	if err := m.Mount("/uploads", memory.New()); err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	if err := m.Mount("/cache", memory.New()); err != nil {
		t.Fatalf("mount failed: %v", err)
	}

	if _, err := m.Write(ctx, "/uploads/src.txt", strings.NewReader("payload")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := m.Copy(ctx, "/uploads/src.txt", "/cache/copy.txt"); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	data, err := m.ReadAll(ctx, "/cache/copy.txt")
	if err != nil {
		t.Fatalf("read copy failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("expected copied content %q, got %q", "payload", data)
	}
	if exists, _ := m.FileExists(ctx, "/uploads/src.txt"); !exists {
		t.Error("expected source to remain after copy")
	}

	if err := m.Move(ctx, "/uploads/src.txt", "/cache/moved.txt"); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if exists, _ := m.FileExists(ctx, "/uploads/src.txt"); exists {
		t.Error("expected source gone after move")
	}
	if exists, _ := m.FileExists(ctx, "/cache/moved.txt"); !exists {
		t.Error("expected destination to exist after move")
	}
}
