package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/gobeaver/storekit"
)

func TestNew(t *testing.T) {
	t.Run("creates adapter with default config", func(t *testing.T) {
		a := New()
		if a == nil {
			t.Fatal("expected adapter to be created")
		}
		if a.maxSize != 0 {
			t.Errorf("expected maxSize=0, got %d", a.maxSize)
		}
	})

	t.Run("creates adapter with max size", func(t *testing.T) {
		a := New(Config{MaxSize: 1024})
		if a.maxSize != 1024 {
			t.Errorf("expected maxSize=1024, got %d", a.maxSize)
		}
	})
}

func TestWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("writes file and reports result", func(t *testing.T) {
		a := New()
		content := "hello world"

		res, err := a.Write(ctx, "test.txt", strings.NewReader(content))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Size != int64(len(content)) {
			t.Errorf("expected result size=%d, got %d", len(content), res.Size)
		}
		if res.Checksum == "" {
			t.Error("expected a checksum in the write result")
		}

		exists, err := a.FileExists(ctx, "test.txt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !exists {
			t.Error("expected file to exist")
		}

		if a.Size() != int64(len(content)) {
			t.Errorf("expected size=%d, got %d", len(content), a.Size())
		}
	})

	t.Run("fails on path traversal", func(t *testing.T) {
		a := New()

		_, err := a.Write(ctx, "../etc/passwd", strings.NewReader("malicious"))
		if err == nil {
			t.Fatal("expected error for path traversal")
		}
	})

	t.Run("respects total size limit", func(t *testing.T) {
		a := New(Config{MaxSize: 10})

		_, err := a.Write(ctx, "large.txt", strings.NewReader("this is too large"))
		if err == nil {
			t.Fatal("expected error for exceeding max size")
		}
	})

	t.Run("respects per-write size limit", func(t *testing.T) {
		a := New()

		_, err := a.Write(ctx, "large.txt", strings.NewReader("this is too large"), storekit.WithMaxSize(5))
		if !storekit.IsTooLarge(err) {
			t.Fatalf("expected too-large error, got: %v", err)
		}
	})

	t.Run("prevents overwrite by default", func(t *testing.T) {
		a := New()

		if _, err := a.Write(ctx, "test.txt", strings.NewReader("first")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err := a.Write(ctx, "test.txt", strings.NewReader("second"))
		if !storekit.IsExist(err) {
			t.Fatalf("expected exist error for overwrite, got: %v", err)
		}
	})

	t.Run("allows overwrite with option", func(t *testing.T) {
		a := New()

		if _, err := a.Write(ctx, "test.txt", strings.NewReader("first")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := a.Write(ctx, "test.txt", strings.NewReader("second"), storekit.WithOverwrite(true)); err != nil {
			t.Fatalf("unexpected error with overwrite: %v", err)
		}

		reader, err := a.Read(ctx, "test.txt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer reader.Close()

		data, _ := io.ReadAll(reader)
		if string(data) != "second" {
			t.Errorf("expected content='second', got '%s'", string(data))
		}
	})

	t.Run("uses declared content type", func(t *testing.T) {
		a := New()

		res, err := a.Write(ctx, "blob", strings.NewReader("data"), storekit.WithContentType("application/x-custom"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.ContentType != "application/x-custom" {
			t.Errorf("expected declared content type, got %s", res.ContentType)
		}
	})
}

func TestReadAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("reads back written content", func(t *testing.T) {
		a := New()
		if _, err := a.Write(ctx, "dir/file.txt", strings.NewReader("content")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := a.ReadAll(ctx, "dir/file.txt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "content" {
			t.Errorf("expected 'content', got '%s'", string(data))
		}
	})

	t.Run("read of missing file fails", func(t *testing.T) {
		a := New()
		_, err := a.Read(ctx, "nope.txt")
		if !storekit.IsNotExist(err) {
			t.Fatalf("expected not-exist error, got: %v", err)
		}
	})

	t.Run("delete removes file and reclaims size", func(t *testing.T) {
		a := New()
		if _, err := a.Write(ctx, "file.txt", strings.NewReader("content")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := a.Delete(ctx, "file.txt"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Size() != 0 {
			t.Errorf("expected size=0 after delete, got %d", a.Size())
		}

		if err := a.Delete(ctx, "file.txt"); !storekit.IsNotExist(err) {
			t.Fatalf("expected not-exist error, got: %v", err)
		}
	})
}

func TestStatAndList(t *testing.T) {
	ctx := context.Background()

	t.Run("stat reports file metadata", func(t *testing.T) {
		a := New()
		if _, err := a.Write(ctx, "docs/readme.txt", strings.NewReader("hi")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := a.Stat(ctx, "docs/readme.txt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Name != "readme.txt" || info.Size != 2 || info.IsDir {
			t.Errorf("unexpected info: %+v", info)
		}
	})

	t.Run("stat reports parent directory", func(t *testing.T) {
		a := New()
		if _, err := a.Write(ctx, "docs/readme.txt", strings.NewReader("hi")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := a.Stat(ctx, "docs")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !info.IsDir {
			t.Error("expected docs to be a directory")
		}
	})

	t.Run("list immediate children only", func(t *testing.T) {
		a := New()
		for _, p := range []string{"a.txt", "sub/b.txt", "sub/deep/c.txt"} {
			if _, err := a.Write(ctx, p, strings.NewReader("x")); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		files, err := a.ListContents(ctx, "", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 2 {
			t.Fatalf("expected 2 entries at root, got %d", len(files))
		}
	})

	t.Run("list recursive includes nested files", func(t *testing.T) {
		a := New()
		for _, p := range []string{"a.txt", "sub/b.txt", "sub/deep/c.txt"} {
			if _, err := a.Write(ctx, p, strings.NewReader("x")); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		files, err := a.ListContents(ctx, "", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		fileCount := 0
		for _, f := range files {
			if !f.IsDir {
				fileCount++
			}
		}
		if fileCount != 3 {
			t.Errorf("expected 3 files, got %d", fileCount)
		}
	})

	t.Run("list on file fails", func(t *testing.T) {
		a := New()
		if _, err := a.Write(ctx, "a.txt", strings.NewReader("x")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := a.ListContents(ctx, "a.txt", false); err == nil {
			t.Fatal("expected error listing a file")
		}
	})
}

func TestDirs(t *testing.T) {
	ctx := context.Background()

	t.Run("create and delete directory tree", func(t *testing.T) {
		a := New()
		if err := a.CreateDir(ctx, "uploads/images"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		exists, err := a.DirExists(ctx, "uploads/images")
		if err != nil || !exists {
			t.Fatalf("expected directory to exist, err=%v", err)
		}

		if _, err := a.Write(ctx, "uploads/images/a.png", strings.NewReader("x")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := a.DeleteDir(ctx, "uploads"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		exists, _ = a.FileExists(ctx, "uploads/images/a.png")
		if exists {
			t.Error("expected nested file to be deleted")
		}
		if a.Size() != 0 {
			t.Errorf("expected size=0, got %d", a.Size())
		}
	})
}

func TestGlob(t *testing.T) {
	ctx := context.Background()

	a := New()
	for _, p := range []string{"img/a.png", "img/b.jpg", "img/thumb/c.png", "doc/d.txt"} {
		if _, err := a.Write(ctx, p, strings.NewReader("x")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tests := []struct {
		pattern string
		want    int
	}{
		{"img/*.png", 1},
		{"img/**", 3},
		{"**.png", 2},
		{"doc/*", 1},
		{"*.txt", 0},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			files, err := a.Glob(ctx, tt.pattern)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(files) != tt.want {
				t.Errorf("pattern %q: expected %d matches, got %d", tt.pattern, tt.want, len(files))
			}
		})
	}

	t.Run("invalid pattern", func(t *testing.T) {
		if _, err := a.Glob(ctx, "[unterminated"); err == nil {
			t.Fatal("expected error for invalid pattern")
		}
	})
}

func TestChecksum(t *testing.T) {
	ctx := context.Background()

	a := New()
	res, err := a.Write(ctx, "file.bin", strings.NewReader("checksum me"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum, err := a.Checksum(ctx, "file.bin", storekit.ChecksumXXHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != res.Checksum {
		t.Errorf("recomputed checksum %s differs from write result %s", sum, res.Checksum)
	}

	if _, err := a.Checksum(ctx, "missing.bin", storekit.ChecksumXXHash); !storekit.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got: %v", err)
	}
}

func TestConfiguredDefaultChecksum(t *testing.T) {
	ctx := context.Background()

	a := New(Config{Checksum: storekit.ChecksumSHA256})
	res, err := a.Write(ctx, "file.bin", strings.NewReader("checksum me"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum, err := a.Checksum(ctx, "file.bin", storekit.ChecksumSHA256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != res.Checksum {
		t.Errorf("expected write result to use the configured algorithm, got %s want %s", res.Checksum, sum)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()

	a := New()
	if _, err := a.Write(ctx, "file.txt", strings.NewReader("content")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a.Clear()

	if a.FileCount() != 0 || a.Size() != 0 {
		t.Errorf("expected empty adapter after clear, files=%d size=%d", a.FileCount(), a.Size())
	}
}
