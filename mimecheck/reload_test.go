package mimecheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchMagicFileReload(t *testing.T) {
	dir := t.TempDir()
	sigPath := filepath.Join(dir, "magic.json")
	if err := os.WriteFile(sigPath,
		[]byte(`[{"mime":"application/x-old","offset":0,"magic":"4f4c44"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	checker, err := New(Options{Allowed: []string{"application/x-new"}, MagicFile: sigPath})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := checker.WatchMagicFile(ctx); err != nil {
		t.Fatalf("WatchMagicFile() error: %v", err)
	}
	defer checker.Close()

	// Swap the database: "NEW" now maps to application/x-new
	if err := os.WriteFile(sigPath,
		[]byte(`[{"mime":"application/x-new","offset":0,"magic":"4e4557"}]`), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	target := filepath.Join(dir, "payload.bin")
	if err := os.WriteFile(target, []byte("NEWDATA"), 0o644); err != nil {
		t.Fatalf("write target: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		checker.ClearCache()
		if detected, err := checker.Detect(FromPath(target)); err == nil && detected == "application/x-new" {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("signature database was not reloaded after change")
}

func TestWatchMagicFileReplacesRunningWatch(t *testing.T) {
	dir := t.TempDir()
	sigPath := filepath.Join(dir, "magic.json")
	if err := os.WriteFile(sigPath,
		[]byte(`[{"mime":"application/x-old","offset":0,"magic":"4f4c44"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	checker, err := New(Options{Allowed: []string{"application/x-new"}, MagicFile: sigPath})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := checker.WatchMagicFile(ctx); err != nil {
		t.Fatalf("WatchMagicFile() error: %v", err)
	}
	first := checker.watch

	// The second call stops the first watch and installs a new one
	if err := checker.WatchMagicFile(ctx); err != nil {
		t.Fatalf("second WatchMagicFile() error: %v", err)
	}
	defer checker.Close()
	if checker.watch == first {
		t.Fatal("expected a fresh watch to replace the first")
	}

	// The replacement watch still reloads the database
	if err := os.WriteFile(sigPath,
		[]byte(`[{"mime":"application/x-new","offset":0,"magic":"4e4557"}]`), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	target := filepath.Join(dir, "payload.bin")
	if err := os.WriteFile(target, []byte("NEWDATA"), 0o644); err != nil {
		t.Fatalf("write target: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		checker.ClearCache()
		if detected, err := checker.Detect(FromPath(target)); err == nil && detected == "application/x-new" {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("replacement watch did not reload the signature database")
}

func TestWatchMagicFileRequiresDatabase(t *testing.T) {
	checker, err := New(Options{Allowed: []string{"image/png"}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := checker.WatchMagicFile(context.Background()); err == nil {
		t.Error("expected error when no signature database is configured")
	}
}

func TestReloadKeepsTableOnMalformedDatabase(t *testing.T) {
	dir := t.TempDir()
	sigPath := filepath.Join(dir, "magic.json")
	if err := os.WriteFile(sigPath,
		[]byte(`[{"mime":"application/x-keep","offset":0,"magic":"4b454550"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	checker, err := New(Options{Allowed: []string{"application/x-keep"}, MagicFile: sigPath})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// Break the database on disk, then force a reload attempt
	if err := os.WriteFile(sigPath, []byte(`broken`), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	checker.reloadSignatures()

	target := filepath.Join(dir, "payload.bin")
	if err := os.WriteFile(target, []byte("KEEPDATA"), 0o644); err != nil {
		t.Fatalf("write target: %v", err)
	}

	detected, err := checker.Detect(FromPath(target))
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if detected != "application/x-keep" {
		t.Errorf("expected previous table to survive a bad reload, got %q", detected)
	}
}
