package mimecheck

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watcher tracks a live signature-database watch.
type watcher struct {
	cancel context.CancelFunc
}

// WatchMagicFile reloads the custom signature database whenever it changes
// on disk. The reload swaps the signature table atomically; a database that
// becomes malformed keeps the previous table in place. Watching stops when
// ctx is cancelled or Close is called. It is an error to watch a checker
// that has no signature database configured.
func (c *Checker) WatchMagicFile(ctx context.Context) error {
	if c.opts.MagicFile == "" {
		return NewCheckError(NotReadable, "no signature database configured")
	}

	// A repeated call replaces the running watch.
	c.Close()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory: editors and atomic writers replace the file,
	// which drops a watch on the file itself.
	if err := fw.Add(filepath.Dir(c.opts.MagicFile)); err != nil {
		fw.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	c.watch = &watcher{cancel: cancel}

	go func() {
		defer fw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(c.opts.MagicFile) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				c.reloadSignatures()
			case _, ok := <-fw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return nil
}

// Close stops a running signature-database watch.
func (c *Checker) Close() {
	if c.watch != nil {
		c.watch.cancel()
		c.watch = nil
	}
}

func (c *Checker) reloadSignatures() {
	sigs, err := LoadSignatureFile(c.opts.MagicFile)
	if err != nil {
		return
	}

	c.sigMu.Lock()
	c.sigs = sigs
	c.sigMu.Unlock()

	// Cached detections may reflect the old table
	c.ClearCache()
}
