// Package mimecheck validates that a file's content type is inside a
// configured allow-list. Detection prefers magic-signature sniffing and
// falls back to the type declared by the upload transport.
package mimecheck

import (
	"fmt"
	"mime/multipart"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is the number of leading bytes handed to the built-in sniffer.
const sniffLen = 3072

// Options configures a Checker.
type Options struct {
	// Allowed is the allow-list of acceptable type strings. A candidate is
	// accepted when its detected type, or any component of it, is literally
	// present here. See Checker.Check for the component rules.
	Allowed []string

	// MagicFile is the path of a custom signature database. When empty, the
	// database named by the MIMECHECK_MAGIC environment variable is used.
	// See LoadSignatureFile for the format.
	MagicFile string

	// DisableMagic skips signature sniffing entirely. Detection then relies
	// on the header-declared type, which requires HeaderCheck.
	DisableMagic bool

	// HeaderCheck permits falling back to the transport-declared type when
	// sniffing is disabled or yields nothing.
	HeaderCheck bool
}

// Checker performs MIME acceptance checks. It is safe for concurrent use.
type Checker struct {
	opts Options

	sigMu sync.RWMutex
	sigs  []Signature

	cacheMu sync.RWMutex
	cache   map[uint64]string

	watch *watcher
}

// New creates a Checker from the given options. The custom signature
// database (explicit or from the environment) is loaded eagerly so a
// malformed database fails construction, not the first check.
func New(opts Options) (*Checker, error) {
	c := &Checker{
		opts:  opts,
		cache: make(map[uint64]string),
	}

	magicFile := opts.MagicFile
	if magicFile == "" {
		magicFile = DefaultMagicFile()
	}
	if magicFile != "" && !opts.DisableMagic {
		sigs, err := LoadSignatureFile(magicFile)
		if err != nil {
			return nil, err
		}
		c.sigs = sigs
		c.opts.MagicFile = magicFile
	}

	return c, nil
}

// Allowed returns a copy of the configured allow-list.
func (c *Checker) Allowed() []string {
	out := make([]string, len(c.opts.Allowed))
	copy(out, c.opts.Allowed)
	return out
}

// CheckPath checks the file at path against the allow-list.
func (c *Checker) CheckPath(path string) error {
	return c.Check(FromPath(path))
}

// CheckUpload checks an uploaded-file handle against the allow-list.
func (c *Checker) CheckUpload(fh *multipart.FileHeader) error {
	target, cleanup, err := FromUpload(fh)
	if err != nil {
		return NewCheckError(NotReadable, err.Error())
	}
	defer cleanup()
	return c.Check(target)
}

// Check validates a normalized target. It returns nil when the detected
// type is accepted, and a *CheckError classifying the rejection otherwise:
// NOT_READABLE when the target cannot be read, NOT_DETECTED when no
// technique yielded a type, FALSE_TYPE when the type misses the allow-list.
func (c *Checker) Check(target File) error {
	detected, err := c.Detect(target)
	if err != nil {
		return err
	}

	if !Matches(detected, c.opts.Allowed) {
		return NewCheckError(FalseType, fmt.Sprintf(
			"file %s has false type %s; allowed: %s",
			target.Name, detected, strings.Join(c.opts.Allowed, ", ")))
	}
	return nil
}

// Detect resolves the content type of a target without matching it.
// The fallback order is: cached detection, magic-signature lookup
// (custom database, then the built-in sniffer), and finally the
// header-declared type when sniffing is disabled or yielded nothing.
func (c *Checker) Detect(target File) (string, error) {
	if target.Path == "" {
		return "", NewCheckError(NotReadable, fmt.Sprintf("file %s has no readable path", target.Name))
	}

	// An unreadable target is NOT_READABLE unconditionally, even when
	// detection would not need the content.
	if err := checkReadable(target.Path); err != nil {
		return "", err
	}

	key, keyOK := statKey(target.Path)
	var hashed uint64
	if keyOK {
		hashed = xxhash.Sum64String(key)
		c.cacheMu.RLock()
		cached, ok := c.cache[hashed]
		c.cacheMu.RUnlock()
		if ok {
			return cached, nil
		}
	}

	var detected string
	sniffed := false
	if !c.opts.DisableMagic {
		mime, err := c.sniff(target.Path)
		if err != nil {
			return "", err
		}
		detected = mime
		sniffed = detected != ""
	}

	if detected == "" && c.opts.HeaderCheck {
		detected = target.Type
	}

	if detected == "" {
		return "", NewCheckError(NotDetected, fmt.Sprintf("the type of file %s could not be detected", target.Name))
	}

	// Only content-derived results are cached. A header-declared type is
	// the caller's claim, not a property of the file.
	if keyOK && sniffed {
		c.cacheMu.Lock()
		c.cache[hashed] = detected
		c.cacheMu.Unlock()
	}
	return detected, nil
}

// sniff runs the magic-signature lookup on the file head. A configured
// custom database is consulted first; the built-in sniffer decides when
// no custom signature matches.
func (c *Checker) sniff(path string) (string, error) {
	c.sigMu.RLock()
	sigs := c.sigs
	c.sigMu.RUnlock()

	n := sniffLen
	if custom := maxSignatureLen(sigs); custom > n {
		n = custom
	}

	head, err := readHead(path, n)
	if err != nil {
		return "", err
	}

	if mime := matchSignatures(sigs, head); mime != "" {
		return mime, nil
	}
	if len(head) == 0 {
		return "", nil
	}
	return mimetype.Detect(head).String(), nil
}

// ClearCache drops all cached detections.
func (c *Checker) ClearCache() {
	c.cacheMu.Lock()
	c.cache = make(map[uint64]string)
	c.cacheMu.Unlock()
}

// Matches reports whether a detected type is covered by the allow-list.
// Acceptance is exact-string membership, or any allow-list entry equal to
// one of the components obtained by splitting the full type string on "/",
// on "-", and on ";" (three independent splits, merged). The component
// match is deliberately permissive and must stay exactly this loose.
func Matches(detected string, allowed []string) bool {
	for _, a := range allowed {
		if a == detected {
			return true
		}
	}

	parts := strings.Split(detected, "/")
	parts = append(parts, strings.Split(detected, "-")...)
	parts = append(parts, strings.Split(detected, ";")...)
	for _, p := range parts {
		for _, a := range allowed {
			if a == p {
				return true
			}
		}
	}
	return false
}
