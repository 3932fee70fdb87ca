package mimecheck

// Builder provides a fluent API for constructing checkers
type Builder struct {
	opts Options
}

// NewBuilder creates a new checker builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Allow adds entries to the allow-list. Group shorthands like
// mimecheck.AllImages are expanded here, at build time.
func (b *Builder) Allow(types ...string) *Builder {
	b.opts.Allowed = append(b.opts.Allowed, ExpandGroups(types)...)
	return b
}

// AllowImages allows the common image types
func (b *Builder) AllowImages() *Builder {
	return b.Allow(string(AllImages))
}

// AllowDocuments allows the common document types
func (b *Builder) AllowDocuments() *Builder {
	return b.Allow(string(AllDocuments))
}

// AllowMedia allows the common audio and video types
func (b *Builder) AllowMedia() *Builder {
	return b.Allow(string(AllAudio), string(AllVideo))
}

// MagicFile sets a custom signature database path
func (b *Builder) MagicFile(path string) *Builder {
	b.opts.MagicFile = path
	return b
}

// DisableMagic turns off signature sniffing
func (b *Builder) DisableMagic() *Builder {
	b.opts.DisableMagic = true
	return b
}

// HeaderCheck permits the header-declared type as a detection fallback
func (b *Builder) HeaderCheck() *Builder {
	b.opts.HeaderCheck = true
	return b
}

// Options returns the accumulated options (for inspection)
func (b *Builder) Options() Options {
	return b.opts
}

// Build creates the checker with the configured options
func (b *Builder) Build() (*Checker, error) {
	return New(b.opts)
}
