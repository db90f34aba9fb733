package memo

import (
	"github.com/apex/log"
	"github.com/spf13/afero"
)

// WithFs sets a custom filesystem for the cache.
// This is primarily useful for testing with in-memory filesystems.
//
// Example:
//
//	cache, err := memo.Open(".cache", memo.WithFs(afero.NewMemMapFs()))
func WithFs(fs afero.Fs) Option {
	return func(c *Cache) {
		c.fs = fs
	}
}

// WithMode fixes the cache mode for the lifetime of the Cache. Without this
// option the mode comes from MEMO_CACHE_MODE, defaulting to normal.
func WithMode(mode Mode) Option {
	return func(c *Cache) {
		c.mode = mode
		c.modeSet = true
	}
}

// WithFiletype selects the serialization handler by tag. The tag is resolved
// once at Open; unknown tags fail with a ConfigError. The default is "gob".
func WithFiletype(tag string) Option {
	return func(c *Cache) {
		c.filetype = tag
	}
}

// WithHandler registers a custom handler under a tag. Combine with
// WithFiletype to select it.
func WithHandler(tag string, h Handler) Option {
	return func(c *Cache) {
		c.registry.register(tag, h)
	}
}

// WithInclude restricts identifier derivation to the named parameters.
// Mutually exclusive with WithExclude.
func WithInclude(names ...string) Option {
	return func(c *Cache) {
		c.ids.include = names
	}
}

// WithExclude removes the named parameters from identifier derivation.
// Mutually exclusive with WithInclude.
func WithExclude(names ...string) Option {
	return func(c *Cache) {
		c.ids.exclude = names
	}
}

// WithTemplate derives identifiers from a template with {name} placeholders
// instead of the default shape.
//
// Example:
//
//	cache, err := memo.Open(".cache", memo.WithTemplate("sums/{x}/{y}"))
func WithTemplate(template string) Option {
	return func(c *Cache) {
		c.ids.template = template
	}
}

// WithTransform sets a hook that rewrites the bound-argument mapping before
// template substitution.
func WithTransform(fn Transform) Option {
	return func(c *Cache) {
		c.ids.transform = fn
	}
}

// WithSuffix appends a custom suffix (joined by an underscore) to every
// derived identifier.
func WithSuffix(suffix string) Option {
	return func(c *Cache) {
		c.ids.suffix = suffix
	}
}

// WithSaveOptions forwards handler-specific options verbatim to the
// handler's Encode.
func WithSaveOptions(opts Options) Option {
	return func(c *Cache) {
		c.saveOpts = opts
	}
}

// WithLoadOptions forwards handler-specific options verbatim to the
// handler's Decode.
func WithLoadOptions(opts Options) Option {
	return func(c *Cache) {
		c.loadOpts = opts
	}
}

// WithCompression wraps the resolved handler with zstd stream compression.
// The artifact extension gains a ".zst" suffix.
func WithCompression() Option {
	return func(c *Cache) {
		c.compress = true
	}
}

// WithSaveNilResults disables the default policy of skipping the save when
// the computed result is a nil interface, pointer, map, or slice.
func WithSaveNilResults() Option {
	return func(c *Cache) {
		c.saveNil = true
	}
}

// WithLogger sets the logger used for debug-level hit/miss/save/delete
// lines. The default logger discards everything.
func WithLogger(l log.Interface) Option {
	return func(c *Cache) {
		c.log = l
	}
}

// WithNowFunc sets a custom time function for the cache.
// This is primarily useful for testing with deterministic timestamps.
func WithNowFunc(nowFunc NowFunc) Option {
	return func(c *Cache) {
		c.nowFunc = nowFunc
	}
}
