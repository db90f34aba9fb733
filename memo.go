package memo

import (
	"fmt"
	"io"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes function results on disk. All configuration is resolved
// once in Open; a Cache has no hidden mutable state afterwards and is safe
// for concurrent use.
type Cache struct {
	root     string
	fs       afero.Fs
	mode     Mode
	modeSet  bool
	filetype string
	handler  Handler
	registry *registry
	ids      identifierBuilder
	saveOpts Options
	loadOpts Options
	compress bool
	saveNil  bool
	log      log.Interface
	nowFunc  NowFunc
	store    *storage
	group    singleflight.Group
	stats    counters
}

// NowFunc defines a function that returns the current time.
type NowFunc func() time.Time

// Option defines a function that configures a Cache.
type Option func(*Cache)

// Open creates a cache rooted at the given directory, which is created
// (with parents) if absent. An empty root falls back to $MEMO_CACHE_DIR,
// then ~/.cache/memo.
//
// All configuration errors are reported here, never at call time: an invalid
// mode, an unknown filetype tag, both include and exclude filters set, or a
// malformed identifier template. No directories are created when the
// configuration is invalid.
func Open(root string, options ...Option) (*Cache, error) {
	c := &Cache{
		fs:       afero.NewOsFs(),
		filetype: FiletypeGob,
		registry: newRegistry(),
		nowFunc:  time.Now,
		log:      &log.Logger{Handler: discard.New(), Level: log.InfoLevel},
	}

	// Apply options
	for _, option := range options {
		option(c)
	}

	var errs []error

	if c.modeSet {
		if !c.mode.valid() {
			errs = append(errs, fmt.Errorf("unknown mode value %d", uint8(c.mode)))
		}
	} else {
		mode, err := defaultMode()
		if err != nil {
			errs = append(errs, err)
		}
		c.mode = mode
	}

	errs = append(errs, c.ids.validate()...)

	handler, err := c.registry.resolve(c.filetype)
	if err != nil {
		errs = append(errs, err)
	} else {
		c.handler = handler
		if c.compress {
			c.handler = zstdHandler{inner: handler}
		}
	}

	if err := newConfigError(errs); err != nil {
		return nil, err
	}

	if root == "" {
		root = defaultRoot()
	}
	c.root = root
	c.store = &storage{fs: c.fs, root: root, exts: c.registry.extensions()}

	if err := c.fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache root: %w", err)
	}

	return c, nil
}

// OpenTemp creates a temporary in-memory cache for testing.
func OpenTemp(options ...Option) *Cache {
	options = append([]Option{WithFs(afero.NewMemMapFs())}, options...)
	cache, err := Open("/memo", options...)
	if err != nil {
		panic(fmt.Sprintf("failed to create temp cache: %v", err))
	}
	return cache
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// Mode returns the cache's fixed mode.
func (c *Cache) Mode() Mode {
	return c.mode
}

// Identifier derives the identifier a signature resolves to under this
// cache's configuration. This is useful for debugging and logging.
func (c *Cache) Identifier(sig *Signature) (string, error) {
	return c.ids.build(sig)
}

// Has reports whether an artifact is stored for the signature.
// Returns false on any error.
func (c *Cache) Has(sig *Signature) bool {
	identifier, err := c.ids.build(sig)
	if err != nil {
		return false
	}
	found, err := c.store.exists(identifier)
	return err == nil && found
}

// Delete removes the stored artifact for a signature. Fails with
// ErrNotFound if nothing is stored.
func (c *Cache) Delete(sig *Signature) error {
	identifier, err := c.ids.build(sig)
	if err != nil {
		return err
	}
	path, found, err := c.store.locate(identifier)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, identifier)
	}
	if err := c.store.remove(path); err != nil {
		return err
	}
	c.stats.deletes.Add(1)
	c.log.WithField("identifier", identifier).Debug("artifact deleted")
	return nil
}

// Clear removes all artifacts from the cache and recreates the root.
func (c *Cache) Clear() error {
	if err := c.fs.RemoveAll(c.root); err != nil {
		return fmt.Errorf("failed to remove cache root: %w", err)
	}
	if err := c.fs.MkdirAll(c.root, 0o755); err != nil {
		return fmt.Errorf("failed to recreate cache root: %w", err)
	}
	return nil
}

// save encodes a value through the resolved handler into the artifact for
// the identifier, atomically.
func (c *Cache) save(identifier string, value any) error {
	path := c.store.artifactPath(identifier, c.handler.Ext())

	var encodeErr error
	err := c.store.saveAtomic(path, func(w io.Writer) error {
		if err := c.handler.Encode(w, value, c.saveOpts); err != nil {
			encodeErr = err
		}
		return encodeErr
	})
	if encodeErr != nil {
		return &SerializationError{Tag: c.filetype, Path: path, Err: encodeErr}
	}
	if err != nil {
		return err
	}

	c.stats.saves.Add(1)
	c.log.WithField("path", path).Debug("artifact saved")
	return nil
}

// load decodes the artifact at path into out through the resolved handler.
func (c *Cache) load(path string, out any) error {
	f, err := c.fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer f.Close()

	if err := c.handler.Decode(f, out, c.loadOpts); err != nil {
		return &CorruptArtifactError{Tag: c.filetype, Path: path, Err: err}
	}
	return nil
}

// now returns the current time.
func (c *Cache) now() time.Time {
	return c.nowFunc()
}
