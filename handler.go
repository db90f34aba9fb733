package memo

import (
	"fmt"
	"io"
	"sort"
)

// Options carries handler-specific save or load options, forwarded verbatim
// from the cache configuration to the handler.
type Options map[string]any

// String returns the named option as a string, or def if absent or not a
// string.
func (o Options) String(name, def string) string {
	if v, ok := o[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the named option as a bool, or def if absent or not a bool.
func (o Options) Bool(name string, def bool) bool {
	if v, ok := o[name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Handler serializes one logical payload to and from a stream. Handlers are
// resolved by filetype tag at cache construction time and never inspect the
// payload type to choose behavior for a single tag.
type Handler interface {
	// Ext returns the fixed file extension, including the leading dot.
	Ext() string

	// Encode writes value to w.
	Encode(w io.Writer, value any, opts Options) error

	// Decode reads a value from r into out, which must be a pointer to
	// the expected payload type.
	Decode(r io.Reader, out any, opts Options) error
}

// Built-in filetype tags.
const (
	// FiletypeGob is the generic-object handler and the default tag.
	FiletypeGob = "gob"
	// FiletypeRaw stores a []byte payload verbatim.
	FiletypeRaw = "raw"
	// FiletypeLabeled stores Array and Dataset payloads.
	FiletypeLabeled = "labeled"
	// FiletypeJSON stores any JSON-encodable payload.
	FiletypeJSON = "json"
	// FiletypeYAML stores any YAML-encodable payload.
	FiletypeYAML = "yaml"
)

// registry maps filetype tags to handlers. Each cache owns its own copy,
// immutable after Open.
type registry struct {
	handlers map[string]Handler
}

// newRegistry creates a registry pre-populated with the built-in handlers.
func newRegistry() *registry {
	return &registry{
		handlers: map[string]Handler{
			FiletypeGob:     gobHandler{},
			FiletypeRaw:     rawHandler{},
			FiletypeLabeled: labeledHandler{},
			FiletypeJSON:    jsonHandler{},
			FiletypeYAML:    yamlHandler{},
		},
	}
}

// register adds or replaces a handler for a tag.
func (r *registry) register(tag string, h Handler) {
	r.handlers[tag] = h
}

// resolve looks up the handler for a tag. Unknown tags fail fast.
func (r *registry) resolve(tag string) (Handler, error) {
	h, ok := r.handlers[tag]
	if !ok {
		return nil, fmt.Errorf("unknown filetype tag %q", tag)
	}
	return h, nil
}

// extensions returns the sorted, deduplicated set of artifact extensions
// the registered handlers can produce, including their compressed variants.
// Storage lookup probes exactly these.
func (r *registry) extensions() []string {
	seen := make(map[string]struct{}, len(r.handlers)*2)
	for _, h := range r.handlers {
		seen[h.Ext()] = struct{}{}
		seen[zstdHandler{inner: h}.Ext()] = struct{}{}
	}
	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
