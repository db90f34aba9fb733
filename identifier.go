package memo

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Transform is a hook that rewrites the bound-argument mapping before
// template substitution. It receives the full mapping and returns the
// name→value mapping actually used for the {name} placeholders.
type Transform func(args map[string]any) map[string]any

// maxSegmentLen bounds a single identifier segment. Longer segments are
// replaced by an xxhash64 digest to stay under filesystem name limits.
const maxSegmentLen = 240

// fallbackSegment is used when no bound arguments participate in the
// identifier but a custom suffix still disambiguates it.
const fallbackSegment = "_"

// templateSegment is one parsed piece of an identifier template: a literal
// followed by an optional {name} placeholder.
type templateSegment struct {
	literal string
	name    string
}

// identifierBuilder derives deterministic relative paths from call
// signatures. All of its configuration is resolved once at Open; build
// performs no I/O and no randomness.
type identifierBuilder struct {
	include   []string
	exclude   []string
	template  string
	segments  []templateSegment
	transform Transform
	suffix    string
}

// validate checks the statically checkable configuration: mutually exclusive
// filters and template syntax. Called once by Open.
func (b *identifierBuilder) validate() []error {
	var errs []error
	if len(b.include) > 0 && len(b.exclude) > 0 {
		errs = append(errs, errors.New("only one of include and exclude filters can be set"))
	}
	if b.template != "" {
		segments, err := parseTemplate(b.template)
		if err != nil {
			errs = append(errs, err)
		}
		b.segments = segments
	}
	return errs
}

// build derives the identifier for a call signature.
func (b *identifierBuilder) build(sig *Signature) (string, error) {
	var id string
	if b.template != "" {
		expanded, err := b.expand(sig)
		if err != nil {
			return "", err
		}
		id = expanded
	} else {
		derived, err := b.derive(sig)
		if err != nil {
			return "", err
		}
		id = derived
	}

	if b.suffix != "" {
		id = id + "_" + b.suffix
	}
	return id, nil
}

// expand substitutes bound arguments (or the transform hook's mapping) into
// the template placeholders.
func (b *identifierBuilder) expand(sig *Signature) (string, error) {
	values := sig.values()
	if b.transform != nil {
		values = b.transform(values)
	}

	var buf strings.Builder
	for _, seg := range b.segments {
		buf.WriteString(seg.literal)
		if seg.name == "" {
			continue
		}
		value, ok := values[seg.name]
		if !ok {
			return "", &TemplateError{Template: b.template, Missing: seg.name}
		}
		buf.WriteString(sanitizeSegment(stringify(value)))
	}
	return buf.String(), nil
}

// derive builds the default identifier shape:
// <name>[/<Receiver>]/<k1>=<v1>,<k2>=<v2>
func (b *identifierBuilder) derive(sig *Signature) (string, error) {
	segments := []string{sig.name}
	if sig.recv != nil {
		segments = append(segments, sanitizeSegment(receiverSegment(sig.recv)))
	}

	var pairs []string
	for _, p := range sig.params {
		if !b.participates(p.name) {
			continue
		}
		pairs = append(pairs, p.name+"="+sanitizeSegment(stringify(p.value)))
	}

	params := strings.Join(pairs, ",")
	if len(params) > maxSegmentLen {
		params = digestSegment(params)
	}
	if params == "" {
		if b.suffix == "" {
			return "", newConfigError([]error{
				fmt.Errorf("ambiguous identifier for %q: no participating arguments and no suffix", sig.name),
			})
		}
		params = fallbackSegment
	}

	return path.Join(append(segments, params)...), nil
}

// participates reports whether the named parameter contributes to the
// identifier under the configured filter.
func (b *identifierBuilder) participates(name string) bool {
	if len(b.include) > 0 {
		for _, k := range b.include {
			if k == name {
				return true
			}
		}
		return false
	}
	for _, k := range b.exclude {
		if k == name {
			return false
		}
	}
	return true
}

// receiverSegment renders the receiver as a path segment: the class name
// alone, or Class(repr) when the object has a meaningful string form.
func receiverSegment(r *receiver) string {
	if r.repr == "" {
		return r.class
	}
	return fmt.Sprintf("%s(%s)", r.class, r.repr)
}

// parseTemplate splits a template into literal/placeholder segments.
// Placeholders are {name}; braces cannot be escaped.
func parseTemplate(template string) ([]templateSegment, error) {
	var segments []templateSegment
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if strings.IndexByte(rest, '}') >= 0 {
				return nil, fmt.Errorf("template %q: unmatched '}'", template)
			}
			if rest != "" {
				segments = append(segments, templateSegment{literal: rest})
			}
			return segments, nil
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			return nil, fmt.Errorf("template %q: unmatched '{'", template)
		}
		name := rest[open+1 : open+closing]
		if name == "" {
			return nil, fmt.Errorf("template %q: empty placeholder", template)
		}
		segments = append(segments, templateSegment{literal: rest[:open], name: name})
		rest = rest[open+closing+1:]
	}
}

// sanitizeSegment replaces path-hostile characters in a stringified value
// with '_' and digests oversized segments. Glob metacharacters are replaced
// too, so identifiers stay portable across filesystems and shells.
func sanitizeSegment(s string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '*', '?', '[', ']':
			return '_'
		}
		if r < 0x20 || r == 0x7f {
			return '_'
		}
		return r
	}, s)
	if len(clean) > maxSegmentLen {
		return digestSegment(clean)
	}
	return clean
}

// digestSegment replaces a segment with a fixed-width xxhash64 hex digest.
func digestSegment(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}
