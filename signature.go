package memo

import (
	"fmt"
	"strconv"

	"github.com/davecgh/go-spew/spew"
)

// Signature captures the identity of a single call: the function's qualified
// name, an optional receiver, and the ordered mapping from parameter name to
// bound argument value. Build one fresh per call; it is never persisted.
type Signature struct {
	name   string
	recv   *receiver
	params []param
}

// param is a single name=value binding. Order of first binding is preserved.
type param struct {
	name  string
	value any
}

// receiver describes the owning object of a method call. repr is the
// object's meaningful string form, if it has one.
type receiver struct {
	class string
	repr  string
}

// NewSignature creates a Signature for the function with the given qualified
// name, e.g. "stats.Mean". Slashes in the name introduce path segments in
// the derived identifier.
func NewSignature(name string) *Signature {
	return &Signature{name: name}
}

// Bind binds a parameter value. Binding a name twice replaces the value in
// place, keeping the original position.
//
// Values must have a stable, deterministic string form: fmt.Stringer
// implementations are used as-is, and everything else is rendered with
// sorted map keys and without pointer addresses. Values whose string form
// depends on object identity produce unstable identifiers.
func (s *Signature) Bind(name string, value any) *Signature {
	for i := range s.params {
		if s.params[i].name == name {
			s.params[i].value = value
			return s
		}
	}
	s.params = append(s.params, param{name: name, value: value})
	return s
}

// BindDefault binds a parameter value only if the name is not already bound.
// This applies the callee's defaulting rules, so equivalent calls made with
// and without explicit defaults produce the same identifier.
func (s *Signature) BindDefault(name string, value any) *Signature {
	for i := range s.params {
		if s.params[i].name == name {
			return s
		}
	}
	s.params = append(s.params, param{name: name, value: value})
	return s
}

// Receiver attaches the owning object of a method call. The class name (and
// repr, when non-empty) becomes a path segment of the identifier; the
// receiver never appears in the parameter list.
func (s *Signature) Receiver(class, repr string) *Signature {
	s.recv = &receiver{class: class, repr: repr}
	return s
}

// Name returns the qualified function name.
func (s *Signature) Name() string {
	return s.name
}

// values returns the bound arguments as a map, for template substitution
// and transform hooks.
func (s *Signature) values() map[string]any {
	m := make(map[string]any, len(s.params))
	for _, p := range s.params {
		m[p.name] = p.value
	}
	return m
}

// valueDumper produces deterministic string forms for arbitrary values.
// Sorted map keys and suppressed pointer addresses keep object identity out
// of identifiers.
var valueDumper = &spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// stringify returns the stable string form of a bound argument value.
// fmt.Stringer implementations use their own String method; everything else
// goes through the deterministic dumper.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	return valueDumper.Sprintf("%v", v)
}
