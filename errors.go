package memo

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	// ErrNotFound is returned when an artifact does not exist for an
	// identifier, e.g. when deleting an entry that was never saved.
	ErrNotFound = errors.New("artifact not found")
)

// ConfigError represents one or more configuration errors detected while
// opening a cache or building an identifier: an invalid mode, an unknown
// filetype tag, both include and exclude filters set, a malformed template,
// or an identifier with no distinguishing values and no suffix.
type ConfigError struct {
	Errors []error
}

// Error implements the error interface.
func (ce *ConfigError) Error() string {
	if len(ce.Errors) == 0 {
		return "invalid configuration"
	}
	if len(ce.Errors) == 1 {
		return fmt.Sprintf("invalid configuration: %v", ce.Errors[0])
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "invalid configuration with %d errors:\n", len(ce.Errors))
	for i, err := range ce.Errors {
		fmt.Fprintf(&buf, "  %d. %v\n", i+1, err)
	}
	return buf.String()
}

// Unwrap returns the underlying errors for use with errors.Is and errors.As.
func (ce *ConfigError) Unwrap() []error {
	return ce.Errors
}

// newConfigError creates a ConfigError from a slice of errors.
// Returns nil if the slice is empty.
func newConfigError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &ConfigError{Errors: errs}
}

// TemplateError is returned when an identifier template references a
// variable absent from the (possibly transformed) bound arguments.
// It is raised per call, before any I/O.
type TemplateError struct {
	Template string
	Missing  string
}

// Error implements the error interface.
func (te *TemplateError) Error() string {
	return fmt.Sprintf("template %q references unknown variable %q", te.Template, te.Missing)
}

// AmbiguousMatchError is returned when more than one stored artifact matches
// a single logical identifier. The cache is left untouched.
type AmbiguousMatchError struct {
	Identifier string
	Matches    []string
}

// Error implements the error interface.
func (ae *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("identifier %q matches %d artifacts: %s",
		ae.Identifier, len(ae.Matches), strings.Join(ae.Matches, ", "))
}

// SerializationError is returned when a handler fails to encode a payload.
// The partially written artifact is never left in place.
type SerializationError struct {
	Tag  string
	Path string
	Err  error
}

// Error implements the error interface.
func (se *SerializationError) Error() string {
	return fmt.Sprintf("%s handler failed to encode %s: %v", se.Tag, se.Path, se.Err)
}

// Unwrap returns the underlying handler error.
func (se *SerializationError) Unwrap() error {
	return se.Err
}

// CorruptArtifactError is returned when a handler fails to decode a stored
// artifact. The error propagates to the caller; the cache does not silently
// fall back to recomputation.
type CorruptArtifactError struct {
	Tag  string
	Path string
	Err  error
}

// Error implements the error interface.
func (ce *CorruptArtifactError) Error() string {
	return fmt.Sprintf("%s handler failed to decode %s: %v", ce.Tag, ce.Path, ce.Err)
}

// Unwrap returns the underlying handler error.
func (ce *CorruptArtifactError) Unwrap() error {
	return ce.Err
}
