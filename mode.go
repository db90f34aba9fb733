package memo

import "fmt"

// Mode controls whether a call reads, writes, deletes, or bypasses the
// cache. The mode is fixed per Cache for its whole lifetime.
type Mode uint8

const (
	// ModeNormal loads on hit, computes and saves on miss.
	ModeNormal Mode = iota
	// ModeReadonly loads on hit, computes without saving on miss.
	ModeReadonly
	// ModeOverwrite always computes and saves, replacing any artifact.
	ModeOverwrite
	// ModeDelete removes any cached artifact, then computes without saving.
	ModeDelete
	// ModeIgnore always computes; the cache is never consulted.
	ModeIgnore

	modeSentinel // keep last
)

// String returns the mode name as used in MEMO_CACHE_MODE.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeReadonly:
		return "readonly"
	case ModeOverwrite:
		return "overwrite"
	case ModeDelete:
		return "delete"
	case ModeIgnore:
		return "ignore"
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// valid reports whether m is one of the defined modes.
func (m Mode) valid() bool {
	return m < modeSentinel
}

// ParseMode parses a mode name ("normal", "readonly", "overwrite", "delete",
// "ignore") into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "normal":
		return ModeNormal, nil
	case "readonly":
		return ModeReadonly, nil
	case "overwrite":
		return ModeOverwrite, nil
	case "delete":
		return ModeDelete, nil
	case "ignore":
		return ModeIgnore, nil
	}
	return 0, fmt.Errorf("unknown mode %q (allowed: normal, readonly, overwrite, delete, ignore)", s)
}
