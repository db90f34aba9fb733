package memo

import (
	"os"
	"path/filepath"
)

// Environment variables consulted by Open for defaults. Explicit arguments
// and options always win; the variables are read once at construction time
// and never again.
const (
	// EnvCacheDir overrides the default cache root when Open is called
	// with an empty root.
	EnvCacheDir = "MEMO_CACHE_DIR"

	// EnvCacheMode overrides the default mode when WithMode is not given.
	EnvCacheMode = "MEMO_CACHE_MODE"
)

// defaultRoot resolves the cache root for an empty Open argument:
// $MEMO_CACHE_DIR if set, else ~/.cache/memo.
func defaultRoot() string {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to a relative directory when the home cannot be
		// resolved (e.g. stripped-down containers).
		return ".memo"
	}
	return filepath.Join(home, ".cache", "memo")
}

// defaultMode resolves the mode when no WithMode option is given:
// $MEMO_CACHE_MODE if set, else normal.
func defaultMode() (Mode, error) {
	if s := os.Getenv(EnvCacheMode); s != "" {
		return ParseMode(s)
	}
	return ModeNormal, nil
}
