package memo

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestMain(t *testing.M) {
	code := t.Run()

	os.Exit(code)
}

func fixedNowFunc() time.Time {
	return time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
}

// newTestCache creates a cache on a fresh in-memory filesystem and returns
// both, so tests can seed or inspect artifacts directly.
func newTestCache(t *testing.T, options ...Option) (*Cache, afero.Fs) {
	t.Helper()

	memFs := afero.NewMemMapFs()
	options = append([]Option{WithFs(memFs), WithMode(ModeNormal)}, options...)
	cache, err := Open("/memo", options...)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	return cache, memFs
}

// reopen opens a second cache over the same filesystem and root, typically
// with a different mode.
func reopen(t *testing.T, fs afero.Fs, options ...Option) *Cache {
	t.Helper()

	options = append([]Option{WithFs(fs)}, options...)
	cache, err := Open("/memo", options...)
	if err != nil {
		t.Fatalf("Failed to reopen cache: %v", err)
	}
	return cache
}

// addSignature is the canonical two-argument test signature.
func addSignature(x, y int) *Signature {
	return NewSignature("calc.Add").Bind("x", x).Bind("y", y)
}

// seedArtifact stores a value for the signature through a normal-mode cache
// sharing the filesystem.
func seedArtifact[R any](t *testing.T, fs afero.Fs, sig *Signature, value R) {
	t.Helper()

	seeder := reopen(t, fs, WithMode(ModeNormal))
	got, err := Do(seeder, sig, func() (R, error) { return value, nil })
	if err != nil {
		t.Fatalf("Failed to seed artifact: %v", err)
	}
	_ = got
	if !seeder.Has(sig) {
		t.Fatalf("Seeded artifact not found")
	}
}
