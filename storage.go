package memo

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// storage owns the physical artifact lifecycle under the cache root. The
// rest of the cache never touches paths directly. exts is the sorted set of
// extensions the registry can produce; lookup probes exact paths only, so a
// dot inside an identifier never acts as an extension boundary.
type storage struct {
	fs   afero.Fs
	root string
	exts []string
}

// artifactPath composes the on-disk location for an identifier and
// extension.
func (s *storage) artifactPath(identifier, ext string) string {
	return filepath.Join(s.root, identifier+ext)
}

// locate finds the stored artifact for an identifier, regardless of which
// handler extension it was saved with. Returns the path and whether exactly
// one artifact was found. More than one physical match fails with
// AmbiguousMatchError rather than guessing.
func (s *storage) locate(identifier string) (string, bool, error) {
	var matches []string
	for _, ext := range s.exts {
		path := s.artifactPath(identifier, ext)
		exists, err := afero.Exists(s.fs, path)
		if err != nil {
			return "", false, fmt.Errorf("failed to check %s: %w", path, err)
		}
		if exists {
			matches = append(matches, path)
		}
	}
	switch len(matches) {
	case 0:
		return "", false, nil
	case 1:
		return matches[0], true, nil
	}
	return "", false, &AmbiguousMatchError{Identifier: identifier, Matches: matches}
}

// exists reports whether an artifact is stored for the identifier. It never
// fails on a nonexistent path, only on ambiguity or I/O errors.
func (s *storage) exists(identifier string) (bool, error) {
	_, found, err := s.locate(identifier)
	return found, err
}

// ensureDir creates the parent directory of path, with parents as needed.
// Idempotent.
func (s *storage) ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// remove deletes the artifact at path. Deleting a missing artifact fails
// with ErrNotFound.
func (s *storage) remove(path string) error {
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err := s.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// saveAtomic writes an artifact through the write callback into a temporary
// file in the destination directory, then renames it into place. A failed
// write never leaves a partial artifact behind.
func (s *storage) saveAtomic(path string, write func(io.Writer) error) error {
	if err := s.ensureDir(path); err != nil {
		return err
	}

	tmp, err := afero.TempFile(s.fs, filepath.Dir(path), "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := s.fs.Rename(tmpName, path); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("failed to rename %s into place: %w", tmpName, err)
	}
	return nil
}
