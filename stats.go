package memo

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

// counters tracks per-cache call outcomes.
type counters struct {
	hits    atomic.Uint64
	misses  atomic.Uint64
	saves   atomic.Uint64
	deletes atomic.Uint64
}

// Stats represents cache statistics.
type Stats struct {
	Hits      uint64 // Calls answered from a stored artifact
	Misses    uint64 // Calls that executed the wrapped function
	Saves     uint64 // Artifacts written
	Deletes   uint64 // Artifacts removed
	Entries   int    // Artifacts currently on disk
	TotalSize int64  // Total size of all artifacts in bytes
}

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("entries=%d size=%s hits=%d misses=%d saves=%d deletes=%d",
		s.Entries, humanize.Bytes(uint64(s.TotalSize)), s.Hits, s.Misses, s.Saves, s.Deletes)
}

// Entry represents a single stored artifact for iteration.
type Entry struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Stats returns counters for this Cache instance plus the current on-disk
// entry count and total size.
func (c *Cache) Stats() (Stats, error) {
	stats := Stats{
		Hits:    c.stats.hits.Load(),
		Misses:  c.stats.misses.Load(),
		Saves:   c.stats.saves.Load(),
		Deletes: c.stats.deletes.Load(),
	}

	err := c.walkArtifacts(func(e Entry) error {
		stats.Entries++
		stats.TotalSize += e.Size
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	return stats, nil
}

// Entries returns all stored artifacts.
func (c *Cache) Entries() ([]Entry, error) {
	var entries []Entry
	err := c.walkArtifacts(func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Prune removes artifacts older than the given duration.
// Returns the number of artifacts removed.
func (c *Cache) Prune(olderThan time.Duration) (int, error) {
	cutoff := c.now().Add(-olderThan)

	var toRemove []string
	err := c.walkArtifacts(func(e Entry) error {
		if e.ModTime.Before(cutoff) {
			toRemove = append(toRemove, e.Path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	count := 0
	for _, path := range toRemove {
		if err := c.store.remove(path); err != nil {
			return count, fmt.Errorf("failed to prune %s: %w", path, err)
		}
		c.stats.deletes.Add(1)
		count++
	}

	return count, nil
}

// walkArtifacts walks all artifacts under the root and calls fn for each.
// In-flight temporary files are skipped.
func (c *Cache) walkArtifacts(fn func(Entry) error) error {
	return afero.Walk(c.fs, c.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.Contains(info.Name(), ".tmp-") {
			return nil
		}
		return fn(Entry{Path: path, Size: info.Size(), ModTime: info.ModTime()})
	})
}
