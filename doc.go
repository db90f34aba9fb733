/*
Package memo provides function-level disk memoization for Go applications.

It caches the result of a deterministic function call on disk, keyed by a
stable identifier derived from the call's bound arguments, so that expensive
computations are not repeated across runs.

# Core Architecture

memo is built from four pieces:

  - Signature: the identity of a call (qualified function name, optional
    receiver, ordered parameter bindings).
  - Identifier builder: turns a Signature into a deterministic, filesystem-safe
    relative path, honoring include/exclude filters, a template, and an
    optional transform hook.
  - Handler registry: maps a filetype tag ("gob", "raw", "labeled", "json",
    "yaml") to a serialization handler. Custom handlers can be registered.
  - Mode policy engine: decides per call whether to read, write, delete, or
    bypass the cached artifact, according to the cache's fixed Mode.

Artifacts live directly under the cache root at root/<identifier>.<ext>.
There is no index or manifest; presence of the file is the sole source of
truth.

# Basic Usage

Creating a cache and memoizing a function:

	cache, err := memo.Open(".cache")
	if err != nil {
	    log.Fatalf("failed to open cache: %v", err)
	}

	add := memo.Wrap2(cache, "calc.Add", [2]string{"x", "y"},
	    func(x, y int) (int, error) {
	        return x + y, nil
	    })

	sum, err := add(3, 5) // computed once, loaded from disk afterwards

Explicit call-site control via Do:

	sig := memo.NewSignature("calc.Add").Bind("x", 3).Bind("y", 5)
	sum, err := memo.Do(cache, sig, func() (int, error) {
	    return 3 + 5, nil
	})

# Modes

The cache mode is fixed for the lifetime of a Cache:

  - normal: load on hit; compute and save on miss.
  - readonly: load on hit; compute without saving on miss.
  - overwrite: always compute and save.
  - delete: remove any cached artifact, then compute.
  - ignore: always compute; the cache is never consulted.

The default mode is normal, overridable with the MEMO_CACHE_MODE environment
variable or the WithMode option.

# Concurrency

Concurrent callers with the same identifier collapse into a single
computation in normal and readonly modes, and saves are atomic (written to a
temporary file, then renamed into place), so readers never observe a partially
written artifact.
*/
package memo
