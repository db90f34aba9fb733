package memo

import (
	"errors"
	"reflect"
)

// Do runs fn through the cache's mode policy for the given call signature.
//
// In normal and readonly modes, concurrent callers with the same identifier
// collapse into a single computation and share its result. Overwrite,
// delete, and ignore modes execute fn on every call by contract, so they
// never collapse.
//
// Errors returned by fn propagate unchanged; the cache never suppresses or
// wraps them.
func Do[R any](c *Cache, sig *Signature, fn func() (R, error)) (R, error) {
	var zero R

	// The identifier is derived before the mode switch, so configuration
	// problems like a missing template variable surface in every mode,
	// including ignore.
	identifier, err := c.ids.build(sig)
	if err != nil {
		return zero, err
	}

	if c.mode == ModeIgnore {
		return fn()
	}

	switch c.mode {
	case ModeNormal, ModeReadonly:
		v, err, _ := c.group.Do(identifier, func() (any, error) {
			path, found, err := c.store.locate(identifier)
			if err != nil {
				return nil, err
			}

			if found {
				var out R
				if err := c.load(path, &out); err != nil {
					return nil, err
				}
				c.stats.hits.Add(1)
				c.log.WithField("identifier", identifier).Debug("cache hit")
				return out, nil
			}

			c.stats.misses.Add(1)
			c.log.WithField("identifier", identifier).Debug("cache miss")

			result, err := fn()
			if err != nil {
				return nil, err
			}
			if c.mode == ModeNormal && c.shouldSave(result) {
				if err := c.save(identifier, result); err != nil {
					return nil, err
				}
			}
			return result, nil
		})
		if err != nil {
			return zero, err
		}
		// A nil interface result arrives as an untyped nil; a hard
		// assertion would panic when R is an interface type.
		out, _ := v.(R)
		return out, nil

	case ModeOverwrite:
		result, err := fn()
		if err != nil {
			return zero, err
		}
		if c.shouldSave(result) {
			if err := c.save(identifier, result); err != nil {
				return zero, err
			}
		}
		return result, nil

	case ModeDelete:
		path, found, err := c.store.locate(identifier)
		if err != nil {
			return zero, err
		}
		if found {
			if err := c.store.remove(path); err != nil && !errors.Is(err, ErrNotFound) {
				return zero, err
			}
			c.stats.deletes.Add(1)
			c.log.WithField("identifier", identifier).Debug("artifact deleted")
		}
		return fn()
	}

	// Unreachable: Open validates the mode.
	return fn()
}

// shouldSave implements the absence-sentinel policy: nil results are not
// persisted unless WithSaveNilResults is set. A skipped save means the next
// call is a plain miss.
func (c *Cache) shouldSave(result any) bool {
	if c.saveNil {
		return true
	}
	if result == nil {
		return false
	}
	v := reflect.ValueOf(result)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return !v.IsNil()
	}
	return true
}

// Wrap1 memoizes a one-argument function. name is the function's qualified
// name and param the parameter name used in identifiers.
func Wrap1[A, R any](c *Cache, name, param string, fn func(A) (R, error)) func(A) (R, error) {
	return func(a A) (R, error) {
		sig := NewSignature(name).Bind(param, a)
		return Do(c, sig, func() (R, error) { return fn(a) })
	}
}

// Wrap2 memoizes a two-argument function.
func Wrap2[A, B, R any](c *Cache, name string, params [2]string, fn func(A, B) (R, error)) func(A, B) (R, error) {
	return func(a A, b B) (R, error) {
		sig := NewSignature(name).Bind(params[0], a).Bind(params[1], b)
		return Do(c, sig, func() (R, error) { return fn(a, b) })
	}
}

// Wrap3 memoizes a three-argument function.
func Wrap3[A, B, C, R any](c *Cache, name string, params [3]string, fn func(A, B, C) (R, error)) func(A, B, C) (R, error) {
	return func(a A, b B, cc C) (R, error) {
		sig := NewSignature(name).Bind(params[0], a).Bind(params[1], b).Bind(params[2], cc)
		return Do(c, sig, func() (R, error) { return fn(a, b, cc) })
	}
}
