// SPDX-License-Identifier: MPL-2.0

package jarsfile

import (
	"regexp"
	"sort"
	"strings"
)

type (
	// Result is the outcome of a path lookup. Values always maps the
	// final resolved key (or keys, for wildcard lookups) to its value, so
	// callers treat concrete and wildcarded lookups uniformly. Found
	// distinguishes a resolved value from a returned default.
	Result struct {
		Values map[string]any
		Found  bool
	}
)

// Resolve walks the dotted path through the tree and returns the matched
// key/value mapping. A path that cannot be satisfied yields a *KeyError.
//
// Lookup rules, applied left to right over the path segments:
//
//   - A wildcard in the last segment ("*") matches every key in the
//     current mapping by prefix-anchored regular expression and returns
//     all of them.
//   - An exact miss on the last segment falls back to a reverse substring
//     match: every mapping key that the segment textually contains is a
//     candidate, and the lexicographically greatest one wins. This lets a
//     version-qualified request like "paper-1.20.1" land on a "1.20" key.
//   - When the reverse fallback also misses but the current mapping is a
//     package node (it has "depends" or "from" keys), the whole mapping
//     is returned instead of failing, so per-field package lookups
//     degrade to "the whole package".
func (t *Tree) Resolve(path string) (Result, error) {
	return t.lookup(strings.Split(path, "."), nil, false)
}

// ResolveDefault is Resolve with a fallback: when the walk fails the
// default mapping is returned unchanged with Found unset, and no error is
// reported.
func (t *Tree) ResolveDefault(path string, def map[string]any) (Result, error) {
	return t.lookup(strings.Split(path, "."), def, true)
}

// ResolveKey resolves key inside the mapping at the dotted parent path.
// The key is one segment even when it contains dots, so a
// version-qualified identity like "worldedit-7.2" reverse-matches whole
// config keys instead of being split apart by the path walk.
func (t *Tree) ResolveKey(parent, key string) (Result, error) {
	return t.lookup(append(strings.Split(parent, "."), key), nil, false)
}

// ResolveKeyDefault is ResolveKey with a fallback mapping, mirroring
// ResolveDefault.
func (t *Tree) ResolveKeyDefault(parent, key string, def map[string]any) (Result, error) {
	return t.lookup(append(strings.Split(parent, "."), key), def, true)
}

func (t *Tree) lookup(parts []string, def map[string]any, hasDefault bool) (Result, error) {
	cur := t.root

	for idx, part := range parts {
		last := idx == len(parts)-1
		parent := strings.Join(parts[:idx], ".")

		if last && strings.Contains(part, "*") {
			return wildcardMatch(cur, part), nil
		}

		key := part
		if last {
			if _, ok := cur[key]; !ok {
				if rev, ok := reverseMatch(cur, part); ok {
					key = rev
				} else if IsPackageNode(cur) {
					// Escape hatch: a missing per-field override on a
					// package degrades to the whole package mapping.
					return Result{Values: cur, Found: true}, nil
				}
			}
		}

		val, ok := cur[key]
		if !ok {
			if hasDefault {
				return Result{Values: def}, nil
			}
			return Result{}, &KeyError{Segment: part, Parent: parent}
		}

		if last {
			return Result{Values: map[string]any{key: val}, Found: true}, nil
		}

		next, ok := val.(map[string]any)
		if !ok {
			if hasDefault {
				return Result{Values: def}, nil
			}
			return Result{}, &KeyError{Segment: parts[idx+1], Parent: strings.Join(parts[:idx+1], ".")}
		}
		cur = next
	}

	// Unreachable for non-empty paths; an empty path has no last segment.
	return Result{}, &KeyError{Segment: strings.Join(parts, "."), Parent: ""}
}

// wildcardMatch expands a "*" segment against every key of the mapping.
// The pattern is anchored at the start only, so "paper*" matches any key
// with that prefix.
func wildcardMatch(cur map[string]any, part string) Result {
	pattern := "^" + strings.ReplaceAll(regexp.QuoteMeta(part), `\*`, ".*")
	re := regexp.MustCompile(pattern)

	out := map[string]any{}
	for k, v := range cur {
		if re.MatchString(k) {
			out[k] = v
		}
	}
	return Result{Values: out, Found: true}
}

// reverseMatch finds mapping keys that the requested segment contains as
// a substring. With several candidates the lexicographically greatest one
// is chosen; the ordering is a documented heuristic kept for
// compatibility, not a version-precedence guarantee.
func reverseMatch(cur map[string]any, segment string) (string, bool) {
	var matches []string
	for k := range cur {
		if strings.Contains(segment, k) {
			matches = append(matches, k)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches[0], true
}

// IsPackageNode reports whether a mapping structurally looks like a
// package manifest. The check is a pure predicate over the key set.
func IsPackageNode(m map[string]any) bool {
	_, hasDepends := m["depends"]
	_, hasFrom := m["from"]
	return hasDepends || hasFrom
}
