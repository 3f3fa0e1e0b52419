// SPDX-License-Identifier: MPL-2.0

// Package jarpack turns artifact identities and package manifests from a
// loaded jars document into concrete download URLs, display names, and
// fully-materialized packages. Resolution is synchronous and side-effect
// free: the same identity against the same tree always yields the same
// result.
package jarpack

import (
	"sort"

	"miner-cli/pkg/jarsfile"
)

type (
	// Resolver resolves artifacts and packages against one jars document.
	// It holds no mutable state; a single Resolver is safe to reuse for
	// any number of resolutions.
	Resolver struct {
		tree        *jarsfile.Tree
		gameVersion jarsfile.Version
	}

	// Option configures a Resolver during construction.
	Option func(*Resolver)
)

// WithGameVersion sets the global fallback version used when an identity
// carries no version of its own.
func WithGameVersion(v jarsfile.Version) Option {
	return func(r *Resolver) { r.gameVersion = v }
}

// NewResolver builds a Resolver over a loaded jars document.
func NewResolver(tree *jarsfile.Tree, opts ...Option) *Resolver {
	r := &Resolver{tree: tree, gameVersion: jarsfile.Unset()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Definitions returns the raw URL template(s) configured for the
// identity under jars.uri.definitions. The identity name resolves as a
// single key so dotted qualifiers reverse-match whole definition keys.
// The reverse lookup may legally produce several candidates; callers
// pick per the uniform-mapping rules.
func (r *Resolver) Definitions(jar jarsfile.JarFile) (map[string]string, error) {
	res, err := r.tree.ResolveKey("jars.uri.definitions", jar.Name)
	if err != nil {
		return nil, err
	}
	return stringValues(res.Values), nil
}

// Names returns the display name(s) configured for the identity under
// jars.uri.special.names, each run through the template engine. A missing
// entry yields an empty mapping, not an error.
func (r *Resolver) Names(jar jarsfile.JarFile) (map[string]string, error) {
	res, err := r.tree.ResolveKeyDefault("jars.uri.special.names", jar.Name, map[string]any{})
	if err != nil {
		return nil, err
	}

	out := map[string]string{}
	for key, v := range stringValues(res.Values) {
		expanded, err := r.expandTemplate(v, jar)
		if err != nil {
			return nil, err
		}
		out[key] = expanded
	}
	return out, nil
}

// URLs constructs the download URL(s) for the identity. A wildcard name
// expands to every matching configured name and returns the union of the
// per-name results; a concrete name yields a single-entry mapping.
func (r *Resolver) URLs(jar jarsfile.JarFile) (map[string]string, error) {
	if jar.HasWildcard() {
		res, err := r.tree.ResolveKey("jars.uri.special.names", jar.Name)
		if err != nil {
			return nil, err
		}

		out := map[string]string{}
		for name := range res.Values {
			sub := jarsfile.NewJarFile(name, jar.Version, jar.Build, jar.Service)
			urls, err := r.URLs(sub)
			if err != nil {
				return nil, err
			}
			u, ok := urls[name]
			if !ok {
				return nil, &jarsfile.KeyError{Segment: name, Parent: "jars.uri.definitions"}
			}
			out[name] = u
		}
		return out, nil
	}

	defs, err := r.Definitions(jar)
	if err != nil {
		return nil, err
	}
	tmpl, ok := pickDefinition(defs, jar.Name)
	if !ok {
		return nil, &jarsfile.KeyError{Segment: jar.Name, Parent: "jars.uri.definitions"}
	}

	url, err := r.expandTemplate(tmpl, jar)
	if err != nil {
		return nil, err
	}
	return map[string]string{jar.Name: url}, nil
}

// Single resolves the one URL and one display name for a non-wildcard
// identity. Two or more distinct candidate templates or display names is
// a configuration authoring error reported as *AmbiguousResultError; the
// engine never silently picks. The returned name is empty when no
// display name is configured.
func (r *Resolver) Single(jar jarsfile.JarFile) (url, name string, err error) {
	defs, err := r.Definitions(jar)
	if err != nil {
		return "", "", err
	}
	if vals := distinctValues(defs); len(vals) > 1 {
		return "", "", &AmbiguousResultError{Jar: jar.String(), What: "urls", Values: vals}
	}

	names, err := r.Names(jar)
	if err != nil {
		return "", "", err
	}
	if vals := distinctValues(names); len(vals) > 1 {
		return "", "", &AmbiguousResultError{Jar: jar.String(), What: "names", Values: vals}
	}
	for _, v := range names {
		name = v
	}

	urls, err := r.URLs(jar)
	if err != nil {
		return "", "", err
	}
	return urls[jar.Name], name, nil
}

// stringValues filters a lookup mapping down to its string entries. A
// value that is itself a mapping contributes its string entries one level
// deep: the definitions and names namespaces may hold several candidates
// under one key, and hosts may be keyed further by qualifier.
func stringValues(values map[string]any) map[string]string {
	out := map[string]string{}
	for k, v := range values {
		switch s := v.(type) {
		case string:
			out[k] = s
		case map[string]any:
			for sk, sv := range s {
				if ss, ok := sv.(string); ok {
					out[sk] = ss
				}
			}
		}
	}
	return out
}

// distinctValues returns the sorted set of distinct values in a mapping.
func distinctValues(m map[string]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range m {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// pickDefinition chooses a template from possibly-ambiguous candidates:
// the exact identity key when present, else the smallest key.
func pickDefinition(defs map[string]string, prefer string) (string, bool) {
	if v, ok := defs[prefer]; ok {
		return v, true
	}
	keys := make([]string, 0, len(defs))
	for k := range defs {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return defs[keys[0]], true
}
