// SPDX-License-Identifier: MPL-2.0

package jarpack

import (
	"fmt"
	"slices"
	"strings"

	"miner-cli/pkg/jarsfile"
)

// packageKeys is the closed set of keys a package manifest table may
// carry; mappings with any other key are not manifests.
var packageKeys = map[string]bool{
	"depends":       true,
	"from":          true,
	"service":       true,
	"service_port":  true,
	"service_host":  true,
	"rcon_port":     true,
	"rcon_password": true,
}

type (
	// Package is a fully-materialized package manifest: a named bundle of
	// artifacts plus the network/RCON settings inherited through
	// from-package references. Once built it is detached from the config
	// tree and safe to hand to download, backup and shell collaborators.
	Package struct {
		Name         string
		FromPackages []*Package
		Depends      []jarsfile.JarFile
		Service      jarsfile.ServiceKind
		ServicePort  int
		ServiceHost  string
		RCONPort     int
		RCONPassword string
	}
)

// Packages resolves the package manifest(s) configured for the identity
// under jars.packages.<name>, optionally qualified by the identity's
// version with dots replaced by underscores. Mappings carrying keys
// outside the manifest vocabulary are skipped; a lookup that degraded to
// a whole-package mapping (the resolver's escape hatch) is built as a
// single manifest named after the identity.
func (r *Resolver) Packages(jar jarsfile.JarFile) (map[string]*Package, error) {
	path := "jars.packages." + jar.Name
	if jar.Version.IsSet() {
		path += "." + jar.Version.Underscored()
	}

	res, err := r.tree.Resolve(path)
	if err != nil {
		return nil, err
	}

	out := map[string]*Package{}
	if jarsfile.IsPackageNode(res.Values) {
		pkg, err := r.buildPackage(jar.Name, res.Values, nil)
		if err != nil {
			return nil, err
		}
		out[jar.Name] = pkg
		return out, nil
	}

	for name, v := range res.Values {
		manifest, ok := v.(map[string]any)
		if !ok || hasForeignKeys(manifest) {
			continue
		}
		pkg, err := r.buildPackage(name, manifest, nil)
		if err != nil {
			return nil, err
		}
		out[name] = pkg
	}
	return out, nil
}

// Package builds a single manifest from its raw mapping.
func (r *Resolver) Package(name string, raw map[string]any) (*Package, error) {
	return r.buildPackage(name, raw, nil)
}

// buildPackage materializes one manifest: its own dependencies, then the
// recursively built from-packages, then the merge. The building chain
// tracks in-progress manifests to guard against from-package cycles in
// misconfigured documents.
func (r *Resolver) buildPackage(name string, raw map[string]any, building []string) (*Package, error) {
	if slices.Contains(building, name) {
		return nil, &CyclicInheritanceError{Chain: append(slices.Clone(building), name)}
	}
	building = append(building, name)

	pkg := &Package{
		Name:        name,
		ServiceHost: stringField(raw, "service_host"),
		ServicePort: intField(raw, "service_port"),
		RCONPort:    intField(raw, "rcon_port"),
	}
	pkg.RCONPassword = stringField(raw, "rcon_password")

	if svc := stringField(raw, "service"); svc != "" {
		kind, err := jarsfile.ParseServiceKind(svc, "")
		if err != nil {
			return nil, err
		}
		pkg.Service = kind
	}

	own, err := r.buildDepends(name, raw["depends"])
	if err != nil {
		return nil, err
	}

	fromPkgs, err := r.buildFromPackages(name, raw["from"], building)
	if err != nil {
		return nil, err
	}
	pkg.FromPackages = fromPkgs

	// Merge: dependency set is the union of own plus inherited, in
	// inheritance order, deduplicated by identity tuple. Scalars are
	// first-non-null-wins with the package's own value ranked first.
	seen := map[string]bool{}
	for _, d := range own {
		if !seen[d.Key()] {
			seen[d.Key()] = true
			pkg.Depends = append(pkg.Depends, d)
		}
	}
	for _, parent := range fromPkgs {
		for _, d := range parent.Depends {
			if !seen[d.Key()] {
				seen[d.Key()] = true
				pkg.Depends = append(pkg.Depends, d)
			}
		}
		if pkg.Service == "" {
			pkg.Service = parent.Service
		}
		if pkg.ServicePort == 0 {
			pkg.ServicePort = parent.ServicePort
		}
		if pkg.ServiceHost == "" {
			pkg.ServiceHost = parent.ServiceHost
		}
		if pkg.RCONPort == 0 {
			pkg.RCONPort = parent.RCONPort
		}
		if pkg.RCONPassword == "" {
			pkg.RCONPassword = parent.RCONPassword
		}
	}

	return pkg, nil
}

// buildDepends materializes the depends list. Entries are either inline
// tables or bare strings re-resolved through the path resolver.
func (r *Resolver) buildDepends(manifest string, raw any) ([]jarsfile.JarFile, error) {
	entries, err := listEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: depends: %w", manifest, err)
	}

	out := make([]jarsfile.JarFile, 0, len(entries))
	for _, entry := range entries {
		m, name, err := r.manifestEntry(manifest, entry)
		if err != nil {
			return nil, err
		}
		jar, err := jarFromMapping(manifest, name, m)
		if err != nil {
			return nil, err
		}
		out = append(out, jar)
	}
	return out, nil
}

// buildFromPackages materializes the from list as fully resolved
// packages, never raw strings.
func (r *Resolver) buildFromPackages(manifest string, raw any, building []string) ([]*Package, error) {
	entries, err := listEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: from: %w", manifest, err)
	}

	out := make([]*Package, 0, len(entries))
	for _, entry := range entries {
		m, name, err := r.manifestEntry(manifest, entry)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, &MissingFieldError{Manifest: manifest, Field: "name"}
		}
		pkg, err := r.buildPackage(name, m, building)
		if err != nil {
			return nil, err
		}
		out = append(out, pkg)
	}
	return out, nil
}

// manifestEntry normalizes one depends/from entry to a mapping plus its
// name. A bare string is re-resolved through the path resolver; the
// resolved mapping is named after the reference string itself.
func (r *Resolver) manifestEntry(manifest string, entry any) (map[string]any, string, error) {
	switch v := entry.(type) {
	case string:
		res, err := r.tree.Resolve(v)
		if err != nil {
			return nil, "", err
		}
		m, ok := pickMapping(res.Values, lastSegment(v))
		if !ok {
			return nil, "", &MissingFieldError{Manifest: manifest, Field: "name"}
		}
		return m, v, nil
	case map[string]any:
		name, _ := v["name"].(string)
		if name == "" {
			return nil, "", &MissingFieldError{Manifest: manifest, Field: "name"}
		}
		return v, name, nil
	default:
		return nil, "", &MissingFieldError{Manifest: manifest, Field: "name"}
	}
}

// jarFromMapping builds a dependency identity from a manifest mapping.
func jarFromMapping(manifest, name string, m map[string]any) (jarsfile.JarFile, error) {
	if n := stringField(m, "name"); n != "" {
		name = n
	}
	if name == "" {
		return jarsfile.JarFile{}, &MissingFieldError{Manifest: manifest, Field: "name"}
	}

	version, err := jarsfile.ParseVersion(stringField(m, "version"))
	if err != nil {
		return jarsfile.JarFile{}, err
	}

	kind, err := jarsfile.ParseServiceKind(stringField(m, "service"), jarsfile.ServicePlugin)
	if err != nil {
		return jarsfile.JarFile{}, err
	}

	return jarsfile.NewJarFile(name, version, buildField(m), kind), nil
}

// listEntries normalizes a scalar-or-list manifest value to a slice. nil
// yields an empty list; a lone string or table is a one-element list.
func listEntries(raw any) ([]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case string, map[string]any:
		return []any{v}, nil
	default:
		return nil, fmt.Errorf("unsupported manifest entry type %T", raw)
	}
}

// pickMapping selects a mapping from a lookup result, preferring the
// entry keyed by prefer, else a lone mapping value.
func pickMapping(values map[string]any, prefer string) (map[string]any, bool) {
	if m, ok := values[prefer].(map[string]any); ok {
		return m, true
	}
	if len(values) == 1 {
		for _, v := range values {
			if m, ok := v.(map[string]any); ok {
				return m, true
			}
		}
	}
	return nil, false
}

// hasForeignKeys reports whether a mapping carries keys outside the
// package manifest vocabulary.
func hasForeignKeys(m map[string]any) bool {
	for k := range m {
		if !packageKeys[k] {
			return true
		}
	}
	return false
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// intField reads a numeric manifest field; TOML integers decode as int64.
func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// buildField reads the build identifier, which authors write as either a
// string or a bare integer.
func buildField(m map[string]any) string {
	switch v := m["build"].(type) {
	case string:
		return v
	case int64:
		return fmt.Sprintf("%d", v)
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}
