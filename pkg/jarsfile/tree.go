// SPDX-License-Identifier: MPL-2.0

// Package jarsfile loads and resolves the hand-authored jars document
// (jars.toml): the configuration tree describing JAR artifact URL
// templates, host/name overrides, and package manifests.
//
// The document has a conventional top-level namespace layout:
//
//	jars.uri.definitions.<name>    URL templates
//	jars.uri.special.hosts.<name>  host overrides (possibly qualified)
//	jars.uri.special.names.<name>  display-name overrides
//	jars.packages.<name>[.<ver>]   package manifests
package jarsfile

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

type (
	// Tree holds one fully parsed jars document. The whole document is
	// read eagerly (files are small and hand-authored) and the tree is
	// read-only for the lifetime of a resolution.
	Tree struct {
		root map[string]any
		path string
	}
)

// Load reads and parses the jars document at path. A missing file or
// malformed TOML yields a *LoadError.
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	root := map[string]any{}
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	return &Tree{root: root, path: path}, nil
}

// Parse parses an in-memory jars document.
func Parse(data []byte) (*Tree, error) {
	root := map[string]any{}
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, &LoadError{Path: "<memory>", Cause: err}
	}
	return &Tree{root: root}, nil
}

// Path returns the file the tree was loaded from, or "" for in-memory
// trees.
func (t *Tree) Path() string { return t.path }
