// SPDX-License-Identifier: MPL-2.0

package jarsfile

import (
	"fmt"
	"strings"
)

type (
	// JarFile identifies a single downloadable JAR artifact. Name may
	// contain a "*" wildcard meaning "every matching artifact". Build is
	// the empty string when unset, never a sentinel, so identities feed
	// template substitution uniformly.
	//
	// JarFile is a detached value: once constructed it holds no reference
	// to the configuration it was resolved against.
	JarFile struct {
		Build   string
		Name    string
		Version Version
		Service ServiceKind
	}
)

// NewJarFile constructs a JarFile identity. An empty service defaults to
// ServicePlugin, matching how bare dependency entries behave.
func NewJarFile(name string, version Version, build string, service ServiceKind) JarFile {
	if service == "" {
		service = ServicePlugin
	}
	return JarFile{Build: build, Name: name, Version: version, Service: service}
}

// HasWildcard reports whether the name requests multi-artifact resolution.
func (j JarFile) HasWildcard() bool { return strings.Contains(j.Name, "*") }

// Key returns the identity tuple used for dependency-set deduplication.
func (j JarFile) Key() string {
	return j.Name + "@" + j.Version.String() + "+" + j.Build
}

// String renders the identity for human-facing output.
func (j JarFile) String() string {
	sub := j.Version.String()
	if j.Build != "" {
		sub = fmt.Sprintf("version=%q build=%q", j.Version.String(), j.Build)
	}
	return fmt.Sprintf("JarFile[%s:%s](%s)", j.Name, j.Service, sub)
}
