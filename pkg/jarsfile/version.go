// SPDX-License-Identifier: MPL-2.0

package jarsfile

import (
	"strconv"
	"strings"
)

type (
	// Version is a three-part game or artifact version. Patch may carry a
	// non-numeric pre-release tag (e.g. "1.19.2-rc1" splits into patch
	// "2-rc1"). A Version with Major < 0 is unset; hand-authored config
	// frequently omits the patch, in which case Patch is empty and the
	// rendered form has two components ("1.20").
	//
	// Versions are immutable values: construct with ParseVersion or
	// NewVersion and never mutate fields after that.
	Version struct {
		Major int
		Minor int
		Patch string
	}
)

// Unset returns the unset Version sentinel value.
func Unset() Version { return Version{Major: -1} }

// NewVersion builds a Version from explicit components.
func NewVersion(major, minor int, patch string) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// ParseVersion parses a dotted version string. An empty string yields the
// unset Version. Anything past the second dot is kept verbatim as the
// patch component, so pre-release tags survive a round trip.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Unset(), nil
	}

	parts := strings.SplitN(s, ".", 3)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Unset(), &InvalidVersionError{Value: s}
	}

	v := Version{Major: major}
	if len(parts) > 1 {
		minor, err := strconv.Atoi(parts[1])
		if err != nil {
			return Unset(), &InvalidVersionError{Value: s}
		}
		v.Minor = minor
	}
	if len(parts) > 2 {
		v.Patch = parts[2]
	}
	return v, nil
}

// MustParseVersion is ParseVersion for known-good literals; it panics on
// malformed input. Intended for tests and compile-time constants.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsSet reports whether the version carries a real value.
func (v Version) IsSet() bool { return v.Major >= 0 }

// String renders the version with dot-joined components. The patch is
// omitted when empty so "1.20" survives a parse/render round trip.
func (v Version) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(v.Major))
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(v.Minor))
	if v.Patch != "" {
		b.WriteByte('.')
		b.WriteString(v.Patch)
	}
	return b.String()
}

// Underscored renders the version with "_" separators, the form used for
// version-qualified package table keys in the jars document.
func (v Version) Underscored() string {
	return strings.ReplaceAll(v.String(), ".", "_")
}

// Compare orders versions component-wise. Numeric patches compare
// numerically; once either side is non-numeric the comparison falls back
// to plain string ordering. Returns -1, 0, or 1.
func (v Version) Compare(o Version) int {
	if c := compareInt(v.Major, o.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, o.Minor); c != 0 {
		return c
	}

	vp, verr := strconv.Atoi(v.Patch)
	op, oerr := strconv.Atoi(o.Patch)
	if verr == nil && oerr == nil {
		return compareInt(vp, op)
	}
	return strings.Compare(v.Patch, o.Patch)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
