// SPDX-License-Identifier: MPL-2.0

package jarsfile

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic detection with errors.Is.
var (
	// ErrConfigLoad is the sentinel wrapped by LoadError.
	ErrConfigLoad = errors.New("config load failed")
	// ErrConfigKey is the sentinel wrapped by KeyError.
	ErrConfigKey = errors.New("config key not found")
	// ErrInvalidVersion is the sentinel wrapped by InvalidVersionError.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrInvalidServiceKind is the sentinel wrapped by InvalidServiceKindError.
	ErrInvalidServiceKind = errors.New("invalid service kind")
)

type (
	// LoadError is returned when the jars document is missing or is not
	// well-formed TOML. It aborts the whole invocation.
	LoadError struct {
		Path  string
		Cause error
	}

	// KeyError is returned when a required dotted path has no value and
	// no default was supplied. Segment is the part that could not be
	// found; Parent is the dotted path of the mapping it was searched in.
	KeyError struct {
		Segment string
		Parent  string
	}

	// InvalidVersionError is returned when a version string cannot be
	// parsed into numeric major/minor components.
	InvalidVersionError struct {
		Value string
	}

	// InvalidServiceKindError is returned when a service kind string is
	// not one of the closed enumeration values.
	InvalidServiceKindError struct {
		Value string
	}
)

func (e *LoadError) Error() string {
	return fmt.Sprintf("load jars config %q: %v", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() []error { return []error{ErrConfigLoad, e.Cause} }

func (e *KeyError) Error() string {
	return fmt.Sprintf("%q does not exist in %q", e.Segment, e.Parent)
}

func (e *KeyError) Unwrap() error { return ErrConfigKey }

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q", e.Value)
}

func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

func (e *InvalidServiceKindError) Error() string {
	return fmt.Sprintf("invalid service kind %q", e.Value)
}

func (e *InvalidServiceKindError) Unwrap() error { return ErrInvalidServiceKind }
