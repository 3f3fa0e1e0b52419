// SPDX-License-Identifier: MPL-2.0

package jarpack

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic detection with errors.Is.
var (
	// ErrTemplateVariable is the sentinel wrapped by TemplateVariableError.
	ErrTemplateVariable = errors.New("unresolved template variable")
	// ErrAmbiguousResult is the sentinel wrapped by AmbiguousResultError.
	ErrAmbiguousResult = errors.New("ambiguous lookup result")
	// ErrMissingField is the sentinel wrapped by MissingFieldError.
	ErrMissingField = errors.New("missing manifest field")
	// ErrCyclicInheritance is the sentinel wrapped by CyclicInheritanceError.
	ErrCyclicInheritance = errors.New("cyclic package inheritance")
)

type (
	// TemplateVariableError is returned when a template placeholder cannot
	// be bound for an artifact. Variable is the placeholder name (for
	// qualified placeholders, the qualifier that failed to resolve).
	TemplateVariableError struct {
		Variable string
		Jar      string
	}

	// AmbiguousResultError is returned when a lookup expected to be
	// singular produced multiple candidates, a configuration authoring
	// error that is reported rather than guessed around.
	AmbiguousResultError struct {
		Jar    string
		What   string
		Values []string
	}

	// MissingFieldError is returned when a dependency or inherited-package
	// reference lacks a required field.
	MissingFieldError struct {
		Manifest string
		Field    string
	}

	// CyclicInheritanceError is returned when from_packages references
	// form a cycle. Chain lists the manifest names in visit order, ending
	// with the repeated one.
	CyclicInheritanceError struct {
		Chain []string
	}
)

func (e *TemplateVariableError) Error() string {
	return fmt.Sprintf("%s: %q is required to build property", e.Jar, e.Variable)
}

func (e *TemplateVariableError) Unwrap() error { return ErrTemplateVariable }

func (e *AmbiguousResultError) Error() string {
	return fmt.Sprintf("found multiple %s associated with %s: %s",
		e.What, e.Jar, strings.Join(e.Values, ", "))
}

func (e *AmbiguousResultError) Unwrap() error { return ErrAmbiguousResult }

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %q is required to build package", e.Manifest, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

func (e *CyclicInheritanceError) Error() string {
	return fmt.Sprintf("package inheritance cycle: %s", strings.Join(e.Chain, " -> "))
}

func (e *CyclicInheritanceError) Unwrap() error { return ErrCyclicInheritance }
