// SPDX-License-Identifier: MPL-2.0

package jarsfile

import "strings"

// ServiceKind is the role an artifact plays at runtime.
type ServiceKind string

const (
	// ServicePaper is a Paper game server process.
	ServicePaper ServiceKind = "paper"
	// ServiceVelocity is a Velocity proxy process.
	ServiceVelocity ServiceKind = "velocity"
	// ServicePlugin is a plugin JAR loaded by a server process.
	ServicePlugin ServiceKind = "plugin"
)

// ParseServiceKind parses a service kind from user or config input.
// The empty string resolves to the supplied fallback.
func ParseServiceKind(s string, fallback ServiceKind) (ServiceKind, error) {
	if s == "" {
		return fallback, nil
	}
	switch k := ServiceKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ServicePaper, ServiceVelocity, ServicePlugin:
		return k, nil
	default:
		return "", &InvalidServiceKindError{Value: s}
	}
}

// IsServer reports whether the kind runs as its own process (server or
// proxy) rather than being loaded into one.
func (k ServiceKind) IsServer() bool {
	return k == ServicePaper || k == ServiceVelocity
}

// String returns the lowercase kind name used in config keys.
func (k ServiceKind) String() string { return string(k) }
