// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultGameVersion is the game version assumed when neither the
	// command line nor the configuration names one.
	DefaultGameVersion = "1.20.1"
	// DefaultRCONHost is the remote console host assumed when no package
	// manifest or flag names one.
	DefaultRCONHost = "localhost"
	// DefaultRCONPort is the stock Minecraft remote console port.
	DefaultRCONPort = 25575
)

var (
	// ErrInvalidRootPath is the sentinel error wrapped by InvalidRootPathError.
	ErrInvalidRootPath = errors.New("invalid root path")
	// ErrInvalidRCONConfig is the sentinel error wrapped by InvalidRCONConfigError.
	ErrInvalidRCONConfig = errors.New("invalid rcon config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// RootPath is a filesystem path to one of the managed directory
	// roots (jar cache, server directories, backups). The zero value is
	// invalid; defaults are filled in by DefaultConfig.
	RootPath string

	// InvalidRootPathError is returned when a RootPath value is empty or
	// whitespace-only. It wraps ErrInvalidRootPath for errors.Is().
	InvalidRootPathError struct {
		Field string
		Value RootPath
	}

	// InvalidRCONConfigError is returned when an RCONConfig has invalid
	// fields. It wraps ErrInvalidRCONConfig for errors.Is() and collects
	// field-level validation errors.
	InvalidRCONConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() and collects field-level
	// validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// JarRoot is where downloaded jars are cached, one subdirectory
		// per game version.
		JarRoot RootPath `mapstructure:"jar_root"`
		// ExeRoot is where server directories live, one per service.
		ExeRoot RootPath `mapstructure:"exe_root"`
		// BakRoot is where backup archives are written.
		BakRoot RootPath `mapstructure:"bak_root"`
		// GameVersion is the default game version for resolution and
		// cache layout when the command line does not override it.
		GameVersion string `mapstructure:"game_version"`
		// RCON configures remote console connection defaults.
		RCON RCONConfig `mapstructure:"rcon"`
		// UI configures the user interface.
		UI UIConfig `mapstructure:"ui"`
	}

	// RCONConfig configures remote console connection defaults. Package
	// manifests and command-line flags take precedence over these.
	RCONConfig struct {
		// Host is the remote console host.
		Host string `mapstructure:"host"`
		// Port is the remote console port.
		Port int `mapstructure:"port"`
		// Password is the remote console password. Empty means prompt.
		Password string `mapstructure:"password"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables verbose output, including full error chains.
		Verbose bool `mapstructure:"verbose"`
	}
)

// String returns the string representation of the RootPath.
func (p RootPath) String() string { return string(p) }

// IsValid returns whether the RootPath is valid for the named field.
// A valid path must be non-empty and not whitespace-only.
func (p RootPath) IsValid(field string) (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidRootPathError{Field: field, Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRootPathError.
func (e *InvalidRootPathError) Error() string {
	return fmt.Sprintf("invalid %s %q: must be non-empty", e.Field, e.Value)
}

// Unwrap returns ErrInvalidRootPath for errors.Is() compatibility.
func (e *InvalidRootPathError) Unwrap() error { return ErrInvalidRootPath }

// IsValid returns whether the RCONConfig has valid fields. Host and
// password need no validation; an empty host falls back to the default
// at connect time.
func (c RCONConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("rcon port %d out of range", c.Port))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidRCONConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRCONConfigError.
func (e *InvalidRCONConfigError) Error() string {
	return fmt.Sprintf("invalid rcon config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidRCONConfig for errors.Is() compatibility.
func (e *InvalidRCONConfigError) Unwrap() error { return ErrInvalidRCONConfig }

// IsValid returns whether the Config has valid fields. It delegates to
// each root path and to RCON.IsValid(); UI has only bool fields and
// needs no validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.JarRoot.IsValid("jar_root"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.ExeRoot.IsValid("exe_root"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.BakRoot.IsValid("bak_root"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.RCON.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration. Roots are relative to
// the working directory, matching the conventional service layout.
func DefaultConfig() *Config {
	return &Config{
		JarRoot:     "jars",
		ExeRoot:     "servers",
		BakRoot:     "bak",
		GameVersion: DefaultGameVersion,
		RCON: RCONConfig{
			Host:     DefaultRCONHost,
			Port:     DefaultRCONPort,
			Password: "",
		},
		UI: UIConfig{
			Verbose: false,
		},
	}
}
