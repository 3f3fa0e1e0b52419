// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle
// errors appropriately, reducing boilerplate around fixture setup.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// MustWriteFile writes content to path, creating parent directories as
// needed. The test fails immediately if the operation fails.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustMkdirAll creates a directory along with any necessary parents.
// The test fails immediately if the operation fails.
func MustMkdirAll(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// WriteJarsFile writes a jars.toml document under dir and returns its
// path.
func WriteJarsFile(t testing.TB, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "jars.toml")
	MustWriteFile(t, path, content)
	return path
}

// ServerFixture creates a minimal paper server directory under exeRoot
// with a server.properties carrying the given level name.
func ServerFixture(t testing.TB, exeRoot, name, levelName string) string {
	t.Helper()
	dir := filepath.Join(exeRoot, name)
	MustWriteFile(t, filepath.Join(dir, "server.properties"), "level-name="+levelName+"\n")
	MustMkdirAll(t, filepath.Join(dir, levelName))
	return dir
}
