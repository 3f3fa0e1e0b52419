// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"fmt"
	"os"
	"path/filepath"
)

// Link hard-links a cached jar into a server's plugins directory. An
// artifact missing from the cache and an already-linked file are both
// skipped with a log line, not errors: package linking keeps going over
// the remaining dependencies.
func (c *Client) Link(version, name, serverDir string) error {
	src := filepath.Join(c.CacheDir(version), name)
	if !fileExists(src) {
		c.logger.Warn("not found in jar cache", "jar", name, "version", version)
		return nil
	}

	pluginDir := filepath.Join(serverDir, "plugins")
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		return fmt.Errorf("creating plugins dir: %w", err)
	}

	dst := filepath.Join(pluginDir, name)
	if fileExists(dst) {
		c.logger.Info("already linked", "jar", name, "server", serverDir)
		return nil
	}

	if err := os.Link(src, dst); err != nil {
		return fmt.Errorf("linking %s: %w", name, err)
	}
	c.logger.Info("linked", "jar", name, "server", serverDir)
	return nil
}
