// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"miner-cli/internal/archive"
	"miner-cli/internal/config"
	"miner-cli/internal/issue"
	"miner-cli/pkg/jarsfile"

	"github.com/spf13/cobra"
)

var (
	backupService  string
	backupVersion  string
	backupPreserve bool

	backupCmd = &cobra.Command{
		Use:   "backup <name>...",
		Short: "Create a backup of a service",
		Long: `Archive the world and configuration of one or more services into the
backup root. The current backup is always the "0" archive; --preserve
renames the previous one to a stamped name instead of overwriting it.

A name of "all" or one containing "*" expands through the configured
packages, archiving every matching service.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBackup,
	}
)

func init() {
	backupCmd.Flags().StringVarP(&backupService, "service", "s", "", "only archive services of this kind (paper, velocity)")
	backupCmd.Flags().StringVarP(&backupVersion, "mc-version", "V", "", "game version (default from config)")
	backupCmd.Flags().BoolVar(&backupPreserve, "preserve", false, "keep the previous backup under a stamped name")
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return fail(cmd, err)
	}

	filter, err := jarsfile.ParseServiceKind(backupService, "")
	if err != nil {
		return fail(cmd, err)
	}

	version := effectiveVersion(backupVersion, cfg)
	archiver := archive.New(cfg.BakRoot.String())

	for _, name := range args {
		if name == "all" || strings.Contains(name, "*") {
			if err := backupMatching(cfg, archiver, name, version, filter); err != nil {
				return fail(cmd, err)
			}
			continue
		}

		service := filter
		if service == "" {
			service = jarsfile.ServicePaper
		}
		if err := backupOne(cfg.ExeRoot.String(), archiver, name, version, service); err != nil {
			return fail(cmd, issue.NewErrorContext().
				WithOperation("archive service").
				WithResource(name).
				WithSuggestion("Check that the server directory exists and is readable").
				Wrap(err).
				BuildError())
		}
	}
	return nil
}

// backupMatching expands a wildcard or "all" name through the configured
// packages and archives every service whose kind passes the filter. An
// empty filter admits every server kind.
func backupMatching(cfg *config.Config, archiver *archive.Archiver, name, version string, filter jarsfile.ServiceKind) error {
	resolver, err := openResolver(cfg, version)
	if err != nil {
		return err
	}

	pkgName := name
	if name == "all" {
		pkgName = "*"
	}
	pkgs, err := resolver.Packages(jarsfile.NewJarFile(pkgName, jarsfile.Unset(), "", ""))
	if err != nil {
		return err
	}

	names := make([]string, 0, len(pkgs))
	for n := range pkgs {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		service := pkgs[n].Service
		if filter != "" && service != filter {
			continue
		}
		if filter == "" && !service.IsServer() {
			continue
		}
		if err := backupOne(cfg.ExeRoot.String(), archiver, n, version, service); err != nil {
			return err
		}
	}
	return nil
}

// backupOne archives a single service directory. Services with no
// directory or no include list (proxies) are skipped quietly.
func backupOne(exeRoot string, archiver *archive.Archiver, name, version string, service jarsfile.ServiceKind) error {
	serverDir := filepath.Join(exeRoot, name)
	if info, err := os.Stat(serverDir); err != nil || !info.IsDir() {
		return nil
	}

	include, err := archive.IncludeList(serverDir, service)
	if err != nil {
		return err
	}
	if len(include) == 0 {
		return nil
	}

	// Entries are stored relative to the working directory so restore
	// puts them back in place.
	if _, err := archiver.Write(name, version, ".", include, backupPreserve); err != nil {
		return fmt.Errorf("archiving %s: %w", name, err)
	}
	return nil
}
