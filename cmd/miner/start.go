// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"miner-cli/internal/issue"
	"miner-cli/internal/launch"
	"miner-cli/pkg/jarsfile"

	"github.com/spf13/cobra"
)

var (
	startService string
	startVersion string
	startMemIni  string
	startMemMax  string

	startCmd = &cobra.Command{
		Use:   "start <name>",
		Short: "Start a service",
		Long: `Start a server or proxy service from its directory under the server
root. The service jar is located in the version cache; a missing build
part resolves to the first available build.`,
		Args: cobra.ExactArgs(1),
		RunE: runStart,
	}
)

func init() {
	startCmd.Flags().StringVarP(&startService, "service", "s", "", "service kind (paper, velocity)")
	startCmd.Flags().StringVarP(&startVersion, "mc-version", "V", "", "game version (default from config)")
	startCmd.Flags().StringVarP(&startMemIni, "mem-ini", "m", "", "initial java heap size (e.g. 1G)")
	startCmd.Flags().StringVarP(&startMemMax, "mem-max", "M", "", "maximum java heap size (e.g. 1G)")
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]

	cfg, err := loadConfig(ctx)
	if err != nil {
		return fail(cmd, err)
	}

	service, err := jarsfile.ParseServiceKind(startService, jarsfile.ServicePaper)
	if err != nil {
		return fail(cmd, err)
	}
	if !service.IsServer() {
		return fail(cmd, fmt.Errorf("service %q does not run as a process", service))
	}

	version := effectiveVersion(startVersion, cfg)

	// Paper jars are version-pinned; proxy jars resolve to whatever build
	// is cached.
	svcVersion := jarsfile.Unset()
	if service == jarsfile.ServicePaper {
		svcVersion, err = jarsfile.ParseVersion(version)
		if err != nil {
			return fail(cmd, err)
		}
	}

	jarPath, err := launch.JarPath(cfg.JarRoot.String(), version, service, svcVersion, "")
	if err != nil {
		return fail(cmd, issue.NewErrorContext().
			WithOperation("locate service jar").
			WithResource(name).
			WithSuggestion(fmt.Sprintf("Run 'miner jars get %s' to download the jar first", service)).
			Wrap(err).
			BuildError())
	}

	serverDir := filepath.Join(cfg.ExeRoot.String(), name)
	if err := os.MkdirAll(serverDir, 0o755); err != nil {
		return fail(cmd, fmt.Errorf("creating server directory: %w", err))
	}

	launcher, err := launch.New()
	if err != nil {
		return fail(cmd, issue.NewErrorContext().
			WithOperation("locate java").
			WithSuggestion("Install a JRE and make sure java is on PATH").
			Wrap(err).
			BuildError())
	}

	opts := launch.Options{Xms: startMemIni, Xmx: startMemMax}
	if err := launcher.Start(ctx, jarPath, serverDir, service, opts); err != nil {
		return fail(cmd, err)
	}
	return nil
}
