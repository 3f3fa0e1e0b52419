// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"miner-cli/internal/archive"
	"miner-cli/internal/issue"

	"github.com/spf13/cobra"
)

var (
	restoreVersion string
	restoreTag     string

	restoreCmd = &cobra.Command{
		Use:   "restore <name>",
		Short: "Restore a service from backup",
		Long: `Extract a service backup archive back under the working directory.
Without --tag the current ("0") archive is restored; pass the stamp of
a preserved archive to restore an older state.`,
		Args: cobra.ExactArgs(1),
		RunE: runRestore,
	}
)

func init() {
	restoreCmd.Flags().StringVarP(&restoreVersion, "mc-version", "V", "", "game version (default from config)")
	restoreCmd.Flags().StringVarP(&restoreTag, "tag", "t", "", "stamp of the archive to restore (default current)")
}

func runRestore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return fail(cmd, err)
	}

	name := args[0]
	version := effectiveVersion(restoreVersion, cfg)

	archiver := archive.New(cfg.BakRoot.String())
	if err := archiver.Restore(name, version, restoreTag, "."); err != nil {
		return fail(cmd, issue.NewErrorContext().
			WithOperation("restore service").
			WithResource(name).
			WithSuggestion("Check the backup root for the archive name").
			WithSuggestion("List stamped archives with 'ls' and pass one via --tag").
			Wrap(err).
			BuildError())
	}
	return nil
}
