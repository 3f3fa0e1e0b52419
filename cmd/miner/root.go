// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for miner.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"miner-cli/internal/config"
	"miner-cli/internal/issue"
	"miner-cli/pkg/jarpack"
	"miner-cli/pkg/jarsfile"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "miner",
		Short: "Manage Minecraft services and their jars",
		Long: TitleStyle.Render("miner") + SubtitleStyle.Render(" - Manage Minecraft services and their jars") + `

miner starts, backs up and restores Minecraft servers and proxies, and
resolves, downloads and links the jar artifacts they depend on. Jars
and packages are described in a jars.toml document under the jar root.

` + SubtitleStyle.Render("Examples:") + `
  miner start survival            Start the 'survival' server
  miner backup survival           Archive the server's world and config
  miner jars get paper -B 196     Download one jar
  miner jars getpkg survival      Download every jar a package needs
  miner shell -P survival list    Run a console command over RCON`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/miner/config.toml)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(jarsCmd)
	rootCmd.AddCommand(shellCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	// fang overrides rootCmd.Version, so the version goes through
	// fang.WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// loadConfig loads the application configuration, honoring the --config
// flag, and folds config-file verbosity into the global flag.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return nil, err
	}
	if !verbose {
		verbose = cfg.UI.Verbose
	}
	return cfg, nil
}

// openResolver loads the jars document from the jar root and builds a
// resolver over it with the effective game version.
func openResolver(cfg *config.Config, gameVersion string) (*jarpack.Resolver, error) {
	path := filepath.Join(cfg.JarRoot.String(), "jars.toml")
	tree, err := jarsfile.Load(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load jars config").
			WithResource(path).
			WithSuggestion("Check that jars.toml exists under the jar root").
			WithSuggestion("Check that the file contains valid TOML").
			Wrap(err).
			BuildError()
	}

	ver, err := jarsfile.ParseVersion(gameVersion)
	if err != nil {
		return nil, err
	}
	return jarpack.NewResolver(tree, jarpack.WithGameVersion(ver)), nil
}

// effectiveVersion prefers the flag value over the configured default.
func effectiveVersion(flagValue string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.GameVersion
}

// formatErrorForDisplay formats an error for user display. ActionableError
// values render with suggestions; verbose mode shows the full chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// fail renders an error for display and signals a non-zero exit. Errors
// are printed here, in full, so cobra's own reporting is silenced.
func fail(cmd *cobra.Command, err error) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	return &ExitError{Code: 1}
}
