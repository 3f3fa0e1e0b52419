// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"miner-cli/internal/config"
	"miner-cli/internal/fetch"
	"miner-cli/internal/issue"
	"miner-cli/pkg/jarpack"
	"miner-cli/pkg/jarsfile"

	"github.com/spf13/cobra"
)

var (
	jarsVersion      string
	jarsBuildVersion string
	jarsBuildID      string
	lnkpkgDownload   bool

	jarsCmd = &cobra.Command{
		Use:   "jars",
		Short: "Manage JAR files",
		Long: `Resolve, check, download and link the jar artifacts configured in the
jars document under the jar root.`,
	}

	jarsCheckCmd = &cobra.Command{
		Use:   "check <name>",
		Short: "Construct a download URL and test it against the host",
		Args:  cobra.ExactArgs(1),
		RunE:  runJarsCheck,
	}

	jarsGetCmd = &cobra.Command{
		Use:   "get <name>",
		Short: "Download a single JAR file",
		Args:  cobra.ExactArgs(1),
		RunE:  runJarsGet,
	}

	jarsGetpkgCmd = &cobra.Command{
		Use:   "getpkg <name>",
		Short: "Download a package of JAR files",
		Args:  cobra.ExactArgs(1),
		RunE:  runJarsGetpkg,
	}

	jarsChkpkgCmd = &cobra.Command{
		Use:   "chkpkg <name>",
		Short: "Show package information",
		Args:  cobra.ExactArgs(1),
		RunE:  runJarsChkpkg,
	}

	jarsLnkpkgCmd = &cobra.Command{
		Use:   "lnkpkg <name> <dst>",
		Short: "Link package plugins into a service directory",
		Args:  cobra.ExactArgs(2),
		RunE:  runJarsLnkpkg,
	}
)

func init() {
	for _, c := range []*cobra.Command{jarsCheckCmd, jarsGetCmd, jarsGetpkgCmd, jarsChkpkgCmd, jarsLnkpkgCmd} {
		c.Flags().StringVarP(&jarsVersion, "mc-version", "V", "", "game version (default from config)")
	}
	for _, c := range []*cobra.Command{jarsCheckCmd, jarsGetCmd} {
		c.Flags().StringVarP(&jarsBuildVersion, "build-version", "r", "", "artifact version when it differs from the game version")
		c.Flags().StringVarP(&jarsBuildID, "build-id", "B", "", "upstream build identifier")
	}
	jarsLnkpkgCmd.Flags().BoolVar(&lnkpkgDownload, "download", false, "download the package before linking")

	jarsCmd.AddCommand(jarsCheckCmd)
	jarsCmd.AddCommand(jarsGetCmd)
	jarsCmd.AddCommand(jarsGetpkgCmd)
	jarsCmd.AddCommand(jarsChkpkgCmd)
	jarsCmd.AddCommand(jarsLnkpkgCmd)
}

// jarsSetup loads the config and builds the resolver and download client
// every jars subcommand needs.
func jarsSetup(cmd *cobra.Command) (*config.Config, *jarpack.Resolver, *fetch.Client, string, error) {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return nil, nil, nil, "", err
	}

	version := effectiveVersion(jarsVersion, cfg)
	resolver, err := openResolver(cfg, version)
	if err != nil {
		return nil, nil, nil, "", err
	}

	client := fetch.NewClient(cfg.JarRoot.String(), fetch.WithUserAgent("miner/"+Version))
	return cfg, resolver, client, version, nil
}

// jarIdentity builds the artifact identity for the check/get commands.
// The artifact version is the --build-version when given, else the
// effective game version.
func jarIdentity(name, gameVersion string) (jarsfile.JarFile, error) {
	verStr := jarsBuildVersion
	if verStr == "" {
		verStr = gameVersion
	}
	ver, err := jarsfile.ParseVersion(verStr)
	if err != nil {
		return jarsfile.JarFile{}, err
	}
	return jarsfile.NewJarFile(name, ver, jarsBuildID, ""), nil
}

func runJarsCheck(cmd *cobra.Command, args []string) error {
	_, resolver, client, version, err := jarsSetup(cmd)
	if err != nil {
		return fail(cmd, err)
	}

	jar, err := jarIdentity(args[0], version)
	if err != nil {
		return fail(cmd, err)
	}

	urls, err := resolver.URLs(jar)
	if err != nil {
		return fail(cmd, err)
	}

	ok, err := client.Check(cmd.Context(), urls)
	if err != nil {
		return fail(cmd, err)
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), WarningStyle.Render("one or more download URLs are unavailable"))
		return &ExitError{Code: 1}
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("all download URLs are reachable"))
	return nil
}

func runJarsGet(cmd *cobra.Command, args []string) error {
	_, resolver, client, version, err := jarsSetup(cmd)
	if err != nil {
		return fail(cmd, err)
	}

	jar, err := jarIdentity(args[0], version)
	if err != nil {
		return fail(cmd, err)
	}

	if err := downloadJar(cmd.Context(), resolver, client, jar, version); err != nil {
		return fail(cmd, issue.NewErrorContext().
			WithOperation("download jar").
			WithResource(jar.Name).
			WithSuggestion(fmt.Sprintf("Run 'miner jars check %s' to verify the download URL", jar.Name)).
			Wrap(err).
			BuildError())
	}
	return nil
}

func runJarsGetpkg(cmd *cobra.Command, args []string) error {
	_, resolver, client, version, err := jarsSetup(cmd)
	if err != nil {
		return fail(cmd, err)
	}

	pkgs, err := packagesFor(resolver, args[0], version)
	if err != nil {
		return fail(cmd, err)
	}

	for _, name := range sortedPackageNames(pkgs) {
		fmt.Fprintln(cmd.OutOrStdout(), "found package "+ValueStyle.Render(name))
		for _, dep := range pkgs[name].Depends {
			if err := downloadJar(cmd.Context(), resolver, client, dep, version); err != nil {
				return fail(cmd, err)
			}
		}
	}
	return nil
}

func runJarsChkpkg(cmd *cobra.Command, args []string) error {
	_, resolver, _, version, err := jarsSetup(cmd)
	if err != nil {
		return fail(cmd, err)
	}

	pkgs, err := packagesFor(resolver, args[0], version)
	if err != nil {
		return fail(cmd, err)
	}

	out := cmd.OutOrStdout()
	for _, name := range sortedPackageNames(pkgs) {
		pkg := pkgs[name]
		fmt.Fprintf(out, "%s %s  %s %s\n",
			TitleStyle.Render("Package:"), ValueStyle.Render(pkg.Name),
			TitleStyle.Render("Service:"), pkg.Service)

		if len(pkg.Depends) > 0 {
			fmt.Fprintf(out, "Depends On(%d):\n", len(pkg.Depends))
			for _, d := range pkg.Depends {
				fmt.Fprintf(out, "    - %s:%s\n", d.Name, d.Version)
			}
		}
		if len(pkg.FromPackages) > 0 {
			fmt.Fprintf(out, "From Packages(%d):\n", len(pkg.FromPackages))
			for _, p := range pkg.FromPackages {
				fmt.Fprintf(out, "    - %s\n", p.Name)
			}
		}
		if pkg.ServiceHost != "" || pkg.ServicePort != 0 || pkg.RCONPort != 0 {
			fmt.Fprintln(out, "Network Info:")
			fmt.Fprintf(out, "    Host:      %s\n", orUnset(pkg.ServiceHost))
			fmt.Fprintf(out, "    Port:      %s\n", orUnsetInt(pkg.ServicePort))
			fmt.Fprintf(out, "    RCON Port: %s\n", orUnsetInt(pkg.RCONPort))
			fmt.Fprintf(out, "    RCON Pass: %s\n", maskSecret(pkg.RCONPassword))
		}
	}
	return nil
}

func runJarsLnkpkg(cmd *cobra.Command, args []string) error {
	cfg, resolver, client, version, err := jarsSetup(cmd)
	if err != nil {
		return fail(cmd, err)
	}

	pkgName, dst := args[0], args[1]
	pkgs, err := packagesFor(resolver, pkgName, version)
	if err != nil {
		return fail(cmd, err)
	}

	serverDir := filepath.Join(cfg.ExeRoot.String(), dst)
	for _, name := range sortedPackageNames(pkgs) {
		fmt.Fprintf(cmd.OutOrStdout(), "creating links for package %s\n", ValueStyle.Render(name))
		for _, dep := range pkgs[name].Depends {
			if lnkpkgDownload {
				if err := downloadJar(cmd.Context(), resolver, client, dep, version); err != nil {
					return fail(cmd, err)
				}
			}
			if err := linkJar(resolver, client, dep, version, serverDir, cmd); err != nil {
				return fail(cmd, err)
			}
		}
	}
	return nil
}

// downloadJar fetches every artifact an identity resolves to. Wildcard
// identities expand to all matching configured names; each artifact is
// stored under the game version's cache directory, renamed to its
// configured display name when one exists. Each per-name resolution
// goes through Single, so an identity with ambiguous URL or display
// name candidates aborts instead of downloading a guess.
func downloadJar(ctx context.Context, resolver *jarpack.Resolver, client *fetch.Client, jar jarsfile.JarFile, cacheVersion string) error {
	urls, err := resolver.URLs(jar)
	if err != nil {
		return err
	}

	for name := range urls {
		sub := jarsfile.NewJarFile(name, jar.Version, jar.Build, jar.Service)
		url, displayName, err := resolver.Single(sub)
		if err != nil {
			return err
		}
		if err := client.Download(ctx, cacheVersion, url, displayName); err != nil {
			return err
		}
	}
	return nil
}

// linkJar hard-links one cached plugin into the server directory.
// Server and proxy jars run from the cache and are skipped.
func linkJar(resolver *jarpack.Resolver, client *fetch.Client, jar jarsfile.JarFile, version, serverDir string, cmd *cobra.Command) error {
	if jar.Service != jarsfile.ServicePlugin {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s does not require linking\n", jar.Name)
		return nil
	}

	url, displayName, err := resolver.Single(jar)
	if err != nil {
		return err
	}
	name := displayName
	if name == "" {
		name = fetch.DetectFilename(url)
	}
	return client.Link(version, name, serverDir)
}

// packagesFor resolves the packages configured under a name, qualified
// by the effective game version.
func packagesFor(resolver *jarpack.Resolver, name, version string) (map[string]*jarpack.Package, error) {
	ver, err := jarsfile.ParseVersion(version)
	if err != nil {
		return nil, err
	}
	return resolver.Packages(jarsfile.NewJarFile(name, ver, "", ""))
}

func sortedPackageNames(pkgs map[string]*jarpack.Package) []string {
	names := make([]string, 0, len(pkgs))
	for name := range pkgs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func orUnset(s string) string {
	if s == "" {
		return SubtitleStyle.Render("unset")
	}
	return s
}

func orUnsetInt(n int) string {
	if n == 0 {
		return SubtitleStyle.Render("unset")
	}
	return fmt.Sprintf("%d", n)
}

func maskSecret(s string) string {
	if s == "" {
		return SubtitleStyle.Render("unset")
	}
	return strings.Repeat("*", 10)
}
