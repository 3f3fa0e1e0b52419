// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"miner-cli/internal/issue"
	"miner-cli/internal/rcon"
	"miner-cli/pkg/jarsfile"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	shellHost     string
	shellPort     int
	shellPassword string
	shellPackage  string
	shellVersion  string

	shellCmd = &cobra.Command{
		Use:   "shell [command]...",
		Short: "Connect to a remote console",
		Long: `Open a remote console session against a running server. With a command
the session runs it and exits; without one an interactive prompt opens
(q to quit).

Connection defaults come from the configuration and the MINER_RCON_*
environment variables. With --package the host, port and password come
from the package manifest instead, falling back to the flags for
anything the manifest leaves unset.`,
		RunE: runShell,
	}
)

func init() {
	shellCmd.Flags().StringVarP(&shellHost, "host", "H", "", "remote console host (default from config)")
	shellCmd.Flags().IntVarP(&shellPort, "port", "p", 0, "remote console port (default from config)")
	shellCmd.Flags().StringVar(&shellPassword, "password", "", "remote console password (prompts when unset)")
	shellCmd.Flags().StringVarP(&shellPackage, "package", "P", "", "take connection settings from this package")
	shellCmd.Flags().StringVarP(&shellVersion, "package-version", "V", "", "game version for package resolution")
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return fail(cmd, err)
	}

	host := shellHost
	if host == "" {
		host = cfg.RCON.Host
	}
	port := shellPort
	if port == 0 {
		port = cfg.RCON.Port
	}
	password := shellPassword
	if password == "" {
		password = cfg.RCON.Password
	}

	display, prompt := host, host
	if shellPackage != "" {
		version := effectiveVersion(shellVersion, cfg)
		resolver, err := openResolver(cfg, version)
		if err != nil {
			return fail(cmd, err)
		}

		pkgs, err := packagesFor(resolver, shellPackage, version)
		if err != nil {
			return fail(cmd, err)
		}
		pkg, ok := pkgs[shellPackage]
		if !ok && len(pkgs) == 1 {
			for _, p := range pkgs {
				pkg = p
			}
			ok = true
		}
		if !ok {
			return fail(cmd, fmt.Errorf("package %q not found", shellPackage))
		}

		if pkg.Service != jarsfile.ServicePaper {
			return fail(cmd, fmt.Errorf("target service %q does not support the remote console protocol", pkg.Service))
		}

		if pkg.RCONPort != 0 {
			port = pkg.RCONPort
		}
		if pkg.ServiceHost != "" {
			host = pkg.ServiceHost
		}
		if pkg.RCONPassword != "" {
			password = pkg.RCONPassword
		}
		display = fmt.Sprintf("%s(%s:%d)", pkg.Name, host, port)
		prompt = pkg.Name
	}

	if password == "" {
		password, err = promptPassword(cmd)
		if err != nil {
			return fail(cmd, err)
		}
	}

	client, err := rcon.Dial(ctx, host, port)
	if err != nil {
		return fail(cmd, issue.NewErrorContext().
			WithOperation("connect to rcon").
			WithResource(fmt.Sprintf("%s:%d", host, port)).
			WithSuggestion("Check that the server is running and rcon is enabled in server.properties").
			Wrap(err).
			BuildError())
	}
	defer func() { _ = client.Close() }()

	if err := client.Login(password); err != nil {
		if errors.Is(err, rcon.ErrAuthFailed) {
			return fail(cmd, errors.New("authentication failed"))
		}
		return fail(cmd, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, SuccessStyle.Render("MinerShell@"+display+" Connected."))

	if len(args) > 0 {
		return runShellCommand(cmd, client, strings.Join(args, " "))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprintf(out, "%s$ ", ValueStyle.Render(prompt))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "q", "Q":
			return nil
		}
		if err := runShellCommand(cmd, client, line); err != nil {
			return err
		}
	}
}

// runShellCommand executes one console command and prints its response.
// An empty response body means the remote rejected the command.
func runShellCommand(cmd *cobra.Command, client *rcon.Client, line string) error {
	resp, err := client.Command(line)
	if err != nil {
		return fail(cmd, err)
	}
	if resp == "" {
		return fail(cmd, errors.New("bad response from remote"))
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp)
	return nil
}

// promptPassword reads the console password without echo. A
// non-terminal stdin (tests, pipes) falls back to a plain line read.
func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "password: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(raw), nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return "", fmt.Errorf("reading password: %w", scanner.Err())
	}
	return strings.TrimSpace(scanner.Text()), nil
}
