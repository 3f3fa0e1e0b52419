// SPDX-License-Identifier: MPL-2.0

// Package launch starts server and proxy processes with java, from the
// service's own directory, with the heap and GC settings the services
// have always run with.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"

	"miner-cli/pkg/jarsfile"
)

const defaultHeap = "1G"

// proxyTuningFlags is the -XX: set applied to proxy launches.
var proxyTuningFlags = []string{
	"+UseG1GC",
	"G1HeapRegionSize=4M",
	"+UnlockExperimentalVMOptions",
	"+ParallelRefProcEnabled",
	"+AlwaysPreTouch",
	"MaxInlineLevel=15",
}

// ErrNoJarFound is returned when no jar in the cache matches the
// requested service pattern.
var ErrNoJarFound = errors.New("no matching jar found")

type (
	// Options tunes one launch.
	Options struct {
		// Xms is the initial heap size (default 1G).
		Xms string
		// Xmx is the maximum heap size (default 1G).
		Xmx string
	}

	// Launcher runs service jars with java.
	Launcher struct {
		javaPath string
		logger   *log.Logger
	}

	// Option configures a Launcher during construction.
	Option func(*Launcher)
)

// WithJavaPath overrides PATH lookup with an explicit java binary.
func WithJavaPath(path string) Option {
	return func(l *Launcher) { l.javaPath = path }
}

// WithLogger sets the logger used for launch reporting.
func WithLogger(lg *log.Logger) Option {
	return func(l *Launcher) { l.logger = lg }
}

// New creates a Launcher, locating java on PATH unless overridden.
func New(opts ...Option) (*Launcher, error) {
	l := &Launcher{logger: log.Default()}
	for _, opt := range opts {
		opt(l)
	}
	if l.javaPath == "" {
		path, err := exec.LookPath("java")
		if err != nil {
			return nil, fmt.Errorf("locating java: %w", err)
		}
		l.javaPath = path
	}
	return l, nil
}

// Start runs the jar from the server directory and waits for it to
// exit. Paper servers get --nogui; proxies get the G1GC tuning set.
func (l *Launcher) Start(ctx context.Context, jarPath, serverDir string, service jarsfile.ServiceKind, opts Options) error {
	args := buildArgs(jarPath, service, opts)

	cmd := exec.CommandContext(ctx, l.javaPath, args...)
	cmd.Dir = serverDir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	l.logger.Info("starting service", "jar", filepath.Base(jarPath), "service", service, "dir", serverDir)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", filepath.Base(jarPath), err)
	}
	return nil
}

// buildArgs assembles the java argument vector for one launch.
func buildArgs(jarPath string, service jarsfile.ServiceKind, opts Options) []string {
	xms := opts.Xms
	if xms == "" {
		xms = defaultHeap
	}
	xmx := opts.Xmx
	if xmx == "" {
		xmx = defaultHeap
	}

	args := []string{"-Xms" + xms, "-Xmx" + xmx}
	if service == jarsfile.ServiceVelocity {
		for _, flag := range proxyTuningFlags {
			args = append(args, "-XX:"+flag)
		}
	}
	args = append(args, "-jar", jarPath)
	if service == jarsfile.ServicePaper {
		args = append(args, "--nogui")
	}
	return args
}

// JarPath locates the service jar in the version cache. The filename is
// <service>-<version>-<build>.jar with "*" for unset parts; a pattern
// with wildcards resolves to the first available build.
func JarPath(jarRoot, gameVersion string, service jarsfile.ServiceKind, svcVersion jarsfile.Version, build string) (string, error) {
	verPart, buildPart := "*", "*"
	if svcVersion.IsSet() {
		verPart = svcVersion.String()
	}
	if build != "" {
		buildPart = build
	}

	dir := filepath.Join(jarRoot, gameVersion)
	name := fmt.Sprintf("%s-%s-%s.jar", service, verPart, buildPart)
	if verPart != "*" && buildPart != "*" {
		return filepath.Join(dir, name), nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("globbing %s: %w", name, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s in %s", ErrNoJarFound, name, dir)
	}
	return matches[0], nil
}
