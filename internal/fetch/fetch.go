// SPDX-License-Identifier: MPL-2.0

// Package fetch downloads jar artifacts into the version-keyed cache
// under the jar root and links cached plugins into server directories.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// ErrUnexpectedStatus is the sentinel wrapped by StatusError.
var ErrUnexpectedStatus = errors.New("unexpected http status")

type (
	// StatusError is returned when a download or check request comes back
	// with a non-2xx status.
	StatusError struct {
		URL    string
		Status int
	}

	// Client downloads jars into the cache directory layout
	// <jarRoot>/<version>/. It is safe for sequential reuse across any
	// number of artifacts.
	Client struct {
		httpClient *http.Client
		jarRoot    string
		userAgent  string
		logger     *log.Logger
	}

	// Option configures a Client during construction.
	Option func(*Client)
)

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.URL, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy
// configurations.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Client) { f.httpClient = c }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Client) { f.userAgent = ua }
}

// WithLogger sets the logger used for per-artifact progress reporting.
func WithLogger(l *log.Logger) Option {
	return func(f *Client) { f.logger = l }
}

// NewClient creates a Client rooted at the jar cache directory.
// Defaults: httpClient=http.DefaultClient, userAgent="miner/dev",
// logger=log.Default().
func NewClient(jarRoot string, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		jarRoot:    jarRoot,
		userAgent:  "miner/dev",
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DetectFilename derives the artifact filename from the final path
// segment of a download URL.
func DetectFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return path.Base(rawURL)
	}
	return path.Base(u.Path)
}

// CacheDir returns the cache directory for one game version.
func (c *Client) CacheDir(version string) string {
	return filepath.Join(c.jarRoot, version)
}

// Exists reports whether the artifact is already cached for the game
// version, under either its URL-derived filename or its configured
// display name.
func (c *Client) Exists(version, rawURL, displayName string) bool {
	dir := c.CacheDir(version)

	candidates := []string{DetectFilename(rawURL)}
	if displayName != "" {
		candidates = append(candidates, displayName)
	}
	for _, name := range candidates {
		if fileExists(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}

// Download fetches one artifact into the version cache. Already-cached
// artifacts are skipped. When the configured display name differs from
// the URL-derived filename the downloaded file is renamed to match.
func (c *Client) Download(ctx context.Context, version, rawURL, displayName string) error {
	if c.Exists(version, rawURL, displayName) {
		c.logger.Info("already installed", "jar", DetectFilename(rawURL), "version", version)
		return nil
	}

	dir := c.CacheDir(version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{URL: rawURL, Status: resp.StatusCode}
	}

	urlName := DetectFilename(rawURL)
	dst := filepath.Join(dir, urlName)
	if err := writeFile(dst, resp.Body); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	c.logger.Info("downloaded", "jar", urlName, "version", version)

	if displayName != "" && displayName != urlName {
		if err := os.Rename(dst, filepath.Join(dir, displayName)); err != nil {
			return fmt.Errorf("renaming %s: %w", dst, err)
		}
	}
	return nil
}

// Check sends a HEAD request to every URL, following redirects, and
// logs each status. It reports true only when every URL answered 2xx.
func (c *Client) Check(ctx context.Context, urls map[string]string) (bool, error) {
	ok := true
	for name, rawURL := range urls {
		resp, err := c.doRequest(ctx, http.MethodHead, rawURL)
		if err != nil {
			return false, fmt.Errorf("checking %s: %w", rawURL, err)
		}
		resp.Body.Close()

		c.logger.Info("checked", "jar", name, "url", rawURL, "status", resp.Status)
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			ok = false
		}
	}
	return ok, nil
}

// doRequest creates and executes an HTTP request with common headers.
func (c *Client) doRequest(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

func writeFile(dst string, r io.Reader) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
