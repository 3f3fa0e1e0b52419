// SPDX-License-Identifier: MPL-2.0

// Package archive writes and restores zip backups of server directories.
// The current backup for a service is always the "0" archive; stamped
// archives preserve older states.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type (
	// Archiver writes backup archives for server directories into the
	// backup root and restores them back.
	Archiver struct {
		bakRoot string
		logger  *log.Logger
		now     func() time.Time
	}

	// Option configures an Archiver during construction.
	Option func(*Archiver)
)

// WithLogger sets the logger used for per-archive reporting.
func WithLogger(l *log.Logger) Option {
	return func(a *Archiver) { a.logger = l }
}

// WithClock overrides the time source used for archive stamps, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Archiver) { a.now = now }
}

// New creates an Archiver rooted at the backup directory.
func New(bakRoot string, opts ...Option) *Archiver {
	a := &Archiver{
		bakRoot: bakRoot,
		logger:  log.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name builds an archive filename for a service at a game version. An
// empty stamp yields a freshly stamped name.
func (a *Archiver) Name(server, version, stamp string) string {
	if stamp == "" {
		stamp = Stamp(a.now())
	}
	return fmt.Sprintf("%s-%s-%s.bak.zip", server, version, stamp)
}

// Stamp renders a backup stamp for a point in time: the two-digit year,
// ISO week and weekday concatenated, read as a decimal number and
// rendered in hex, then the hour. Week-granular, so repeated backups in
// one hour of one day collapse onto the same name.
func Stamp(t time.Time) string {
	_, week := t.ISOWeek()
	digits := fmt.Sprintf("%02d%02d%02d", t.Year()%100, week, mondayWeekday(t))

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		// Unreachable: digits is always six decimal digits.
		n = 0
	}
	return fmt.Sprintf("%#x-%02d", n, t.Hour())
}

// mondayWeekday maps Sunday-first weekdays onto the Monday=0 convention
// the stamp format has always used.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Write zips the include list into the "0" archive for the service.
// Paths are stored relative to root. With preserve set, an existing "0"
// archive is first renamed to a stamped name instead of overwritten.
func (a *Archiver) Write(server, version, root string, include []string, preserve bool) (string, error) {
	if err := os.MkdirAll(a.bakRoot, 0o755); err != nil {
		return "", fmt.Errorf("creating backup root: %w", err)
	}

	dst := filepath.Join(a.bakRoot, a.Name(server, version, "0"))
	if preserve {
		if _, err := os.Stat(dst); err == nil {
			kept := filepath.Join(a.bakRoot, a.Name(server, version, ""))
			if err := os.Rename(dst, kept); err != nil {
				return "", fmt.Errorf("preserving previous archive: %w", err)
			}
			a.logger.Info("preserved previous archive", "archive", kept)
		}
	}

	if err := writeZip(dst, root, include); err != nil {
		return "", err
	}
	a.logger.Info("archived", "server", server, "archive", dst)
	return dst, nil
}

// Restore extracts a service archive back under root. An empty tag
// restores the current ("0") archive.
func (a *Archiver) Restore(server, version, tag, root string) error {
	if tag == "" {
		tag = "0"
	}
	src := filepath.Join(a.bakRoot, a.Name(server, version, tag))

	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", src, err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if err := extractFile(f, root); err != nil {
			return err
		}
	}
	a.logger.Info("restored", "server", server, "archive", src)
	return nil
}

// writeZip creates the archive from the include list. Include entries
// that are directories contribute every regular file beneath them.
func writeZip(dst, root string, include []string) (err error) {
	zipFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	defer func() {
		if closeErr := zipFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	zw := zip.NewWriter(zipFile)
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, path := range include {
		info, statErr := os.Stat(path)
		if statErr != nil {
			// Optional include entries (e.g. spigot.yml) may not exist.
			continue
		}

		if !info.IsDir() {
			if addErr := addZipEntry(zw, root, path, info); addErr != nil {
				return addErr
			}
			continue
		}

		walkErr := filepath.WalkDir(path, func(sub string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return nil
			}
			subInfo, infoErr := d.Info()
			if infoErr != nil {
				return fmt.Errorf("failed to get file info: %w", infoErr)
			}
			return addZipEntry(zw, root, sub, subInfo)
		})
		if walkErr != nil {
			return walkErr
		}
	}
	return nil
}

// addZipEntry writes one regular file into the archive with its path
// relative to root.
func addZipEntry(zw *zip.Writer, root, path string, info os.FileInfo) error {
	relPath, err := filepath.Rel(root, path)
	if err != nil {
		return fmt.Errorf("failed to get relative path: %w", err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create file header: %w", err)
	}
	header.Name = filepath.ToSlash(relPath)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create zip entry: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}
	return nil
}

// extractFile writes one archive entry under root, rejecting entries
// that would escape it.
func extractFile(f *zip.File, root string) (err error) {
	cleaned := filepath.Clean(filepath.FromSlash(f.Name))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return fmt.Errorf("archive entry %q escapes the restore root", f.Name)
	}
	dst := filepath.Join(root, cleaned)

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dst, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening archive entry %s: %w", f.Name, err)
	}
	defer func() { _ = src.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return nil
}
