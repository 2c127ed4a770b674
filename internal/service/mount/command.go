package mount

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/logger"
)

const (
	// ArchiveName is the frontend bundle expected in the mount directory.
	ArchiveName = "static.zip"

	// defaultFileMode is used for archive entries that carry no permissions.
	defaultFileMode os.FileMode = 0o644
	// defaultDirMode is used for directories created during extraction.
	defaultDirMode os.FileMode = 0o755
)

// errUnsafeEntry is returned for archive entries that would land outside the mount directory.
var errUnsafeEntry = errors.New("archive entry escapes the mount directory")

// Options are inputs accepted by the mount entry point.
type Options struct {
	// Target decides how the directory is mounted.
	Target release.Target
	// Path is the directory holding the downloaded files.
	Path string
}

// ProcessLister returns the running processes.
type ProcessLister func() ([]ps.Process, error)

// Service mounts targets. The zero value is not usable; call NewService.
type Service struct {
	processes ProcessLister
}

// Option configures a Service.
type Option func(*Service)

// WithProcessLister replaces the process table source.
func WithProcessLister(lister ProcessLister) Option {
	return func(s *Service) {
		if lister != nil {
			s.processes = lister
		}
	}
}

// NewService creates a mount service reading the real process table.
func NewService(opts ...Option) *Service {
	service := &Service{
		processes: ps.Processes,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// Run mounts opts.Target in opts.Path. Failures are release.KindFile when the
// archive cannot be opened or written out, release.KindArchive when it is not
// a valid zip or holds an unsafe entry.
func (s *Service) Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "mount")
	ctx = logger.WithKV(ctx, "target", opts.Target, "path", opts.Path)

	switch opts.Target.MountKind() {
	case release.MountArchive:
		return s.extract(ctx, opts.Path)
	default:
		s.warnRunning(ctx, opts.Path)

		return nil
	}
}

// Mount is Run with positional arguments, as the sync pipeline calls it.
func (s *Service) Mount(ctx context.Context, target release.Target, path string) error {
	return s.Run(ctx, &Options{Target: target, Path: path})
}

// extract expands dir/static.zip into dir.
func (s *Service) extract(ctx context.Context, dir string) error {
	archivePath := filepath.Join(dir, ArchiveName)

	logger.InfoKV(ctx, "Expanding archive", "archive", archivePath)

	file, err := os.Open(filepath.Clean(archivePath))
	if err != nil {
		return release.NewError(release.KindFile, err)
	}

	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return release.NewError(release.KindFile, err)
	}

	// Entries with unsafe names are rejected one by one below, with a precise error.
	reader, err := zip.NewReader(file, info.Size())
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return release.NewError(release.KindArchive, fmt.Errorf("open %s: %w", archivePath, err))
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return release.NewError(release.KindFile, err)
	}

	for _, entry := range reader.File {
		if err = extractEntry(root, entry); err != nil {
			return err
		}
	}

	logger.InfoKV(ctx, "Archive expanded", "entries", len(reader.File))

	return nil
}

// extractEntry writes one archive entry below root.
func extractEntry(root string, entry *zip.File) error {
	target := filepath.Join(root, filepath.FromSlash(entry.Name))

	relative, err := filepath.Rel(root, target)
	if err != nil || relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return release.NewError(release.KindArchive, fmt.Errorf("%s: %w", entry.Name, errUnsafeEntry))
	}

	if entry.FileInfo().IsDir() {
		if err = os.MkdirAll(target, defaultDirMode); err != nil {
			return release.NewError(release.KindFile, err)
		}

		return nil
	}

	if err = os.MkdirAll(filepath.Dir(target), defaultDirMode); err != nil {
		return release.NewError(release.KindFile, err)
	}

	source, err := entry.Open()
	if err != nil {
		return release.NewError(release.KindArchive, fmt.Errorf("%s: %w", entry.Name, err))
	}

	defer func() {
		_ = source.Close()
	}()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = defaultFileMode
	}

	destination, err := os.OpenFile(filepath.Clean(target), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return release.NewError(release.KindFile, err)
	}

	if err = copyEntry(destination, source); err != nil {
		_ = destination.Close()

		return err
	}

	if err = destination.Close(); err != nil {
		return release.NewError(release.KindFile, err)
	}

	return nil
}

// copyEntry copies an entry, blaming read errors on the archive and write
// errors on the filesystem.
func copyEntry(dst io.Writer, src io.Reader) error {
	buffer := make([]byte, 32*1024)

	for {
		n, readErr := src.Read(buffer)
		if n > 0 {
			if _, err := dst.Write(buffer[:n]); err != nil {
				return release.NewError(release.KindFile, err)
			}
		}

		if errors.Is(readErr, io.EOF) {
			return nil
		}

		if readErr != nil {
			return release.NewError(release.KindArchive, readErr)
		}
	}
}

// warnRunning logs running processes whose executable was just downloaded
// into dir. Any failure here is only logged.
func (s *Service) warnRunning(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.DebugKV(ctx, "Skipping running process check", "error", err)

		return
	}

	names := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names[entry.Name()] = struct{}{}
		}
	}

	processes, err := s.processes()
	if err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)

		return
	}

	thisProcessID := os.Getpid()

	for _, process := range processes {
		if process.Pid() == thisProcessID {
			continue
		}

		if _, found := names[process.Executable()]; found {
			logger.WarnKV(ctx, "Downloaded file is currently running, restart it to pick up the new version",
				"executable", process.Executable(), "pid", process.Pid())
		}
	}
}

// Print writes the human-readable result of a mount.
func Print(out, errOut io.Writer, err error) {
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error mounting: %v\n", err)

		return
	}

	_, _ = fmt.Fprintln(out, "Target mounted correctly")
}
