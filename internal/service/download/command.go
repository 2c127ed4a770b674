package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/logger"
)

// DefaultDirMode is used when creating the output directory.
const DefaultDirMode os.FileMode = 0o755

// errNoOutput is returned when no output directory is given.
var errNoOutput = errors.New("output directory must be provided")

// Lister returns the releases of a target, newest first.
type Lister interface {
	List(ctx context.Context, target release.Target) ([]release.Release, error)
}

// Client lists releases and fetches their assets.
type Client interface {
	Lister
	Fetcher
}

// Options are inputs accepted by the download entry point.
type Options struct {
	// Target selects the repository.
	Target release.Target
	// Tag selects the release; empty means the newest.
	Tag string
	// Output is the destination directory, created when missing.
	Output string
}

// Service resolves a release and downloads it.
type Service struct {
	lister       Lister
	orchestrator *Orchestrator
}

// NewService creates a download service on top of client.
func NewService(client Client) *Service {
	return &Service{
		lister:       client,
		orchestrator: NewOrchestrator(client),
	}
}

// Run lists target's releases, resolves the tag, creates the output directory
// and downloads every asset. Per-asset failures are in the report, not in the
// returned error; the error covers listing, tag resolution and the directory.
func (s *Service) Run(ctx context.Context, opts *Options) (*Report, error) {
	if opts.Output == "" {
		return nil, release.NewError(release.KindFile, errNoOutput)
	}

	ctx = logger.WithName(ctx, "download")
	ctx = logger.WithKV(ctx, "target", opts.Target, "batch", uuid.NewString())

	releases, err := s.lister.List(ctx, opts.Target)
	if err != nil {
		return nil, fmt.Errorf("list releases of %s: %w", opts.Target, err)
	}

	selected, err := release.Select(releases, opts.Tag)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(opts.Output, DefaultDirMode); err != nil {
		return nil, release.NewError(release.KindFile, err)
	}

	logger.InfoKV(ctx, "Downloading release",
		"tag", selected.Tag, "assets", len(selected.Assets), "output", opts.Output)

	return &Report{
		Target:   opts.Target,
		Tag:      selected.Tag,
		Output:   opts.Output,
		Outcomes: s.orchestrator.Run(ctx, selected.Assets, opts.Output),
	}, nil
}

// Print writes one line per outcome: the asset name on success to out, an
// error line otherwise to errOut.
func Print(out, errOut io.Writer, report *Report) {
	for _, outcome := range report.Outcomes {
		switch outcome.Status() {
		case StatusCompleted:
			_, _ = fmt.Fprintln(out, outcome.Asset.Name)
		case StatusCrashed:
			_, _ = fmt.Fprintf(errOut, "%v (while downloading %s)\n", outcome.Err, outcome.Asset.Name)
		default:
			_, _ = fmt.Fprintf(errOut, "error downloading %s: %v\n", outcome.Asset.Name, outcome.Err)
		}
	}
}
