package sync

import (
	"context"
	"fmt"
	"io"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/logger"
	"github.com/hyperloopupv-h8/stools/internal/service/download"
)

// Downloader downloads one release of a target.
type Downloader interface {
	Run(ctx context.Context, opts *download.Options) (*download.Report, error)
}

// Mounter places a target's downloaded files.
type Mounter interface {
	Mount(ctx context.Context, target release.Target, path string) error
}

// Options are inputs accepted by the sync entry point.
type Options struct {
	// Frontend is the frontend target synced together with the backend.
	Frontend release.Target
	// BackendTag selects the backend release; empty means the newest.
	BackendTag string
	// FrontendTag selects the frontend release; empty means the newest.
	FrontendTag string
	// Output is the download and mount directory.
	Output string
	// Strict turns any failed or crashed asset into a stage error.
	Strict bool
}

// Report collects the download reports of both targets. A stage that never
// ran leaves its report nil.
type Report struct {
	Backend  *download.Report
	Frontend *download.Report
}

// Pipeline composes downloading and mounting.
type Pipeline struct {
	downloader Downloader
	mounter    Mounter
}

// stage is one step of the pipeline.
type stage struct {
	name string
	run  func(ctx context.Context) error
}

// NewPipeline creates a sync pipeline.
func NewPipeline(downloader Downloader, mounter Mounter) *Pipeline {
	return &Pipeline{
		downloader: downloader,
		mounter:    mounter,
	}
}

// Run executes the stages in order and stops at the first failing one. The
// report is returned even on failure so completed stages can be shown.
func (p *Pipeline) Run(ctx context.Context, opts *Options) (*Report, error) {
	ctx = logger.WithName(ctx, "sync")

	if !opts.Frontend.IsFrontend() {
		return nil, fmt.Errorf("%w: %s", release.ErrNotFrontend, opts.Frontend)
	}

	report := new(Report)

	stages := []stage{
		{
			name: "download backend",
			run: func(ctx context.Context) (err error) {
				report.Backend, err = p.download(ctx, opts, release.TargetBackend, opts.BackendTag)

				return err
			},
		},
		{
			name: "download " + opts.Frontend.String(),
			run: func(ctx context.Context) (err error) {
				report.Frontend, err = p.download(ctx, opts, opts.Frontend, opts.FrontendTag)

				return err
			},
		},
		{
			name: "mount backend",
			run: func(ctx context.Context) error {
				return p.mounter.Mount(ctx, release.TargetBackend, opts.Output)
			},
		},
		{
			name: "mount " + opts.Frontend.String(),
			run: func(ctx context.Context) error {
				return p.mounter.Mount(ctx, opts.Frontend, opts.Output)
			},
		},
	}

	for _, current := range stages {
		logger.InfoKV(ctx, "Running stage", "stage", current.name)

		if err := current.run(ctx); err != nil {
			logger.ErrorKV(ctx, "Stage failed, aborting sync", "stage", current.name, "error", err)

			return report, fmt.Errorf("%s: %w", current.name, err)
		}
	}

	logger.Info(ctx, "Sync completed")

	return report, nil
}

// download runs one download stage and applies the asset failure policy.
func (p *Pipeline) download(
	ctx context.Context,
	opts *Options,
	target release.Target,
	tag string,
) (*download.Report, error) {
	report, err := p.downloader.Run(ctx, &download.Options{
		Target: target,
		Tag:    tag,
		Output: opts.Output,
	})
	if err != nil {
		return report, err
	}

	failed := report.Unsuccessful()
	for _, outcome := range failed {
		logger.WarnKV(ctx, "Asset did not download, continuing",
			"target", target, "asset", outcome.Asset.Name, "status", outcome.Status(), "error", outcome.Err)
	}

	if opts.Strict && len(failed) > 0 {
		return report, fmt.Errorf("%d of %d assets of %s %s failed, first %s: %w",
			len(failed), len(report.Outcomes), target, report.Tag, failed[0].Asset.Name, failed[0].Err)
	}

	return report, nil
}

// Print writes a line per failed asset and the overall result.
func Print(out, errOut io.Writer, report *Report, err error) {
	if report != nil {
		for _, r := range []*download.Report{report.Backend, report.Frontend} {
			if r == nil {
				continue
			}

			download.Print(io.Discard, errOut, &download.Report{Outcomes: r.Unsuccessful()})
		}
	}

	if err != nil {
		_, _ = fmt.Fprintf(errOut, "Error while syncing: %v\n", err)

		return
	}

	_, _ = fmt.Fprintln(out, "App successfully synced!")
}
