package list

import (
	"context"
	"fmt"
	"io"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/logger"
)

// Lister returns the releases of a target, newest first.
type Lister interface {
	List(ctx context.Context, target release.Target) ([]release.Release, error)
}

// Options are inputs accepted by the list entry point.
type Options struct {
	// Target selects the repository.
	Target release.Target
}

// Run returns the release tags of opts.Target, newest first.
func Run(ctx context.Context, lister Lister, opts *Options) ([]string, error) {
	ctx = logger.WithName(ctx, "list")

	releases, err := lister.List(ctx, opts.Target)
	if err != nil {
		return nil, fmt.Errorf("list releases of %s: %w", opts.Target, err)
	}

	tags := make([]string, 0, len(releases))
	for _, r := range releases {
		tags = append(tags, r.Tag)
	}

	logger.DebugKV(ctx, "Releases listed", "target", opts.Target, "count", len(tags))

	return tags, nil
}

// Print writes one tag per line, or the error.
func Print(out, errOut io.Writer, tags []string, err error) {
	if err != nil {
		_, _ = fmt.Fprintln(errOut, err)

		return
	}

	for _, tag := range tags {
		_, _ = fmt.Fprintln(out, tag)
	}
}
