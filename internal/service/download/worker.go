package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/logger"
)

// chunkSize is how much of the body is pulled per read.
const chunkSize = 32 * 1024

// Fetcher opens the body of one asset. Implementations must be safe for
// concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, asset release.Asset) (io.ReadCloser, error)
}

// State is the lifecycle position of a Worker.
type State int

const (
	// StateCreated means the destination file is open and nothing was requested yet.
	StateCreated State = iota
	// StateRequesting means the GET is in flight.
	StateRequesting
	// StateStreaming means the body is being copied into the file.
	StateStreaming
	// StateCompleted means the whole body reached the file.
	StateCompleted
	// StateFailed means the worker stopped with an error.
	StateFailed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Worker downloads exactly one asset into a file it owns exclusively.
type Worker struct {
	// asset is the descriptor being downloaded.
	asset release.Asset
	// path is the destination file path.
	path string
	// fetcher is shared with sibling workers.
	fetcher Fetcher
	// file is opened by newWorker and closed by Download.
	file io.WriteCloser
	// state is only touched by the goroutine running Download.
	state State
	// written counts bytes that reached the file.
	written int64
}

// newWorker opens dir/asset.Name with create-or-truncate semantics. The name
// is used verbatim.
func newWorker(asset release.Asset, fetcher Fetcher, dir string) (*Worker, error) {
	path := filepath.Join(dir, asset.Name)

	file, err := os.Create(path)
	if err != nil {
		return nil, release.NewError(release.KindFile, err)
	}

	return &Worker{
		asset:   asset,
		path:    path,
		fetcher: fetcher,
		file:    file,
		state:   StateCreated,
	}, nil
}

// Download runs Requesting -> Streaming -> Completed|Failed. The destination
// file is always closed; on failure it keeps whatever was written so far.
func (w *Worker) Download(ctx context.Context) (err error) {
	ctx = logger.WithKV(ctx, "asset", w.asset.Name)

	defer func() {
		closeErr := w.file.Close()
		if err == nil && closeErr != nil {
			err = w.fail(ctx, release.NewError(release.KindFile, closeErr))
		}
	}()

	w.transition(ctx, StateRequesting)

	body, err := w.fetcher.Fetch(ctx, w.asset)
	if err != nil {
		return w.fail(ctx, withKind(release.KindRequest, err))
	}

	defer func() {
		_ = body.Close()
	}()

	w.transition(ctx, StateStreaming)

	chunk := make([]byte, chunkSize)

	for {
		n, readErr := body.Read(chunk)
		if n > 0 {
			if err = w.writeChunk(chunk[:n]); err != nil {
				return w.fail(ctx, release.NewError(release.KindFile, err))
			}
		}

		if errors.Is(readErr, io.EOF) {
			w.transition(ctx, StateCompleted)

			return nil
		}

		if readErr != nil {
			return w.fail(ctx, withKind(release.KindRequest, readErr))
		}
	}
}

// writeChunk writes all of chunk, retrying the remainder after a short write.
func (w *Worker) writeChunk(chunk []byte) error {
	for len(chunk) > 0 {
		n, err := w.file.Write(chunk)
		w.written += int64(n)

		if err != nil {
			return err
		}

		if n == 0 {
			return io.ErrShortWrite
		}

		chunk = chunk[n:]
	}

	return nil
}

// Asset returns the descriptor this worker downloads.
func (w *Worker) Asset() release.Asset {
	return w.asset
}

// Path returns the destination file path.
func (w *Worker) Path() string {
	return w.path
}

// State returns the current lifecycle position.
func (w *Worker) State() State {
	return w.state
}

func (w *Worker) transition(ctx context.Context, next State) {
	logger.DebugKV(ctx, "Worker state changed", "from", w.state, "to", next, "written", w.written)

	w.state = next
}

func (w *Worker) fail(ctx context.Context, err error) error {
	w.transition(ctx, StateFailed)

	return err
}

// withKind keeps an existing release error and wraps anything else as kind.
func withKind(kind release.ErrorKind, err error) error {
	var relErr *release.Error
	if errors.As(err, &relErr) {
		return err
	}

	return release.NewError(kind, err)
}
