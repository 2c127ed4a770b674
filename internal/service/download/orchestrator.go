package download

import (
	"context"
	"path/filepath"
	"runtime/debug"
	"sync"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/logger"
)

// Orchestrator fans out one worker per asset and fans their outcomes back in.
type Orchestrator struct {
	fetcher Fetcher
}

// NewOrchestrator creates an orchestrator sharing fetcher between workers.
func NewOrchestrator(fetcher Fetcher) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
	}
}

// Run downloads assets into dir concurrently. It never stops early: the
// returned slice has one outcome per asset, at the asset's index, once every
// worker has finished. dir must already exist.
func (o *Orchestrator) Run(ctx context.Context, assets []release.Asset, dir string) []Outcome {
	var (
		outcomes = make([]Outcome, len(assets))
		wg       sync.WaitGroup
	)

	for i, asset := range assets {
		worker, err := newWorker(asset, o.fetcher, dir)
		if err != nil {
			outcomes[i] = Outcome{
				Asset: asset,
				Path:  filepath.Join(dir, asset.Name),
				State: StateFailed,
				Err:   err,
			}

			continue
		}

		wg.Add(1)

		go func() {
			defer wg.Done()

			outcomes[i] = supervise(ctx, worker)
		}()
	}

	wg.Wait()

	for _, outcome := range outcomes {
		logOutcome(ctx, outcome)
	}

	return outcomes
}

// supervise runs the worker and turns a panic into a crash outcome.
func supervise(ctx context.Context, worker *Worker) (outcome Outcome) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}

		outcome = Outcome{
			Asset: worker.Asset(),
			Path:  worker.Path(),
			State: worker.State(),
			Err: release.NewError(release.KindWorkerCrash, &PanicError{
				Value: recovered,
				Stack: debug.Stack(),
			}),
		}
	}()

	err := worker.Download(ctx)

	return Outcome{
		Asset: worker.Asset(),
		Path:  worker.Path(),
		State: worker.State(),
		Err:   err,
	}
}

func logOutcome(ctx context.Context, outcome Outcome) {
	switch outcome.Status() {
	case StatusCompleted:
		logger.InfoKV(ctx, "Asset downloaded", "asset", outcome.Asset.Name, "path", outcome.Path)
	case StatusCrashed:
		logger.ErrorKV(ctx, "Asset worker crashed", "asset", outcome.Asset.Name, "error", outcome.Err)
	default:
		logger.WarnKV(ctx, "Asset download failed",
			"asset", outcome.Asset.Name, "state", outcome.State, "error", outcome.Err)
	}
}
