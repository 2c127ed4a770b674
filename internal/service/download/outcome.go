package download

import (
	"fmt"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
)

// Status is the tag of an Outcome.
type Status int

const (
	// StatusCompleted means the asset is fully on disk.
	StatusCompleted Status = iota
	// StatusFailed means the worker returned an error.
	StatusFailed
	// StatusCrashed means the worker panicked.
	StatusCrashed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCrashed:
		return "crashed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of one dispatched worker.
type Outcome struct {
	// Asset identifies the worker for reporting.
	Asset release.Asset
	// Path is the destination file.
	Path string
	// State is the last state the worker reached.
	State State
	// Err is nil on success, a *release.Error otherwise.
	Err error
}

// Status reports whether the worker completed, failed or crashed.
func (o Outcome) Status() Status {
	switch {
	case o.Err == nil:
		return StatusCompleted
	case release.KindOf(o.Err) == release.KindWorkerCrash:
		return StatusCrashed
	default:
		return StatusFailed
	}
}

// OK reports whether the asset was fully downloaded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// PanicError carries the value a worker panicked with.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%v", e.Value)
}

// Report is the result of downloading one release.
type Report struct {
	// Target is the downloaded target.
	Target release.Target
	// Tag is the resolved release tag.
	Tag string
	// Output is the destination directory.
	Output string
	// Outcomes holds one entry per asset, in asset-list order.
	Outcomes []Outcome
}

// Unsuccessful returns the failed and crashed outcomes, in order.
func (r *Report) Unsuccessful() []Outcome {
	if r == nil {
		return nil
	}

	var failed []Outcome

	for _, outcome := range r.Outcomes {
		if !outcome.OK() {
			failed = append(failed, outcome)
		}
	}

	return failed
}
