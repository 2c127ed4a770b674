package release

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories.
type ErrorKind int

const (
	// KindRequest is a transport or HTTP-level failure.
	KindRequest ErrorKind = iota + 1
	// KindParse is a response body that does not match the expected JSON schema.
	KindParse
	// KindFile is a local I/O failure: open, create, write.
	KindFile
	// KindTagNotFound is a requested tag absent from the listing.
	KindTagNotFound
	// KindArchive is an extraction failure.
	KindArchive
	// KindWorkerCrash is a worker that panicked instead of returning.
	KindWorkerCrash
)

// Sentinels usable with errors.Is; they match any *Error of the same kind.
var (
	ErrRequest     = &Error{Kind: KindRequest}
	ErrParse       = &Error{Kind: KindParse}
	ErrFile        = &Error{Kind: KindFile}
	ErrTagNotFound = &Error{Kind: KindTagNotFound}
	ErrArchive     = &Error{Kind: KindArchive}
	ErrWorkerCrash = &Error{Kind: KindWorkerCrash}
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case KindRequest:
		return "request error"
	case KindParse:
		return "parse error"
	case KindFile:
		return "file error"
	case KindTagNotFound:
		return "tag not found"
	case KindArchive:
		return "zip error"
	case KindWorkerCrash:
		return "worker panic"
	default:
		return fmt.Sprintf("error kind %d", int(k))
	}
}

// Error is a failure of one of the known kinds. Err keeps the underlying
// cause so transport, JSON and I/O errors stay reachable through errors.As.
type Error struct {
	Kind ErrorKind
	// Tag is set for KindTagNotFound.
	Tag string
	Err error
}

// NewError wraps err with kind. A nil err still yields a usable error.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// NewTagNotFound reports that tag is missing from a listing.
// An empty tag means the listing had no releases at all.
func NewTagNotFound(tag string) *Error {
	return &Error{Kind: KindTagNotFound, Tag: tag}
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Kind == KindTagNotFound && e.Tag == "":
		return "no releases published"
	case e.Kind == KindTagNotFound:
		return fmt.Sprintf("tag %s not found", e.Tag)
	case e.Err == nil:
		return e.Kind.String()
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so the Err* sentinels work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}

	if other.Tag != "" && other.Tag != e.Tag {
		return false
	}

	return other.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}
