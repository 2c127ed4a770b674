// Package version exposes build metadata for stools.
//
// Version, Commit and BuildTime are injected with -ldflags "-X ..." and
// default to values suitable for local builds.
package version
