// Package download fetches every asset of one release into a local directory.
//
// The Orchestrator starts one Worker goroutine per asset and waits for all of
// them: a failing or panicking worker never stops its siblings. Outcomes come
// back in asset-list order whatever the completion order, and a panic is
// reported as a release.KindWorkerCrash outcome rather than a plain failure.
//
// A worker streams the response body straight into its destination file. A
// failed download leaves the partial file on disk; nothing is retried except
// completing a short write of the current chunk.
package download
