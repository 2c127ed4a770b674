// Package sync downloads and mounts the backend together with one frontend.
//
// The pipeline runs four stages strictly in order: download backend, download
// frontend, mount backend, mount frontend. The first stage error stops it.
// Individual asset failures inside a download stage do not count as stage
// errors unless the pipeline runs in strict mode; they are logged and
// returned in the report either way.
package sync
