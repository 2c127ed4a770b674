// Package list prints the release tags available for a target, newest first,
// one per line, so a tag can be passed on to download or sync.
package list
