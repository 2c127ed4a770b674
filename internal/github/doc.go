// Package github talks to the GitHub releases API.
//
// Client lists the releases of a target's repository and opens the body of a
// release asset. One Client wraps one *http.Client and is safe to share
// between concurrent download workers.
package github
