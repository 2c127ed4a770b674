// Package integration exercises the stools services end to end against a
// fake GitHub served by net/http/httptest.
package integration
