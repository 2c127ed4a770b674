// Package release contains the core domain types shared by every stools
// command.
//
// It defines Target (which software component is distributed), Release and
// Asset (what the GitHub releases index describes), and Error, the closed set
// of failure kinds that listing, downloading and mounting report.
package release
