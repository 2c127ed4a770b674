// Package config defines the stools settings and provides helpers to load,
// validate and save them.
//
// Settings are YAML by default; a path ending in .toml is read and written as
// TOML. A missing default settings file is not an error: built-in defaults
// point at the HyperloopUPV-H8 GitHub organization.
package config
