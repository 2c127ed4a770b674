package release

import (
	"errors"
	"fmt"
	"strings"
)

// Target identifies one distributable software component.
type Target string

const (
	// TargetEthernet is the ethernet view frontend.
	TargetEthernet Target = "ethernet"
	// TargetControl is the control station frontend.
	TargetControl Target = "control"
	// TargetBackend is the backend service.
	TargetBackend Target = "backend"
)

// MountKind tells the mount step how a target is placed on disk.
type MountKind int

const (
	// MountNone leaves downloaded files untouched.
	MountNone MountKind = iota
	// MountArchive expands the frontend archive in place.
	MountArchive
)

var (
	// ErrUnknownTarget is returned when a target name is not recognized.
	ErrUnknownTarget = errors.New("unknown target")
	// ErrNotFrontend is returned when a frontend target is required.
	ErrNotFrontend = errors.New("target is not a frontend")
)

//nolint:gochecknoglobals // Lookup table for aliases.
var targetAliases = map[string]Target{
	"ethernet": TargetEthernet,
	"eth":      TargetEthernet,
	"control":  TargetControl,
	"ctrl":     TargetControl,
	"backend":  TargetBackend,
	"back":     TargetBackend,
}

// Targets returns every target in a stable order.
func Targets() []Target {
	return []Target{TargetEthernet, TargetControl, TargetBackend}
}

// TargetNames returns the accepted spellings, aliases included.
func TargetNames() []string {
	return []string{"ethernet", "eth", "control", "ctrl", "backend", "back"}
}

// FrontendNames returns the accepted spellings of frontend targets.
func FrontendNames() []string {
	return []string{"ethernet", "eth", "control", "ctrl"}
}

// ParseTarget resolves a target name or alias, case-insensitively.
func ParseTarget(name string) (Target, error) {
	target, ok := targetAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q (expected one of %s)",
			ErrUnknownTarget, name, strings.Join(TargetNames(), ", "))
	}

	return target, nil
}

// ParseFrontend resolves a name that must denote a frontend target.
func ParseFrontend(name string) (Target, error) {
	target, err := ParseTarget(name)
	if err != nil {
		return "", err
	}

	if !target.IsFrontend() {
		return "", fmt.Errorf("%w: %s", ErrNotFrontend, target)
	}

	return target, nil
}

// IsFrontend reports whether the target is one of the frontend variants.
func (t Target) IsFrontend() bool {
	return t == TargetEthernet || t == TargetControl
}

// MountKind returns how the target is placed after downloading.
func (t Target) MountKind() MountKind {
	if t.IsFrontend() {
		return MountArchive
	}

	return MountNone
}

// String implements fmt.Stringer.
func (t Target) String() string {
	return string(t)
}
