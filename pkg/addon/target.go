// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"errors"
	"fmt"
	"strings"
)

const (
	PlatformLinux           Platform = "linux"
	PlatformWin32           Platform = "win32"
	PlatformDarwin          Platform = "darwin"
	PlatformInterplatform   Platform = "interplatform"
	PlatformIOS             Platform = "ios"
	PlatformAndroid         Platform = "android"
	PlatformIPhoneSimulator Platform = "iphonesimulator"

	ArchX64               Arch = "x64"
	ArchArm64             Arch = "arm64"
	ArchX86               Arch = "x86"
	ArchInterarchitecture Arch = "interarchitecture"
)

var (
	// ErrInvalidPlatform is returned when a Platform value is not in the closed vocabulary.
	ErrInvalidPlatform = errors.New("invalid platform")
	// ErrInvalidArch is returned when an Arch value is not in the closed vocabulary.
	ErrInvalidArch = errors.New("invalid architecture")
	// ErrInvalidTarget is the sentinel error wrapped by InvalidTargetError.
	ErrInvalidTarget = errors.New("invalid target")

	platforms = []Platform{
		PlatformLinux, PlatformWin32, PlatformDarwin, PlatformInterplatform,
		PlatformIOS, PlatformAndroid, PlatformIPhoneSimulator,
	}
	arches = []Arch{ArchX64, ArchArm64, ArchX86, ArchInterarchitecture}
)

type (
	// Platform is the operating-system half of a Target.
	Platform string

	// Arch is the CPU-architecture half of a Target.
	Arch string

	// Target identifies the deployment environment of one artifact.
	// Two targets are equal iff both fields are equal, so Target is comparable with ==.
	Target struct {
		Platform Platform `json:"platform"`
		Arch     Arch     `json:"arch"`
	}

	// InvalidTargetError is returned when a target string or value cannot be used.
	InvalidTargetError struct {
		Value string
		Cause error
	}
)

// Platforms returns the closed platform vocabulary in declaration order.
func Platforms() []Platform { return append([]Platform(nil), platforms...) }

// Arches returns the closed architecture vocabulary in declaration order.
func Arches() []Arch { return append([]Arch(nil), arches...) }

// Validate returns ErrInvalidPlatform if p is not a known platform.
func (p Platform) Validate() error {
	for _, known := range platforms {
		if p == known {
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrInvalidPlatform, string(p))
}

// Validate returns ErrInvalidArch if a is not a known architecture.
func (a Arch) Validate() error {
	for _, known := range arches {
		if a == known {
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrInvalidArch, string(a))
}

// Validate checks both halves of the target.
func (t Target) Validate() error {
	if err := t.Platform.Validate(); err != nil {
		return &InvalidTargetError{Value: t.String(), Cause: err}
	}
	if err := t.Arch.Validate(); err != nil {
		return &InvalidTargetError{Value: t.String(), Cause: err}
	}
	return nil
}

// String returns "<platform>-<arch>", the artifact file stem.
func (t Target) String() string {
	return string(t.Platform) + "-" + string(t.Arch)
}

// ParseTarget parses the "<platform>-<arch>" form accepted by --target.
func ParseTarget(s string) (Target, error) {
	platform, arch, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || platform == "" || arch == "" {
		return Target{}, &InvalidTargetError{Value: s, Cause: errors.New("expected <platform>-<arch>")}
	}
	t := Target{Platform: Platform(platform), Arch: Arch(arch)}
	if err := t.Validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}

// Error implements the error interface.
func (e *InvalidTargetError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid target %q: %v", e.Value, e.Cause)
	}
	return fmt.Sprintf("invalid target %q", e.Value)
}

// Unwrap exposes ErrInvalidTarget and the underlying cause to errors.Is.
func (e *InvalidTargetError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidTarget, e.Cause}
	}
	return []error{ErrInvalidTarget}
}
