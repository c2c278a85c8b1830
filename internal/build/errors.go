// SPDX-License-Identifier: MPL-2.0

package build

import (
	"errors"
	"fmt"
	"strings"

	"ham-cli/pkg/addon"
	"ham-cli/pkg/types"
)

var (
	// ErrArtifactNotFound is returned when a binary addon has no artifact for
	// the requested target. Binary artifacts must be imported first.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrTargetMismatch is returned when a build is requested for a target
	// other than the running host.
	ErrTargetMismatch = errors.New("target mismatch")
	// ErrTargetGuessFailed is returned when no target can be inferred from a
	// file name and none was given.
	ErrTargetGuessFailed = errors.New("cannot guess target")
	// ErrSubprocessFailed is returned when a pipeline subprocess cannot be
	// started or exits non-zero.
	ErrSubprocessFailed = errors.New("subprocess failed")
	// ErrRebuildToolNotFound is returned when no native rebuild tool entry
	// point is configured and none is installed next to the ham document.
	ErrRebuildToolNotFound = errors.New("rebuild tool not found")
)

type (
	// ArtifactNotFoundError is returned when a binary addon artifact is missing.
	ArtifactNotFoundError struct {
		Addon  addon.Identity
		Target addon.Target
		Path   string
	}

	// TargetMismatchError is returned when the requested target is not the host.
	TargetMismatchError struct {
		Addon     addon.Identity
		Requested addon.Target
		Host      addon.Target
	}

	// TargetGuessFailedError is returned when Match finds no target in Name.
	TargetGuessFailedError struct {
		Name string
	}

	// SubprocessError is returned when a pipeline stage subprocess fails.
	// ExitCode is types.ExitCodeSignaled when the process was killed, and
	// meaningless when Err reports that it never started.
	SubprocessError struct {
		Stage    Stage
		Argv     []string
		ExitCode types.ExitCode
		Err      error
	}

	// RebuildToolNotFoundError lists the locations searched for the rebuild tool.
	RebuildToolNotFoundError struct {
		Searched []string
	}
)

// Error implements the error interface.
func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("%s has no artifact for %s (expected %s)", e.Addon, e.Target, e.Path)
}

// Unwrap returns ErrArtifactNotFound for errors.Is() compatibility.
func (e *ArtifactNotFoundError) Unwrap() error { return ErrArtifactNotFound }

// Error implements the error interface.
func (e *TargetMismatchError) Error() string {
	host := e.Host.String()
	if e.Host == (addon.Target{}) {
		host = "an unsupported host"
	}
	return fmt.Sprintf("cannot build %s for %s on %s", e.Addon, e.Requested, host)
}

// Unwrap returns ErrTargetMismatch for errors.Is() compatibility.
func (e *TargetMismatchError) Unwrap() error { return ErrTargetMismatch }

// Error implements the error interface.
func (e *TargetGuessFailedError) Error() string {
	return fmt.Sprintf("cannot guess target from %q", e.Name)
}

// Unwrap returns ErrTargetGuessFailed for errors.Is() compatibility.
func (e *TargetGuessFailedError) Unwrap() error { return ErrTargetGuessFailed }

// Error implements the error interface.
func (e *SubprocessError) Error() string {
	cmd := strings.Join(e.Argv, " ")
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s stage: %q: %v", e.Stage, cmd, e.Err)
	case e.ExitCode.IsSignaled():
		return fmt.Sprintf("%s stage: %q was killed", e.Stage, cmd)
	default:
		return fmt.Sprintf("%s stage: %q exited with code %s", e.Stage, cmd, e.ExitCode)
	}
}

// Unwrap returns ErrSubprocessFailed and the underlying cause, if any.
func (e *SubprocessError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSubprocessFailed, e.Err}
	}
	return []error{ErrSubprocessFailed}
}

// Error implements the error interface.
func (e *RebuildToolNotFoundError) Error() string {
	return fmt.Sprintf("rebuild tool not found (searched %s)", strings.Join(e.Searched, ", "))
}

// Unwrap returns ErrRebuildToolNotFound for errors.Is() compatibility.
func (e *RebuildToolNotFoundError) Unwrap() error { return ErrRebuildToolNotFound }
