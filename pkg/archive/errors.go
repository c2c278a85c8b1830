// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrNotADirectory is returned when the pack source is not a directory.
	ErrNotADirectory = errors.New("not a directory")
	// ErrBadExtension is returned when the pack target does not end in Ext.
	ErrBadExtension = errors.New("bad archive extension")
	// ErrUnsafeTarget is returned when unpacking would wipe a filesystem root.
	ErrUnsafeTarget = errors.New("unsafe extraction target")
	// ErrUnsafeEntry is returned when an archive entry would land outside the destination.
	ErrUnsafeEntry = errors.New("unsafe archive entry")
	// ErrInvalidPattern is the sentinel error wrapped by InvalidPatternError.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// InvalidPatternError is returned by Filter.Validate for a malformed glob.
type InvalidPatternError struct {
	Pattern string
}

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern %q", e.Pattern)
}

// Unwrap returns ErrInvalidPattern for errors.Is() compatibility.
func (e *InvalidPatternError) Unwrap() error { return ErrInvalidPattern }
