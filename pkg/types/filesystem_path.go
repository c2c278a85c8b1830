// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

type (
	// FilesystemPath is a host path as written by the user: in a ham config
	// (cache base, patch script), in settings, or on the command line.
	// Relative paths are interpreted against a base directory by Resolve.
	FilesystemPath string

	// InvalidFilesystemPathError is returned for an empty or blank path.
	InvalidFilesystemPathError struct {
		Value FilesystemPath
	}
)

// String returns the path as written.
func (p FilesystemPath) String() string { return string(p) }

// IsValid reports whether p names something: blank paths are rejected.
func (p FilesystemPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidFilesystemPathError{Value: p}}
	}
	return true, nil
}

// Resolve returns p joined to base when p is relative, p itself otherwise,
// in cleaned form.
func (p FilesystemPath) Resolve(base string) string {
	path := filepath.FromSlash(string(p))
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// Error implements the error interface.
func (e *InvalidFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid filesystem path %q: must not be blank", e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath for errors.Is() compatibility.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }
