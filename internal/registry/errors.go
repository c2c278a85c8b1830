// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"

	"ham-cli/pkg/addon"
)

var (
	// ErrConfigUnreadable is returned when the ham document is missing,
	// unreadable, or does not decode into a valid document.
	ErrConfigUnreadable = errors.New("ham config unreadable")

	// ErrAddonNotFound is returned when no addon matches a (kind, name) lookup.
	ErrAddonNotFound = errors.New("addon not found")
)

type (
	// ConfigUnreadableError carries the document path and the underlying cause.
	ConfigUnreadableError struct {
		Path string
		Err  error
	}

	// AddonNotFoundError identifies the addon that was looked up.
	AddonNotFoundError struct {
		Addon addon.Identity
	}
)

// Error implements the error interface.
func (e *ConfigUnreadableError) Error() string {
	return fmt.Sprintf("cannot read ham config %s: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrConfigUnreadable and the cause.
func (e *ConfigUnreadableError) Unwrap() []error {
	return []error{ErrConfigUnreadable, e.Err}
}

// Error implements the error interface.
func (e *AddonNotFoundError) Error() string {
	return e.Addon.String() + " not found"
}

// Unwrap returns ErrAddonNotFound.
func (e *AddonNotFoundError) Unwrap() error { return ErrAddonNotFound }
