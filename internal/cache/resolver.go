// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"ham-cli/pkg/addon"
	"ham-cli/pkg/archive"
	"ham-cli/pkg/platform"
	"ham-cli/pkg/types"
)

// binaryDirName is the slot name shared by every target of a binary addon.
const binaryDirName = "binary"

// ErrInvalidAddonName is the sentinel error wrapped by InvalidAddonNameError.
var ErrInvalidAddonName = errors.New("invalid addon name")

// InvalidAddonNameError is returned when an addon name cannot be used as a
// single cache directory name.
type InvalidAddonNameError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e *InvalidAddonNameError) Error() string {
	return fmt.Sprintf("invalid addon name %q: %s", e.Name, e.Reason)
}

// Unwrap returns ErrInvalidAddonName for errors.Is() compatibility.
func (e *InvalidAddonNameError) Unwrap() error { return ErrInvalidAddonName }

// ValidateName checks that name is usable as one path element on every
// supported host. Scoped npm-style names ("@scope/pkg") are rejected; the
// cache layout has no nesting below the base directory.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &InvalidAddonNameError{Name: name, Reason: "must not be empty"}
	case name == "." || name == "..":
		return &InvalidAddonNameError{Name: name, Reason: "must not be a relative path element"}
	case strings.ContainsAny(name, `/\:`):
		return &InvalidAddonNameError{Name: name, Reason: "must not contain path separators"}
	case platform.IsWindowsReservedName(name):
		return &InvalidAddonNameError{Name: name, Reason: "is a reserved Windows device name"}
	}
	return nil
}

// Resolver computes cache paths under one base directory.
type Resolver struct {
	baseDir string
}

// NewResolver creates a resolver rooted at base. A relative base is resolved
// against docDir, the directory containing the ham document.
func NewResolver(docDir, base string) *Resolver {
	return &Resolver{baseDir: types.FilesystemPath(base).Resolve(docDir)}
}

// BaseDir returns the absolute cache root.
func (r *Resolver) BaseDir() string {
	return r.baseDir
}

// Dir returns the cache slot directory of a.
func (r *Resolver) Dir(a addon.Addon) (string, error) {
	if err := ValidateName(a.Identity().Name); err != nil {
		return "", err
	}
	switch a := a.(type) {
	case *addon.BinaryAddon:
		return filepath.Join(r.baseDir, a.Name, binaryDirName), nil
	case *addon.RuntimeAddon:
		switch a.Runtime {
		case addon.RuntimeNode, addon.RuntimeElectron:
		default:
			return "", &addon.UnknownAddonTypeError{Kind: addon.Kind(a.Runtime)}
		}
		slot := fmt.Sprintf("%s-%s-%s", a.Runtime, a.RuntimeVersion(), DependencyHash(a.Dependencies))
		return filepath.Join(r.baseDir, a.Name, slot), nil
	default:
		return "", fmt.Errorf("%w: %T", addon.ErrUnknownAddonType, a)
	}
}

// Artifact returns the archive path of a for target t.
func (r *Resolver) Artifact(a addon.Addon, t addon.Target) (string, error) {
	dir, err := r.Dir(a)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ArtifactName(t)), nil
}

// ArtifactName returns "<platform>-<arch>.tgz".
func ArtifactName(t addon.Target) string {
	return t.String() + archive.Ext
}
