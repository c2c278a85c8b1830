// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"ham-cli/pkg/archive"
)

const (
	// KindBinary identifies manually imported prebuilt artifacts.
	KindBinary Kind = "binary"
	// KindNode identifies addons installed for a Node.js major version.
	KindNode Kind = "node"
	// KindElectron identifies addons rebuilt against an Electron version.
	KindElectron Kind = "electron"

	// RuntimeNode is the managed-runtime flavor of a RuntimeAddon.
	RuntimeNode RuntimeKind = "node"
	// RuntimeElectron is the embedded-host flavor of a RuntimeAddon.
	RuntimeElectron RuntimeKind = "electron"
)

// ErrUnknownAddonType is the sentinel error wrapped by UnknownAddonTypeError.
var ErrUnknownAddonType = errors.New("unknown addon type")

type (
	// Kind is the "type" discriminator of an addon in the document.
	Kind string

	// RuntimeKind selects the build flavor of a RuntimeAddon.
	RuntimeKind string

	// Filter is the include/exclude glob pair applied when packing or extracting.
	Filter = archive.Filter

	// Identity is the (kind, name) pair that uniquely identifies an addon
	// within one document.
	Identity struct {
		Kind Kind
		Name string
	}

	// Addon is the sealed union of addon variants. The only implementations
	// are *BinaryAddon and *RuntimeAddon.
	Addon interface {
		Identity() Identity
		ExtractFilter() *Filter
		Clone() Addon
		isAddon()
	}

	// BinaryAddon is a prebuilt artifact imported per target. It has no
	// dependency set and is never built.
	BinaryAddon struct {
		Name    string
		Targets []Target
		Extract *Filter
	}

	// RuntimeAddon is built by installing Dependencies under a synthetic
	// manifest, optionally patching, and for Electron rebuilding natively.
	RuntimeAddon struct {
		Name    string
		Runtime RuntimeKind
		// NodeVersion is the Node.js major version (RuntimeNode only).
		NodeVersion int
		// ElectronVersion is the Electron version rebuilt against (RuntimeElectron only).
		ElectronVersion string
		Dependencies    map[string]string
		// Patch is a script path relative to the document directory.
		Patch   string
		Pack    *Filter
		Extract *Filter
	}

	// UnknownAddonTypeError is returned when a document or caller names a
	// kind outside the closed set.
	UnknownAddonTypeError struct {
		Kind Kind
	}
)

// ParseKind validates a kind string from the command line or a document.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	switch k {
	case KindBinary, KindNode, KindElectron:
		return k, nil
	default:
		return "", &UnknownAddonTypeError{Kind: k}
	}
}

// String returns "<kind> addon <name>".
func (id Identity) String() string {
	return fmt.Sprintf("%s addon %s", id.Kind, id.Name)
}

// Identity returns (binary, name).
func (b *BinaryAddon) Identity() Identity { return Identity{Kind: KindBinary, Name: b.Name} }

// ExtractFilter returns the filter applied when extracting this addon.
func (b *BinaryAddon) ExtractFilter() *Filter { return b.Extract }

// HasTarget reports whether t is already recorded.
func (b *BinaryAddon) HasTarget(t Target) bool {
	return slices.Contains(b.Targets, t)
}

// AddTarget appends t unless an identical target is already recorded.
// It reports whether the list changed.
func (b *BinaryAddon) AddTarget(t Target) bool {
	if b.HasTarget(t) {
		return false
	}
	b.Targets = append(b.Targets, t)
	return true
}

// Clone returns a deep copy.
func (b *BinaryAddon) Clone() Addon {
	return &BinaryAddon{
		Name:    b.Name,
		Targets: slices.Clone(b.Targets),
		Extract: b.Extract.Clone(),
	}
}

func (*BinaryAddon) isAddon() {}

// Identity returns (node|electron, name).
func (r *RuntimeAddon) Identity() Identity { return Identity{Kind: Kind(r.Runtime), Name: r.Name} }

// ExtractFilter returns the filter applied when extracting this addon.
func (r *RuntimeAddon) ExtractFilter() *Filter { return r.Extract }

// RuntimeVersion returns the version component of the cache directory name:
// the Node.js major version or the Electron version string.
func (r *RuntimeAddon) RuntimeVersion() string {
	if r.Runtime == RuntimeNode {
		return strconv.Itoa(r.NodeVersion)
	}
	return r.ElectronVersion
}

// Clone returns a deep copy.
func (r *RuntimeAddon) Clone() Addon {
	c := *r
	c.Dependencies = maps.Clone(r.Dependencies)
	c.Pack = r.Pack.Clone()
	c.Extract = r.Extract.Clone()
	return &c
}

func (*RuntimeAddon) isAddon() {}

// Error implements the error interface.
func (e *UnknownAddonTypeError) Error() string {
	return fmt.Sprintf("unknown addon type %q", string(e.Kind))
}

// Unwrap returns ErrUnknownAddonType for errors.Is() compatibility.
func (e *UnknownAddonTypeError) Unwrap() error { return ErrUnknownAddonType }
