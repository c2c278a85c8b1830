// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"runtime"

	"ham-cli/pkg/addon"
)

// ErrUnsupportedHost is the sentinel error wrapped by UnsupportedHostError.
var ErrUnsupportedHost = errors.New("unsupported host")

// UnsupportedHostError is returned when GOOS or GOARCH has no counterpart in
// the addon vocabulary.
type UnsupportedHostError struct {
	GOOS   string
	GOARCH string
}

// Error implements the error interface.
func (e *UnsupportedHostError) Error() string {
	return fmt.Sprintf("unsupported host %s/%s", e.GOOS, e.GOARCH)
}

// Unwrap returns ErrUnsupportedHost for errors.Is() compatibility.
func (e *UnsupportedHostError) Unwrap() error { return ErrUnsupportedHost }

// Host returns the target of the running process.
func Host() (addon.Target, error) {
	return HostFor(runtime.GOOS, runtime.GOARCH)
}

// HostFor maps a GOOS/GOARCH pair to an addon target using the Node.js
// naming (process.platform / process.arch) that artifacts are keyed by.
func HostFor(goos, goarch string) (addon.Target, error) {
	var t addon.Target
	switch goos {
	case Windows:
		t.Platform = addon.PlatformWin32
	case Darwin:
		t.Platform = addon.PlatformDarwin
	case Linux:
		t.Platform = addon.PlatformLinux
	case Android:
		t.Platform = addon.PlatformAndroid
	case IOS:
		t.Platform = addon.PlatformIOS
	default:
		return addon.Target{}, &UnsupportedHostError{GOOS: goos, GOARCH: goarch}
	}

	switch goarch {
	case AMD64:
		t.Arch = addon.ArchX64
	case ARM64:
		t.Arch = addon.ArchArm64
	case I386:
		t.Arch = addon.ArchX86
	default:
		return addon.Target{}, &UnsupportedHostError{GOOS: goos, GOARCH: goarch}
	}
	return t, nil
}
