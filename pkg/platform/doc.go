// SPDX-License-Identifier: MPL-2.0

// Package platform maps the running Go host onto the addon target
// vocabulary. The build pipeline cannot cross-compile, so the host target
// gates which artifacts may be built on this machine.
//
// It also carries the host quirks that affect where and how ham runs
// subprocesses and names cache directories: sandbox detection (Flatpak, Snap)
// and Windows reserved device names.
package platform
