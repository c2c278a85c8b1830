// SPDX-License-Identifier: MPL-2.0

// Package cache maps addons to their on-disk artifact locations.
//
// The layout is a stable contract that other tooling reads:
//
//	<base>/<name>/binary/<platform>-<arch>.tgz
//	<base>/<name>/<node|electron>-<version>-<depHash>/<platform>-<arch>.tgz
//
// depHash is content-addressed on the declared dependency set, so addons
// with identical dependencies and runtime version share one slot. An
// artifact file's existence is the only "built" signal.
package cache
