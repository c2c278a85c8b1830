// SPDX-License-Identifier: MPL-2.0

// Package addon defines the data model of a ham document.
//
// A document declares addons of three kinds, each identified by (kind, name):
//   - [BinaryAddon]: prebuilt artifacts imported by hand, one per [Target]
//   - [RuntimeAddon] with [RuntimeNode]: npm dependencies installed for a Node.js major version
//   - [RuntimeAddon] with [RuntimeElectron]: npm dependencies rebuilt against an Electron version
//
// [Addon] is a sealed union: the only implementations are *BinaryAddon and
// *RuntimeAddon, and every consumer switches over both. [Match] infers a
// [Target] from a file name.
package addon
