// SPDX-License-Identifier: MPL-2.0

// Package types holds small validated primitives shared across ham packages.
package types
