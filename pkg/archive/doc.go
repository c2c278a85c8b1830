// SPDX-License-Identifier: MPL-2.0

// Package archive packs directories into gzip-compressed tarballs (".tgz")
// and unpacks them, both subject to an include/exclude glob [Filter].
//
// Archives are reproducible: entries are written in lexical order with
// zeroed ownership and timestamps, so identical trees produce identical bytes.
// [Unpack] is destructive and replaces the destination directory wholesale.
package archive
