// SPDX-License-Identifier: MPL-2.0

// Package registry owns the ham document on disk and the in-memory view of
// its addon list.
//
// Store reads, validates and atomically rewrites the document. Registry is a
// lookup/upsert view over one decoded document; mutations go through
// Store.Update, which loads a fresh copy, applies the change and writes the
// whole document back.
package registry
