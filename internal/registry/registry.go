// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"ham-cli/pkg/addon"
)

// Registry is a lookup and upsert view over one decoded document.
// Expected scale is tens of addons, so lookups are linear scans.
type Registry struct {
	doc *addon.Document
}

// New wraps doc. Mutations through the Registry modify doc in place.
func New(doc *addon.Document) *Registry {
	return &Registry{doc: doc}
}

// Document returns the underlying document.
func (r *Registry) Document() *addon.Document {
	return r.doc
}

// Addons returns the declared addons in document order.
func (r *Registry) Addons() []addon.Addon {
	return r.doc.Addons
}

// Find returns the addon with the exact (kind, name) identity.
func (r *Registry) Find(kind addon.Kind, name string) (addon.Addon, error) {
	id := addon.Identity{Kind: kind, Name: name}
	if i := r.index(id); i >= 0 {
		return r.doc.Addons[i], nil
	}
	return nil, &AddonNotFoundError{Addon: id}
}

// Binary returns the binary addon called name, if declared.
func (r *Registry) Binary(name string) (*addon.BinaryAddon, bool) {
	a, err := r.Find(addon.KindBinary, name)
	if err != nil {
		return nil, false
	}
	b, ok := a.(*addon.BinaryAddon)
	return b, ok
}

// Upsert replaces the record with a's identity, or appends a when absent.
// It reports whether an existing record was replaced.
func (r *Registry) Upsert(a addon.Addon) bool {
	if i := r.index(a.Identity()); i >= 0 {
		r.doc.Addons[i] = a
		return true
	}
	r.doc.Addons = append(r.doc.Addons, a)
	return false
}

// Installable returns the addons that have a build pipeline, in document
// order. Binary addons are only importable and are never included.
func (r *Registry) Installable() []*addon.RuntimeAddon {
	var out []*addon.RuntimeAddon
	for _, a := range r.doc.Addons {
		switch a := a.(type) {
		case *addon.RuntimeAddon:
			out = append(out, a)
		case *addon.BinaryAddon:
		}
	}
	return out
}

func (r *Registry) index(id addon.Identity) int {
	for i, a := range r.doc.Addons {
		if a.Identity() == id {
			return i
		}
	}
	return -1
}
