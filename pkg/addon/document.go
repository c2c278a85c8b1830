// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrDuplicateAddon is returned when a document declares the same (kind, name) twice.
var ErrDuplicateAddon = errors.New("duplicate addon")

type (
	// Document is the decoded ham document (".hamrc.🐹"). It is the root of
	// all persisted state and is treated as copy-on-write: callers Clone,
	// mutate the copy, and write the whole document back.
	Document struct {
		// Base is the cache root, relative to the document's directory.
		Base   string
		Addons []Addon
		Npm    *NpmConfig
	}

	// NpmConfig carries installer options passed through verbatim.
	NpmConfig struct {
		Registry string `json:"registry,omitempty"`
	}

	documentJSON struct {
		Base   string            `json:"base"`
		Addons []json.RawMessage `json:"addons,omitempty"`
		Npm    *NpmConfig        `json:"npm,omitempty"`
	}

	addonHeader struct {
		Type Kind   `json:"type"`
		Name string `json:"name"`
	}

	binaryJSON struct {
		Type          Kind     `json:"type"`
		Name          string   `json:"name"`
		Targets       []Target `json:"targets"`
		ExtractFilter *Filter  `json:"extractFilter,omitempty"`
	}

	nodeJSON struct {
		Type          Kind              `json:"type"`
		Name          string            `json:"name"`
		NodeVersion   int               `json:"nodeVersion"`
		Dependencies  map[string]string `json:"dependencies"`
		Patch         string            `json:"patch,omitempty"`
		Filter        *Filter           `json:"filter,omitempty"`
		ExtractFilter *Filter           `json:"extractFilter,omitempty"`
	}

	electronJSON struct {
		Type            Kind              `json:"type"`
		Name            string            `json:"name"`
		ElectronVersion string            `json:"electronVersion"`
		Dependencies    map[string]string `json:"dependencies"`
		Patch           string            `json:"patch,omitempty"`
		Filter          *Filter           `json:"filter,omitempty"`
		ExtractFilter   *Filter           `json:"extractFilter,omitempty"`
	}
)

// Decode parses a JSON ham document. An addon whose "type" is not one of
// binary, node or electron yields an UnknownAddonTypeError.
func Decode(data []byte) (*Document, error) {
	var wire documentJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode ham document: %w", err)
	}

	doc := &Document{Base: wire.Base, Npm: wire.Npm}
	seen := make(map[Identity]int, len(wire.Addons))
	for i, raw := range wire.Addons {
		a, err := decodeAddon(raw)
		if err != nil {
			return nil, fmt.Errorf("addons[%d]: %w", i, err)
		}
		id := a.Identity()
		if first, dup := seen[id]; dup {
			return nil, fmt.Errorf("addons[%d]: %w: %s already declared at addons[%d]", i, ErrDuplicateAddon, id, first)
		}
		seen[id] = i
		doc.Addons = append(doc.Addons, a)
	}
	return doc, nil
}

// Encode renders the document as two-space indented JSON with a trailing newline.
func Encode(doc *Document) ([]byte, error) {
	wire := documentJSON{Base: doc.Base, Npm: doc.Npm}
	for _, a := range doc.Addons {
		raw, err := encodeAddon(a)
		if err != nil {
			return nil, err
		}
		wire.Addons = append(wire.Addons, raw)
	}
	out, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode ham document: %w", err)
	}
	return append(out, '\n'), nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{Base: d.Base}
	if d.Npm != nil {
		npm := *d.Npm
		c.Npm = &npm
	}
	for _, a := range d.Addons {
		c.Addons = append(c.Addons, a.Clone())
	}
	return c
}

// Registry returns the npm registry override, or "" when none is set.
func (d *Document) Registry() string {
	if d.Npm == nil {
		return ""
	}
	return d.Npm.Registry
}

func decodeAddon(raw json.RawMessage) (Addon, error) {
	var header addonHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, err
	}

	switch header.Type {
	case KindBinary:
		var w binaryJSON
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		for _, t := range w.Targets {
			if err := t.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", header.Name, err)
			}
		}
		return &BinaryAddon{Name: w.Name, Targets: w.Targets, Extract: w.ExtractFilter}, nil
	case KindNode:
		var w nodeJSON
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &RuntimeAddon{
			Name:         w.Name,
			Runtime:      RuntimeNode,
			NodeVersion:  w.NodeVersion,
			Dependencies: nonNil(w.Dependencies),
			Patch:        w.Patch,
			Pack:         w.Filter,
			Extract:      w.ExtractFilter,
		}, nil
	case KindElectron:
		var w electronJSON
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &RuntimeAddon{
			Name:            w.Name,
			Runtime:         RuntimeElectron,
			ElectronVersion: w.ElectronVersion,
			Dependencies:    nonNil(w.Dependencies),
			Patch:           w.Patch,
			Pack:            w.Filter,
			Extract:         w.ExtractFilter,
		}, nil
	default:
		return nil, &UnknownAddonTypeError{Kind: header.Type}
	}
}

func encodeAddon(a Addon) (json.RawMessage, error) {
	var v any
	switch a := a.(type) {
	case *BinaryAddon:
		v = binaryJSON{Type: KindBinary, Name: a.Name, Targets: nonNilTargets(a.Targets), ExtractFilter: a.Extract}
	case *RuntimeAddon:
		switch a.Runtime {
		case RuntimeNode:
			v = nodeJSON{
				Type: KindNode, Name: a.Name, NodeVersion: a.NodeVersion,
				Dependencies: nonNil(a.Dependencies), Patch: a.Patch,
				Filter: a.Pack, ExtractFilter: a.Extract,
			}
		case RuntimeElectron:
			v = electronJSON{
				Type: KindElectron, Name: a.Name, ElectronVersion: a.ElectronVersion,
				Dependencies: nonNil(a.Dependencies), Patch: a.Patch,
				Filter: a.Pack, ExtractFilter: a.Extract,
			}
		default:
			return nil, &UnknownAddonTypeError{Kind: Kind(a.Runtime)}
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownAddonType, a)
	}
	return json.Marshal(v)
}

func nonNil(deps map[string]string) map[string]string {
	if deps == nil {
		return map[string]string{}
	}
	return deps
}

func nonNilTargets(targets []Target) []Target {
	if targets == nil {
		return []Target{}
	}
	return targets
}
