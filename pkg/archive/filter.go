// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter selects archive entries by doublestar glob. Patterns are matched
// against the entry path relative to the archive root, with forward slashes
// and no leading "./" (e.g. "build/Release/addon.node").
type Filter struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// Keep reports whether an entry survives the filter. An include match keeps
// the entry even if an exclude pattern also matches. Otherwise the entry is
// dropped when it, or any of its ancestor directories, is excluded and not
// itself included. Entries matching neither are kept. A nil filter keeps
// everything.
func (f *Filter) Keep(entry string) bool {
	if f == nil {
		return true
	}
	name := normalizeEntry(entry)
	if matchAny(f.Include, name) {
		return true
	}
	for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if matchAny(f.Exclude, dir) && !matchAny(f.Include, dir) {
			return false
		}
	}
	return !matchAny(f.Exclude, name)
}

// mayIncludeBelow reports whether some include pattern could match an entry
// inside dir. Pack uses it to skip excluded subtrees.
func (f *Filter) mayIncludeBelow(dir string) bool {
	if f == nil {
		return true
	}
	prefix := normalizeEntry(dir) + "/"
	depth := strings.Count(prefix, "/")
	for _, p := range f.Include {
		if !strings.Contains(p, "**") && strings.Count(p, "/") < depth {
			continue
		}
		lit := literalPrefix(p)
		if strings.HasPrefix(prefix, lit) || strings.HasPrefix(lit, prefix) {
			return true
		}
	}
	return false
}

// literalPrefix returns p up to its first glob metacharacter.
func literalPrefix(p string) string {
	if i := strings.IndexAny(p, "*?[{\\"); i >= 0 {
		return p[:i]
	}
	return p
}

// Validate reports the first malformed pattern.
func (f *Filter) Validate() error {
	if f == nil {
		return nil
	}
	for _, p := range slices.Concat(f.Include, f.Exclude) {
		if !doublestar.ValidatePattern(p) {
			return &InvalidPatternError{Pattern: p}
		}
	}
	return nil
}

// Clone returns a deep copy; a nil filter clones to nil.
func (f *Filter) Clone() *Filter {
	if f == nil {
		return nil
	}
	return &Filter{Include: slices.Clone(f.Include), Exclude: slices.Clone(f.Exclude)}
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

func normalizeEntry(entry string) string {
	return strings.TrimPrefix(path.Clean("/"+entry), "/")
}
