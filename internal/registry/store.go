// SPDX-License-Identifier: MPL-2.0

package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ham-cli/pkg/addon"
	"ham-cli/pkg/cueutil"
)

// DefaultFileName is the document name looked up in the working directory.
const DefaultFileName = ".hamrc.🐹"

//go:embed hamconfig_schema.cue
var hamConfigSchema []byte

// Store reads and writes one ham document.
type Store struct {
	path string
}

// NewStore creates a store for the document at path. A relative path is
// made absolute so the lock identity and relative-path resolution are stable.
func NewStore(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve ham config path %s: %w", path, err)
	}
	return &Store{path: abs}, nil
}

// Path returns the absolute document path. It is also the lock identity.
func (s *Store) Path() string {
	return s.path
}

// Dir returns the directory containing the document. The cache base and
// patch scripts are resolved relative to it.
func (s *Store) Dir() string {
	return filepath.Dir(s.path)
}

// Load reads, decodes and validates the document.
func (s *Store) Load() (*addon.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &ConfigUnreadableError{Path: s.path, Err: err}
	}

	doc, err := addon.Decode(data)
	if err != nil {
		return nil, &ConfigUnreadableError{Path: s.path, Err: err}
	}
	if err := cueutil.Validate(hamConfigSchema, data, "#HamConfig", cueutil.WithFilename(filepath.Base(s.path))); err != nil {
		return nil, &ConfigUnreadableError{Path: s.path, Err: err}
	}
	for _, a := range doc.Addons {
		if err := validateFilters(a); err != nil {
			return nil, &ConfigUnreadableError{Path: s.path, Err: fmt.Errorf("%s: %w", a.Identity(), err)}
		}
	}
	return doc, nil
}

// Save writes the whole document through a sibling temp file and a rename,
// preserving the existing file mode.
func (s *Store) Save(doc *addon.Document) (err error) {
	data, err := addon.Encode(doc)
	if err != nil {
		return err
	}

	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(s.path); statErr == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return fmt.Errorf("stat ham config: %w", statErr)
	}

	tmp, err := os.CreateTemp(s.Dir(), ".hamrc-*")
	if err != nil {
		return fmt.Errorf("create temp ham config: %w", err)
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write ham config: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close ham config: %w", err)
	}
	if err = os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("set ham config permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace ham config: %w", err)
	}
	renamed = true
	return nil
}

// Update performs one read-modify-write cycle: it loads the current
// document, lets fn mutate a copy through a Registry, and saves the copy.
// Nothing is written when fn fails.
func (s *Store) Update(fn func(*Registry) error) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	reg := New(doc.Clone())
	if err := fn(reg); err != nil {
		return err
	}
	return s.Save(reg.Document())
}

func validateFilters(a addon.Addon) error {
	if err := a.ExtractFilter().Validate(); err != nil {
		return err
	}
	if r, ok := a.(*addon.RuntimeAddon); ok {
		return r.Pack.Validate()
	}
	return nil
}
