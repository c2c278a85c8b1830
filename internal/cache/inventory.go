// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ham-cli/pkg/addon"
	"ham-cli/pkg/archive"

	"github.com/zeebo/blake3"
)

type (
	// Artifact describes one archive present in a cache slot.
	Artifact struct {
		Target addon.Target
		Path   string
		Size   int64
		// Digest is the hex BLAKE3 hash of the archive bytes.
		Digest string
	}

	// Slot is the inventory of one addon's cache directory.
	Slot struct {
		Addon     addon.Identity
		Dir       string
		Artifacts []Artifact
	}
)

// Inventory lists the artifacts currently present for each addon, in the
// order given. Missing slot directories yield empty slots; files whose name
// is not "<platform>-<arch>.tgz" are ignored.
func (r *Resolver) Inventory(addons []addon.Addon) ([]Slot, error) {
	slots := make([]Slot, 0, len(addons))
	for _, a := range addons {
		dir, err := r.Dir(a)
		if err != nil {
			return nil, err
		}
		slot := Slot{Addon: a.Identity(), Dir: dir}

		entries, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read cache directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), archive.Ext) {
				continue
			}
			t, parseErr := addon.ParseTarget(strings.TrimSuffix(e.Name(), archive.Ext))
			if parseErr != nil {
				slog.Debug("ignoring unrecognized cache file", "path", filepath.Join(dir, e.Name()), "error", parseErr)
				continue
			}
			art, artErr := describe(filepath.Join(dir, e.Name()), t)
			if artErr != nil {
				return nil, artErr
			}
			slot.Artifacts = append(slot.Artifacts, art)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func describe(path string, t addon.Target) (art Artifact, err error) {
	f, err := os.Open(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	h := blake3.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to hash artifact %s: %w", path, err)
	}
	return Artifact{
		Target: t,
		Path:   path,
		Size:   n,
		Digest: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
