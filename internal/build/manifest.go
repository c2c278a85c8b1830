// SPDX-License-Identifier: MPL-2.0

package build

import (
	"fmt"
	"os"
	"path/filepath"

	"ham-cli/pkg/addon"

	"github.com/goccy/go-json"
)

const (
	manifestFileName = "package.json"
	manifestVersion  = "1.0.0"
	manifestLicense  = "MIT"
)

// manifest is the synthetic package.json that makes the installer fetch an
// addon's dependencies into the scratch directory.
type manifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	License      string            `json:"license"`
	Dependencies map[string]string `json:"dependencies"`
}

func writeManifest(dir string, a *addon.RuntimeAddon) error {
	deps := a.Dependencies
	if deps == nil {
		deps = map[string]string{}
	}
	data, err := json.MarshalIndent(manifest{
		Name:         a.Name,
		Version:      manifestVersion,
		License:      manifestLicense,
		Dependencies: deps,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", manifestFileName, err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFileName), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", manifestFileName, err)
	}
	return nil
}
