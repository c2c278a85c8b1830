// SPDX-License-Identifier: MPL-2.0

package build

import (
	"os"
	"path/filepath"

	"ham-cli/pkg/addon"
)

// rebuildToolEntry is the @electron/rebuild CLI script, relative to a
// node_modules directory.
var rebuildToolEntry = filepath.Join("@electron", "rebuild", "lib", "cli.js")

// resolveRebuildEntry returns configured when set, else the first
// node_modules/@electron/rebuild/lib/cli.js found walking up from startDir.
func resolveRebuildEntry(configured, startDir string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	var searched []string
	dir := filepath.Clean(startDir)
	for {
		candidate := filepath.Join(dir, "node_modules", rebuildToolEntry)
		searched = append(searched, candidate)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &RebuildToolNotFoundError{Searched: searched}
		}
		dir = parent
	}
}

// rebuildArch maps an addon architecture to the name the rebuild tool
// expects (Node.js process.arch).
func rebuildArch(a addon.Arch) string {
	if a == addon.ArchX86 {
		return "ia32"
	}
	return string(a)
}
