// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ham-cli/pkg/addon"
)

func TestDependencyHash_OrderIndependent(t *testing.T) {
	t.Parallel()

	a := map[string]string{}
	a["better-sqlite3"] = "^9.0.0"
	a["sharp"] = "0.32.6"
	a["bindings"] = "*"

	b := map[string]string{}
	b["bindings"] = "*"
	b["sharp"] = "0.32.6"
	b["better-sqlite3"] = "^9.0.0"

	if DependencyHash(a) != DependencyHash(b) {
		t.Errorf("hash depends on insertion order: %s != %s", DependencyHash(a), DependencyHash(b))
	}
	if got := len(DependencyHash(a)); got != DependencyHashLen {
		t.Errorf("len(hash) = %d, want %d", got, DependencyHashLen)
	}
}

func TestDependencyHash_KnownValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		deps map[string]string
		want string
	}{
		// md5("") = d41d8cd98f00b204e9800998ecf8427e
		{"empty", map[string]string{}, "d41d8cd98f"},
	}
	for _, tt := range tests {
		if got := DependencyHash(tt.deps); got != tt.want {
			t.Errorf("%s: DependencyHash() = %s, want %s", tt.name, got, tt.want)
		}
	}

	if DependencyHash(map[string]string{"a": "1"}) == DependencyHash(map[string]string{"a": "2"}) {
		t.Error("different version ranges should produce different hashes")
	}
}

func TestResolver_Dir(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	r := NewResolver("/unused", base)
	deps := map[string]string{"better-sqlite3": "^9.0.0"}
	hash := DependencyHash(deps)

	tests := []struct {
		name  string
		addon addon.Addon
		want  string
	}{
		{"binary", &addon.BinaryAddon{Name: "libsimple"}, filepath.Join(base, "libsimple", "binary")},
		{"node", &addon.RuntimeAddon{Name: "sqlite", Runtime: addon.RuntimeNode, NodeVersion: 18, Dependencies: deps},
			filepath.Join(base, "sqlite", "node-18-"+hash)},
		{"electron", &addon.RuntimeAddon{Name: "sqlite", Runtime: addon.RuntimeElectron, ElectronVersion: "25.3.0", Dependencies: deps},
			filepath.Join(base, "sqlite", "electron-25.3.0-"+hash)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := r.Dir(tt.addon)
			if err != nil {
				t.Fatalf("Dir() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Dir() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolver_SharedSlotForIdenticalDependencies(t *testing.T) {
	t.Parallel()

	r := NewResolver(t.TempDir(), ".addons")
	first := &addon.RuntimeAddon{Name: "x", Runtime: addon.RuntimeNode, NodeVersion: 20,
		Dependencies: map[string]string{"a": "1", "b": "2"}}
	second := &addon.RuntimeAddon{Name: "x", Runtime: addon.RuntimeNode, NodeVersion: 20,
		Dependencies: map[string]string{"b": "2", "a": "1"}}

	d1, err := r.Dir(first)
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	d2, err := r.Dir(second)
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if d1 != d2 {
		t.Errorf("Dir() differs for identical dependency sets: %s vs %s", d1, d2)
	}
}

func TestResolver_RelativeBase(t *testing.T) {
	t.Parallel()

	docDir := t.TempDir()
	r := NewResolver(docDir, "./.addons")
	if r.BaseDir() != filepath.Join(docDir, ".addons") {
		t.Errorf("BaseDir() = %s", r.BaseDir())
	}
}

func TestResolver_Artifact(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	r := NewResolver("/unused", base)
	got, err := r.Artifact(&addon.BinaryAddon{Name: "lib"}, addon.Target{Platform: addon.PlatformDarwin, Arch: addon.ArchArm64})
	if err != nil {
		t.Fatalf("Artifact() error: %v", err)
	}
	if want := filepath.Join(base, "lib", "binary", "darwin-arm64.tgz"); got != want {
		t.Errorf("Artifact() = %s, want %s", got, want)
	}
}

func TestResolver_UnknownRuntime(t *testing.T) {
	t.Parallel()

	r := NewResolver("/unused", t.TempDir())
	_, err := r.Dir(&addon.RuntimeAddon{Name: "x", Runtime: "deno"})
	if !errors.Is(err, addon.ErrUnknownAddonType) {
		t.Errorf("Dir() error = %v, want ErrUnknownAddonType", err)
	}
}

func TestResolver_RejectsUnsafeNames(t *testing.T) {
	t.Parallel()

	r := NewResolver("/unused", t.TempDir())
	for _, name := range []string{"", " ", "..", "../escape", `dir\name`, "@scope/pkg", "c:lib", "NUL", "com1.node"} {
		if _, err := r.Dir(&addon.BinaryAddon{Name: name}); !errors.Is(err, ErrInvalidAddonName) {
			t.Errorf("Dir(%q) error = %v, want ErrInvalidAddonName", name, err)
		}
	}
	for _, name := range []string{"better-sqlite3", "lib.simple", "console"} {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v", name, err)
		}
	}
}

func TestResolver_Inventory(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	r := NewResolver("/unused", base)
	bin := &addon.BinaryAddon{Name: "lib"}
	missing := &addon.BinaryAddon{Name: "never-imported"}

	dir, _ := r.Dir(bin)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error: %v", err)
	}
	for name, content := range map[string]string{
		"linux-x64.tgz":    "abc",
		"notes.txt":        "ignored",
		"garbage-xyz.tgz":  "ignored",
		"darwin-arm64.tgz": "defg",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error: %v", err)
		}
	}

	slots, err := r.Inventory([]addon.Addon{bin, missing})
	if err != nil {
		t.Fatalf("Inventory() error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}
	if len(slots[0].Artifacts) != 2 {
		t.Fatalf("artifacts = %+v, want 2", slots[0].Artifacts)
	}
	first := slots[0].Artifacts[0]
	if first.Target.String() != "darwin-arm64" || first.Size != 4 || len(first.Digest) != 64 {
		t.Errorf("first artifact = %+v", first)
	}
	if len(slots[1].Artifacts) != 0 {
		t.Errorf("missing slot artifacts = %+v, want none", slots[1].Artifacts)
	}
}
