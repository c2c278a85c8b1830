// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("failed to create parent of %s: %v", name, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

func entryNames(t *testing.T, archivePath string) []string {
	t.Helper()
	f, err := os.Open(archivePath)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("failed to open gzip stream: %v", err)
	}
	tr := tar.NewReader(gz)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return names
		}
		if err != nil {
			t.Fatalf("failed to read tar entry: %v", err)
		}
		names = append(names, hdr.Name)
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestPack_EntryNames(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, map[string]string{"1": "", "2": "", "3": ""})

	out := filepath.Join(t.TempDir(), "nested", "a.tgz")
	if err := Pack(src, out, nil); err != nil {
		t.Fatalf("Pack() error: %v", err)
	}

	got := entryNames(t, out)
	want := []string{"./1", "./2", "./3"}
	if !slices.Equal(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestPack_Preconditions(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	file := filepath.Join(src, "file")
	writeTree(t, src, map[string]string{"file": "x"})

	tests := []struct {
		name    string
		source  string
		target  string
		wantErr error
	}{
		{"source is a file", file, filepath.Join(t.TempDir(), "a.tgz"), ErrNotADirectory},
		{"zip extension", src, filepath.Join(t.TempDir(), "a.zip"), ErrBadExtension},
		{"tar.gz extension", src, filepath.Join(t.TempDir(), "a.tar.gz"), ErrBadExtension},
		{"bad include glob", src, filepath.Join(t.TempDir(), "a.tgz"), ErrInvalidPattern},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var filter *Filter
			if tt.wantErr == ErrInvalidPattern {
				filter = &Filter{Include: []string{"[unclosed"}}
			}
			err := Pack(tt.source, tt.target, filter)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Pack() error = %v, want %v", err, tt.wantErr)
			}
			if _, statErr := os.Stat(tt.target); statErr == nil {
				t.Errorf("target %s should not exist after a rejected pack", tt.target)
			}
		})
	}
}

func TestPack_Reproducible(t *testing.T) {
	t.Parallel()

	files := map[string]string{"a.txt": "alpha", "lib/b.node": "beta", "lib/deep/c.js": "gamma"}
	srcA, srcB := t.TempDir(), t.TempDir()
	writeTree(t, srcA, files)
	writeTree(t, srcB, files)

	outA := filepath.Join(t.TempDir(), "a.tgz")
	outB := filepath.Join(t.TempDir(), "b.tgz")
	if err := Pack(srcA, outA, nil); err != nil {
		t.Fatalf("Pack(A) error: %v", err)
	}
	if err := Pack(srcB, outB, nil); err != nil {
		t.Fatalf("Pack(B) error: %v", err)
	}

	a, _ := os.ReadFile(outA)
	b, _ := os.ReadFile(outB)
	if !bytes.Equal(a, b) {
		t.Error("identical trees produced different archive bytes")
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	filters := map[string]*Filter{
		"nil":               nil,
		"empty":             {},
		"unrelated":         {Exclude: []string{"*.md"}},
		"include all":       {Include: []string{"*"}},
		"exclude overruled": {Include: []string{"[123]"}, Exclude: []string{"*"}},
	}
	for name, filter := range filters {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			src := t.TempDir()
			writeTree(t, src, map[string]string{"1": "one", "2": "two", "3": "three"})
			out := filepath.Join(t.TempDir(), "a.tgz")
			if err := Pack(src, out, filter); err != nil {
				t.Fatalf("Pack() error: %v", err)
			}

			dest := filepath.Join(t.TempDir(), "extract")
			if err := Unpack(out, dest, filter); err != nil {
				t.Fatalf("Unpack() error: %v", err)
			}

			if got := listDir(t, dest); !slices.Equal(got, []string{"1", "2", "3"}) {
				t.Fatalf("extracted = %v, want [1 2 3]", got)
			}
			for file, want := range map[string]string{"1": "one", "2": "two", "3": "three"} {
				got, err := os.ReadFile(filepath.Join(dest, file))
				if err != nil {
					t.Fatalf("failed to read %s: %v", file, err)
				}
				if string(got) != want {
					t.Errorf("%s = %q, want %q", file, got, want)
				}
			}
		})
	}
}

func TestPack_FilterNested(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"pkg/index.js":             "",
		"pkg/README.md":            "",
		"pkg/test/fixture.js":      "",
		"pkg/test/keep/needed.js":  "",
		"pkg/build/Release/a.node": "",
	})
	filter := &Filter{
		Include: []string{"pkg/test/keep/**"},
		Exclude: []string{"**/*.md", "pkg/test/**"},
	}

	out := filepath.Join(t.TempDir(), "a.tgz")
	if err := Pack(src, out, filter); err != nil {
		t.Fatalf("Pack() error: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "out")
	if err := Unpack(out, dest, nil); err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}

	for _, kept := range []string{"pkg/index.js", "pkg/build/Release/a.node", "pkg/test/keep/needed.js"} {
		if _, err := os.Stat(filepath.Join(dest, kept)); err != nil {
			t.Errorf("expected %s to be kept: %v", kept, err)
		}
	}
	for _, dropped := range []string{"pkg/README.md", "pkg/test/fixture.js"} {
		if _, err := os.Stat(filepath.Join(dest, dropped)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be dropped, stat err = %v", dropped, err)
		}
	}
}

func TestUnpack_Filter(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, map[string]string{"addon.node": "bin", "docs.md": "doc", "keep.md": "keep"})
	out := filepath.Join(t.TempDir(), "a.tgz")
	if err := Pack(src, out, nil); err != nil {
		t.Fatalf("Pack() error: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "out")
	filter := &Filter{Include: []string{"keep.md"}, Exclude: []string{"*.md"}}
	if err := Unpack(out, dest, filter); err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}

	if got := listDir(t, dest); !slices.Equal(got, []string{"addon.node", "keep.md"}) {
		t.Errorf("extracted = %v, want [addon.node keep.md]", got)
	}
}

func TestUnpack_DiscardsStaleContents(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, map[string]string{"fresh.txt": "new"})
	out := filepath.Join(t.TempDir(), "a.tgz")
	if err := Pack(src, out, nil); err != nil {
		t.Fatalf("Pack() error: %v", err)
	}

	dest := t.TempDir()
	writeTree(t, dest, map[string]string{"stale.txt": "old", "sub/stale2.txt": "old"})

	if err := Unpack(out, dest, nil); err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	if got := listDir(t, dest); !slices.Equal(got, []string{"fresh.txt"}) {
		t.Errorf("extracted = %v, want [fresh.txt]", got)
	}
}

func TestUnpack_CreatesMissingDestination(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, map[string]string{"x": "x"})
	out := filepath.Join(t.TempDir(), "a.tgz")
	if err := Pack(src, out, nil); err != nil {
		t.Fatalf("Pack() error: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "does", "not", "exist")
	if err := Unpack(out, dest, nil); err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	if got := listDir(t, dest); !slices.Equal(got, []string{"x"}) {
		t.Errorf("extracted = %v, want [x]", got)
	}
}

func TestUnpack_RefusesRoot(t *testing.T) {
	t.Parallel()

	root := "/"
	if runtime.GOOS == "windows" {
		root = `C:\`
	}
	err := Unpack(filepath.Join(t.TempDir(), "missing.tgz"), root, nil)
	if !errors.Is(err, ErrUnsafeTarget) {
		t.Fatalf("Unpack(%q) error = %v, want ErrUnsafeTarget", root, err)
	}
}

type tarEntry struct {
	name string
	typ  byte
	link string
	body string
}

// writeTar builds a .tgz from raw headers, bypassing Pack.
func writeTar(t *testing.T, out string, entries []tarEntry) {
	t.Helper()
	f, err := os.Create(out)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Typeflag: e.typ, Linkname: e.link, Mode: 0o755, Size: int64(len(e.body))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("failed to write header %s: %v", e.name, err)
		}
		if e.body != "" {
			if _, err := io.WriteString(tw, e.body); err != nil {
				t.Fatalf("failed to write body %s: %v", e.name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("failed to close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close gzip: %v", err)
	}
}

func TestUnpack_RejectsEscapingSymlink(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "evil.tgz")
	writeTar(t, out, []tarEntry{{name: "./link", typ: tar.TypeSymlink, link: "../../outside"}})

	base := t.TempDir()
	dest := filepath.Join(base, "dest")
	err := Unpack(out, dest, nil)
	if !errors.Is(err, ErrUnsafeEntry) {
		t.Fatalf("Unpack() error = %v, want ErrUnsafeEntry", err)
	}
	if _, statErr := os.Lstat(filepath.Join(dest, "link")); !os.IsNotExist(statErr) {
		t.Error("escaping symlink was created")
	}
}

func TestUnpack_RejectsSymlinkChains(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on Windows")
	}

	tests := []struct {
		name    string
		entries []tarEntry
	}{
		{"climb through a self link", []tarEntry{
			{name: "./a", typ: tar.TypeSymlink, link: "."},
			{name: "./b", typ: tar.TypeSymlink, link: "a/.."},
			{name: "./b/escaped.txt", typ: tar.TypeReg, body: "x"},
		}},
		{"climb from a nested link", []tarEntry{
			{name: "./d/", typ: tar.TypeDir},
			{name: "./d/up", typ: tar.TypeSymlink, link: ".."},
			{name: "./d/up/up", typ: tar.TypeSymlink, link: ".."},
			{name: "./d/up/up/escaped.txt", typ: tar.TypeReg, body: "x"},
		}},
		{"overwrite a link", []tarEntry{
			{name: "./self", typ: tar.TypeSymlink, link: "."},
			{name: "./self", typ: tar.TypeReg, body: "x"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := filepath.Join(t.TempDir(), "evil.tgz")
			writeTar(t, out, tt.entries)

			base := t.TempDir()
			dest := filepath.Join(base, "dest")
			err := Unpack(out, dest, nil)
			if !errors.Is(err, ErrUnsafeEntry) {
				t.Fatalf("Unpack() error = %v, want ErrUnsafeEntry", err)
			}
			if _, statErr := os.Stat(filepath.Join(base, "escaped.txt")); !os.IsNotExist(statErr) {
				t.Errorf("file written outside the destination, stat err = %v", statErr)
			}
		})
	}
}

func TestUnpack_WritesThroughInnerSymlink(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on Windows")
	}

	out := filepath.Join(t.TempDir(), "a.tgz")
	writeTar(t, out, []tarEntry{
		{name: "./real/", typ: tar.TypeDir},
		{name: "./lib", typ: tar.TypeSymlink, link: "real"},
		{name: "./lib/x.txt", typ: tar.TypeReg, body: "inside"},
	})

	dest := filepath.Join(t.TempDir(), "dest")
	if err := Unpack(out, dest, nil); err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dest, "real", "x.txt"))
	if err != nil {
		t.Fatalf("failed to read extracted file: %v", err)
	}
	if string(got) != "inside" {
		t.Errorf("x.txt = %q, want %q", got, "inside")
	}
}

func TestPack_ExcludedDirectoryDropsSubtree(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"sqlite3/src/sqlite3.c":          "",
		"sqlite3/src/deep/sqlite3.h":     "",
		"sqlite3/lib/binding/addon.node": "",
	})

	out := filepath.Join(t.TempDir(), "a.tgz")
	if err := Pack(src, out, &Filter{Exclude: []string{"sqlite3/src"}}); err != nil {
		t.Fatalf("Pack() error: %v", err)
	}

	var hasBinding bool
	for _, name := range entryNames(t, out) {
		if strings.HasPrefix(name, "./sqlite3/src") {
			t.Errorf("entry %s packed from an excluded directory", name)
		}
		if name == "./sqlite3/lib/binding/addon.node" {
			hasBinding = true
		}
	}
	if !hasBinding {
		t.Error("sibling of the excluded directory was dropped")
	}
}

func TestUnpack_ExcludedDirectoryDropsSubtree(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, map[string]string{"docs/a.md": "", "docs/img/b.png": "", "index.js": ""})
	out := filepath.Join(t.TempDir(), "a.tgz")
	if err := Pack(src, out, nil); err != nil {
		t.Fatalf("Pack() error: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "out")
	if err := Unpack(out, dest, &Filter{Exclude: []string{"docs"}}); err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	if got := listDir(t, dest); !slices.Equal(got, []string{"index.js"}) {
		t.Errorf("extracted = %v, want [index.js]", got)
	}
}

func TestPackUnpack_Symlinks(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on Windows")
	}

	src := t.TempDir()
	writeTree(t, src, map[string]string{"pkg/bin/cli.js": "#!/usr/bin/env node"})
	if err := os.MkdirAll(filepath.Join(src, ".bin"), 0o755); err != nil {
		t.Fatalf("failed to create .bin: %v", err)
	}
	if err := os.Symlink("../pkg/bin/cli.js", filepath.Join(src, ".bin", "cli")); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	out := filepath.Join(t.TempDir(), "a.tgz")
	if err := Pack(src, out, nil); err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	dest := filepath.Join(t.TempDir(), "out")
	if err := Unpack(out, dest, nil); err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}

	link, err := os.Readlink(filepath.Join(dest, ".bin", "cli"))
	if err != nil {
		t.Fatalf("Readlink() error: %v", err)
	}
	if link != "../pkg/bin/cli.js" {
		t.Errorf("link = %q, want %q", link, "../pkg/bin/cli.js")
	}
}
