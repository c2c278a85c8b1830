// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Ext is the canonical artifact extension.
const Ext = ".tgz"

// epoch is the fixed modification time stamped on every entry.
var epoch = time.Unix(0, 0)

// Pack archives the immediate children of sourceDir, recursively, into
// target. Each entry is evaluated against filter (nil keeps everything); an
// excluded directory drops its subtree except for include matches below it.
// Parent directories of target are created. The archive is written to a
// temporary sibling and renamed into place, so a present target is always
// complete.
func Pack(sourceDir, target string, filter *Filter) (err error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", sourceDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", sourceDir, ErrNotADirectory)
	}
	if filepath.Ext(target) != Ext {
		return fmt.Errorf("extension of %s must be %s: %w", target, Ext, ErrBadExtension)
	}
	if err = filter.Validate(); err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath) // Best-effort cleanup
		}
	}()

	gz, err := gzip.NewWriterLevel(tmp, gzip.DefaultCompression)
	if err != nil {
		return fmt.Errorf("failed to create gzip stream: %w", err)
	}
	tw := tar.NewWriter(gz)

	children, err := os.ReadDir(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", sourceDir, err)
	}
	for _, child := range children {
		root := filepath.Join(sourceDir, child.Name())
		walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			rel, relErr := filepath.Rel(sourceDir, p)
			if relErr != nil {
				return fmt.Errorf("failed to get relative path: %w", relErr)
			}
			rel = filepath.ToSlash(rel)
			if !filter.Keep(rel) {
				if d.IsDir() && !filter.mayIncludeBelow(rel) {
					return fs.SkipDir
				}
				return nil
			}
			return writeEntry(tw, p, rel, d)
		})
		if walkErr != nil {
			return fmt.Errorf("failed to archive %s: %w", sourceDir, walkErr)
		}
	}

	if err = tw.Close(); err != nil {
		return fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err = gz.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close archive file: %w", err)
	}
	if err = os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	return nil
}

func writeEntry(tw *tar.Writer, fullPath, rel string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}

	var link string
	if info.Mode()&os.ModeSymlink != 0 {
		if link, err = os.Readlink(fullPath); err != nil {
			return fmt.Errorf("failed to read link %s: %w", fullPath, err)
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("failed to create header for %s: %w", rel, err)
	}
	hdr.Name = "./" + rel
	if info.IsDir() {
		hdr.Name += "/"
	}
	hdr.Uid, hdr.Gid = 0, 0
	hdr.Uname, hdr.Gname = "", ""
	hdr.ModTime = epoch
	hdr.AccessTime, hdr.ChangeTime = time.Time{}, time.Time{}
	hdr.PAXRecords = nil
	hdr.Format = tar.FormatUnknown

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", rel, err)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fullPath, err)
	}
	defer f.Close()
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

// Unpack extracts source into targetDir, keeping only entries that pass
// filter. targetDir is removed first if it exists and then recreated, so any
// prior contents are discarded. A filesystem root is refused outright.
func Unpack(source, targetDir string, filter *Filter) (err error) {
	absDest, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("failed to resolve destination directory: %w", err)
	}
	if isFilesystemRoot(absDest) {
		return fmt.Errorf("refusing to extract into %s: %w", absDest, ErrUnsafeTarget)
	}
	if err = filter.Validate(); err != nil {
		return err
	}

	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read gzip stream of %s: %w", source, err)
	}
	defer func() {
		if closeErr := gz.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err = os.RemoveAll(absDest); err != nil {
		return fmt.Errorf("failed to clean destination directory: %w", err)
	}
	if err = os.MkdirAll(absDest, 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	realDest, err := filepath.EvalSymlinks(absDest)
	if err != nil {
		return fmt.Errorf("failed to resolve destination directory: %w", err)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, nextErr := tr.Next()
		if nextErr == io.EOF {
			return nil
		}
		if nextErr != nil {
			return fmt.Errorf("failed to read %s: %w", source, nextErr)
		}

		name := normalizeEntry(hdr.Name)
		if name == "" || !filter.Keep(name) {
			continue
		}
		if extractErr := extractEntry(tr, hdr, absDest, realDest, name); extractErr != nil {
			return extractErr
		}
	}
}

// extractEntry writes one entry below absDest. Every write is checked
// against realDest after resolving the symlinks earlier entries created, so a
// chain of individually harmless links cannot redirect a later entry.
func extractEntry(r io.Reader, hdr *tar.Header, absDest, realDest, name string) error {
	destPath := filepath.Join(absDest, filepath.FromSlash(name))
	if !within(absDest, destPath) {
		return fmt.Errorf("%s: %w", hdr.Name, ErrUnsafeEntry)
	}
	parent, err := resolvePath(filepath.Dir(destPath))
	if err != nil {
		return fmt.Errorf("%s: %w: %w", hdr.Name, ErrUnsafeEntry, err)
	}
	if !within(realDest, parent) {
		return fmt.Errorf("%s: %w", hdr.Name, ErrUnsafeEntry)
	}
	destPath = filepath.Join(parent, filepath.Base(destPath))
	if info, lerr := os.Lstat(destPath); lerr == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%s overwrites a symlink: %w", hdr.Name, ErrUnsafeEntry)
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(destPath, hdr.FileInfo().Mode().Perm()|0o700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	case tar.TypeReg:
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}
		return extractFile(r, destPath, hdr.FileInfo().Mode().Perm())
	case tar.TypeSymlink:
		if !linkWithin(realDest, parent, hdr.Linkname) {
			return fmt.Errorf("%s -> %s: %w", hdr.Name, hdr.Linkname, ErrUnsafeEntry)
		}
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}
		if err := os.Symlink(hdr.Linkname, destPath); err != nil {
			return fmt.Errorf("failed to create symlink %s: %w", name, err)
		}
		return nil
	default:
		slog.Debug("skipping unsupported archive entry", "name", hdr.Name, "type", string(hdr.Typeflag))
		return nil
	}
}

// resolvePath returns p with the symlinks of its existing prefix resolved.
// Components that do not exist yet are appended unchanged.
func resolvePath(p string) (string, error) {
	var missing []string
	cur := p
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if _, lerr := os.Lstat(cur); lerr == nil {
			// present but unresolvable, e.g. a dangling link
			return "", err
		}
		next := filepath.Dir(cur)
		if next == cur {
			return "", err
		}
		missing = append([]string{filepath.Base(cur)}, missing...)
		cur = next
	}
}

// linkWithin reports whether a symlink in dir pointing at target resolves
// inside root. Targets must be relative and may only climb before descending,
// so the walk below is exact even through links created later.
func linkWithin(root, dir, target string) bool {
	if target == "" || filepath.IsAbs(target) || path.IsAbs(filepath.ToSlash(target)) {
		return false
	}
	cur := dir
	descended := false
	for _, part := range strings.Split(filepath.ToSlash(target), "/") {
		switch part {
		case "", ".":
		case "..":
			if descended {
				return false
			}
			cur = filepath.Dir(cur)
		default:
			descended = true
			cur = filepath.Join(cur, part)
		}
	}
	resolved, err := resolvePath(cur)
	return err == nil && within(root, resolved)
}

// extractFile writes one regular file from the tar stream.
func extractFile(r io.Reader, destPath string, perm os.FileMode) (err error) {
	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	//nolint:gosec // G110: artifacts come from the local cache written by Pack
	_, err = io.Copy(destFile, r)
	return err
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isFilesystemRoot(abs string) bool {
	return filepath.Dir(abs) == abs
}
