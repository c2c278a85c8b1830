// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"ham-cli/internal/cache"
	"ham-cli/internal/config"
	"ham-cli/internal/fslock"
	"ham-cli/internal/registry"
	"ham-cli/pkg/addon"
	"ham-cli/pkg/archive"
)

type (
	// Options configures an Orchestrator.
	Options struct {
		// Store is the ham document the orchestrator reads and, for imports, writes.
		Store *registry.Store
		// Host is the target of the running machine; runtime addons are only
		// built for it. The zero Target means no target can be built.
		Host addon.Target
		// Runner runs pipeline subprocesses. Nil means an ExecRunner on the
		// process's standard streams honoring Settings.Build.StageTimeout.
		Runner Runner
		// Settings supplies installer, rebuild, patch, temp dir and lock
		// settings. Nil means config.DefaultConfig().
		Settings *config.Config
		// Logger receives pipeline progress. Nil means slog.Default().
		Logger *slog.Logger
	}

	// Orchestrator ensures addon artifacts exist and materializes them.
	Orchestrator struct {
		store    *registry.Store
		host     addon.Target
		runner   Runner
		settings *config.Config
		logger   *slog.Logger
	}

	// Result describes the artifact an operation used or produced.
	Result struct {
		Addon    addon.Identity
		Target   addon.Target
		Artifact string
		// Built reports whether the install pipeline ran.
		Built bool
	}
)

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	settings := opts.Settings
	if settings == nil {
		settings = config.DefaultConfig()
	}
	runner := opts.Runner
	if runner == nil {
		runner = NewExecRunner(settings.Build.StageTimeout)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:    opts.Store,
		host:     opts.Host,
		runner:   runner,
		settings: settings,
		logger:   logger,
	}
}

// Ensure makes the artifact of addon (kind, name) for target available and
// extracts it into dest, replacing dest's previous contents. A missing
// runtime addon artifact is built first, which requires target to be the host.
func (o *Orchestrator) Ensure(ctx context.Context, kind addon.Kind, name string, target addon.Target, dest string) (*Result, error) {
	doc, err := o.store.Load()
	if err != nil {
		return nil, err
	}
	a, err := registry.New(doc).Find(kind, name)
	if err != nil {
		return nil, err
	}

	res, err := o.ensureArtifact(ctx, doc, a, target, false)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("extracting addon", "addon", a.Identity().String(), "artifact", res.Artifact, "dest", dest)
	if err := archive.Unpack(res.Artifact, dest, a.ExtractFilter()); err != nil {
		return nil, fmt.Errorf("extract %s: %w", a.Identity(), err)
	}
	return res, nil
}

// Install makes the host artifact of addon (kind, name) present in the
// cache. With force, a runtime addon is rebuilt even when cached. A binary
// addon succeeds only when its host artifact was imported.
func (o *Orchestrator) Install(ctx context.Context, kind addon.Kind, name string, force bool) (*Result, error) {
	doc, err := o.store.Load()
	if err != nil {
		return nil, err
	}
	a, err := registry.New(doc).Find(kind, name)
	if err != nil {
		return nil, err
	}
	return o.ensureArtifact(ctx, doc, a, o.host, force)
}

// InstallAll installs every runtime addon of the document for the host, in
// document order, stopping at the first failure. Binary addons are skipped.
func (o *Orchestrator) InstallAll(ctx context.Context, force bool) ([]Result, error) {
	doc, err := o.store.Load()
	if err != nil {
		return nil, err
	}

	installable := registry.New(doc).Installable()
	results := make([]Result, 0, len(installable))
	for _, a := range installable {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := o.ensureArtifact(ctx, doc, a, o.host, force)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

// ImportBinary packs srcDir as the artifact of binary addon name for target
// and records the target in the document. A nil target is guessed from the
// base name of srcDir. The document update runs under the document lock.
func (o *Orchestrator) ImportBinary(ctx context.Context, name, srcDir string, target *addon.Target) (*Result, error) {
	var t addon.Target
	if target != nil {
		t = *target
	} else {
		guessed, ok := addon.Match(filepath.Base(filepath.Clean(srcDir)))
		if !ok {
			return nil, &TargetGuessFailedError{Name: filepath.Base(srcDir)}
		}
		t = guessed
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := cache.ValidateName(name); err != nil {
		return nil, err
	}

	lock, err := fslock.Acquire(ctx, o.settings.Build.TempDir, o.store.Path(), o.settings.Lock.Wait)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	res := &Result{Addon: addon.Identity{Kind: addon.KindBinary, Name: name}, Target: t}
	err = o.store.Update(func(reg *registry.Registry) error {
		b, ok := reg.Binary(name)
		if !ok {
			b = &addon.BinaryAddon{Name: name}
		}
		if !b.AddTarget(t) {
			o.logger.Debug("target already recorded", "addon", res.Addon.String(), "target", t.String())
		}

		artifact, err := o.resolver(reg.Document()).Artifact(b, t)
		if err != nil {
			return err
		}
		if err := archive.Pack(srcDir, artifact, nil); err != nil {
			return fmt.Errorf("pack %s: %w", srcDir, err)
		}
		res.Artifact = artifact
		reg.Upsert(b)
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("imported binary addon", "addon", name, "target", t.String(), "artifact", res.Artifact)
	return res, nil
}

// ensureArtifact returns the cached artifact of a for target, building it
// when absent (or when force is set) for runtime addons.
func (o *Orchestrator) ensureArtifact(ctx context.Context, doc *addon.Document, a addon.Addon, target addon.Target, force bool) (*Result, error) {
	artifact, err := o.resolver(doc).Artifact(a, target)
	if err != nil {
		return nil, err
	}
	res := &Result{Addon: a.Identity(), Target: target, Artifact: artifact}

	present, err := fileExists(artifact)
	if err != nil {
		return nil, err
	}

	switch a := a.(type) {
	case *addon.BinaryAddon:
		if !present {
			return nil, &ArtifactNotFoundError{Addon: res.Addon, Target: target, Path: artifact}
		}
		return res, nil
	case *addon.RuntimeAddon:
		if present && !force {
			o.logger.Debug("artifact cached", "addon", res.Addon.String(), "artifact", artifact)
			return res, nil
		}
		if o.host == (addon.Target{}) || target != o.host {
			return nil, &TargetMismatchError{Addon: res.Addon, Requested: target, Host: o.host}
		}
		if err := o.build(ctx, doc, a, artifact); err != nil {
			return nil, err
		}
		res.Built = true
		return res, nil
	default:
		return nil, fmt.Errorf("%w: %T", addon.ErrUnknownAddonType, a)
	}
}

func (o *Orchestrator) resolver(doc *addon.Document) *cache.Resolver {
	return cache.NewResolver(o.store.Dir(), doc.Base)
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat artifact %s: %w", path, err)
	}
}
