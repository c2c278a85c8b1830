// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ham-cli/pkg/addon"
	"ham-cli/pkg/archive"
	"ham-cli/pkg/types"

	"github.com/oklog/ulid/v2"
)

const (
	scratchPattern = "ham-cli-*"

	// EnvBuildID carries the pipeline run ID into every subprocess.
	EnvBuildID = "HAM_BUILD_ID"
	// EnvPatchAddonType carries the addon kind into the patch script.
	EnvPatchAddonType = "HAM_PATCH_ADDON_TYPE"
	// EnvPatchAddonName carries the addon name into the patch script.
	EnvPatchAddonName = "HAM_PATCH_ADDON_NAME"
	// EnvPatchAddonDir carries the scratch directory into the patch script.
	EnvPatchAddonDir = "HAM_PATCH_ADDON_DIR"
)

type (
	// buildRun is the state of one install pipeline run.
	buildRun struct {
		id       ulid.ULID
		addon    *addon.RuntimeAddon
		target   addon.Target
		registry string
		docDir   string
		scratch  string
		artifact string
		logger   *slog.Logger
	}

	// stage is one step of the pipeline. skip reports whether the step does
	// not apply to this run.
	stage struct {
		name Stage
		skip func(r *buildRun) bool
		run  func(ctx context.Context, r *buildRun) error
	}
)

func (o *Orchestrator) stages() []stage {
	return []stage{
		{name: StageManifest, run: o.writeManifest},
		{name: StageInstall, run: o.installDependencies},
		{name: StagePatch, skip: func(r *buildRun) bool { return r.addon.Patch == "" }, run: o.runPatch},
		{name: StageRebuild, skip: func(r *buildRun) bool { return r.addon.Runtime != addon.RuntimeElectron }, run: o.rebuildNative},
		{name: StagePack, run: o.packModules},
	}
}

// build runs the install pipeline for a on the host and writes artifact.
func (o *Orchestrator) build(ctx context.Context, doc *addon.Document, a *addon.RuntimeAddon, artifact string) error {
	id := ulid.Make()
	logger := o.logger.With("build", id.String(), "addon", a.Identity().String())

	scratch, err := os.MkdirTemp(o.settings.Build.TempDir, scratchPattern)
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			logger.Warn("failed to remove scratch directory", "path", scratch, "error", rmErr)
		}
	}()

	run := &buildRun{
		id:       id,
		addon:    a,
		target:   o.host,
		registry: doc.Registry(),
		docDir:   o.store.Dir(),
		scratch:  scratch,
		artifact: artifact,
		logger:   logger,
	}

	logger.Info("building addon", "target", run.target.String(), "scratch", scratch)
	for _, s := range o.stages() {
		if s.skip != nil && s.skip(run) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Debug("running stage", "stage", s.name.String())
		if err := s.run(ctx, run); err != nil {
			return err
		}
	}
	logger.Info("artifact cached", "artifact", artifact)
	return nil
}

func (o *Orchestrator) writeManifest(_ context.Context, r *buildRun) error {
	return writeManifest(r.scratch, r.addon)
}

func (o *Orchestrator) installDependencies(ctx context.Context, r *buildRun) error {
	argv, err := o.settings.Installer.Command.Argv()
	if err != nil {
		return err
	}
	if r.registry != "" {
		argv = append(argv, "--registry="+r.registry)
	}
	if r.addon.Runtime == addon.RuntimeElectron {
		argv = append(argv, "--ignore-scripts")
	}
	return o.exec(ctx, r, Command{Stage: StageInstall, Argv: argv, Dir: r.scratch})
}

func (o *Orchestrator) runPatch(ctx context.Context, r *buildRun) error {
	argv, err := o.settings.Patch.Interpreter.Argv()
	if err != nil {
		return err
	}
	argv = append(argv, types.FilesystemPath(r.addon.Patch).Resolve(r.docDir))
	return o.exec(ctx, r, Command{
		Stage: StagePatch,
		Argv:  argv,
		Dir:   r.scratch,
		Env: []string{
			EnvPatchAddonType + "=" + string(r.addon.Identity().Kind),
			EnvPatchAddonName + "=" + r.addon.Name,
			EnvPatchAddonDir + "=" + r.scratch,
		},
	})
}

func (o *Orchestrator) rebuildNative(ctx context.Context, r *buildRun) error {
	argv, err := o.settings.Rebuild.Node.Argv()
	if err != nil {
		return err
	}
	entry, err := resolveRebuildEntry(o.settings.Rebuild.Entry, r.docDir)
	if err != nil {
		return err
	}
	argv = append(argv, entry,
		"-f",
		"-m", r.scratch,
		"-v", r.addon.ElectronVersion,
		"--arch", rebuildArch(r.target.Arch),
	)
	return o.exec(ctx, r, Command{Stage: StageRebuild, Argv: argv, Dir: r.scratch})
}

func (o *Orchestrator) packModules(_ context.Context, r *buildRun) error {
	root := filepath.Join(r.scratch, "node_modules")
	if err := archive.Pack(root, r.artifact, r.addon.Pack); err != nil {
		return fmt.Errorf("%s stage: %w", StagePack, err)
	}
	return nil
}

// exec runs cmd with the build ID exported and maps any failure to a
// SubprocessError.
func (o *Orchestrator) exec(ctx context.Context, r *buildRun, cmd Command) error {
	cmd.Env = append(cmd.Env, EnvBuildID+"="+r.id.String())
	r.logger.Debug("running command", "stage", cmd.Stage.String(), "argv", cmd.Argv, "dir", cmd.Dir)

	code, err := o.runner.Run(ctx, cmd)
	if err != nil || !code.IsSuccess() {
		return &SubprocessError{Stage: cmd.Stage, Argv: cmd.Argv, ExitCode: code, Err: err}
	}
	return nil
}
