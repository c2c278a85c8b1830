// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"ham-cli/pkg/platform"
	"ham-cli/pkg/types"
)

const (
	// StageManifest writes the synthetic package.json.
	StageManifest Stage = "manifest"
	// StageInstall runs the dependency installer.
	StageInstall Stage = "install"
	// StagePatch runs the addon's patch script.
	StagePatch Stage = "patch"
	// StageRebuild rebuilds native modules against the electron version.
	StageRebuild Stage = "rebuild"
	// StagePack archives node_modules into the cache.
	StagePack Stage = "pack"
)

type (
	// Stage names one step of the install pipeline.
	Stage string

	// Command is one subprocess invocation of the pipeline.
	Command struct {
		Stage Stage
		Argv  []string
		// Dir is the working directory.
		Dir string
		// Env is appended to the inherited environment.
		Env []string
	}

	// Runner runs pipeline subprocesses to completion. A nil error with a
	// non-zero exit code means the process ran and failed.
	Runner interface {
		Run(ctx context.Context, cmd Command) (types.ExitCode, error)
	}

	// ExecRunner runs commands with os/exec, wiring them to the given streams.
	ExecRunner struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Timeout bounds each command; zero disables the limit.
		Timeout time.Duration
		// Sandbox selects how commands reach the host when ham itself is sandboxed.
		Sandbox platform.SandboxType
	}
)

// String returns the stage name.
func (s Stage) String() string { return string(s) }

// NewExecRunner returns a runner attached to the process's standard streams.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Timeout: timeout,
		Sandbox: platform.DetectSandbox(),
	}
}

// Run executes cmd and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (types.ExitCode, error) {
	if len(cmd.Argv) == 0 {
		return 0, errors.New("empty command")
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	argv := platform.HostCommand(r.Sandbox, cmd.Argv, cmd.Dir, cmd.Env)
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Dir = cmd.Dir
	c.Env = append(c.Environ(), cmd.Env...)
	c.Stdin = r.Stdin
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr

	err := c.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, fmt.Errorf("failed to start: %w", err)
	}
	code := types.ExitCode(exitErr.ExitCode())
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) && r.Timeout > 0 {
			return code, fmt.Errorf("timed out after %s: %w", r.Timeout, ctxErr)
		}
		return code, ctxErr
	}
	return code, nil
}
