// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"ham-cli/internal/build"
	"ham-cli/internal/config"
	"ham-cli/internal/registry"
	"ham-cli/pkg/addon"
	"ham-cli/pkg/platform"
	"ham-cli/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: all Cobra command handlers receive an App reference and delegate
	// to the build Orchestrator it creates.
	App struct {
		Settings config.Provider
		host     addon.Target
		hostErr  error
		runner   build.Runner
		stdout   io.Writer
		stderr   io.Writer

		flags    rootFlags
		settings *config.Config
		logger   *slog.Logger
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Settings config.Provider
		// Host overrides the detected host target.
		Host *addon.Target
		// Runner replaces the os/exec runner of the build pipeline.
		Runner build.Runner
		Stdout io.Writer
		Stderr io.Writer
	}

	// ExitError carries a process exit code out of a RunE handler. A nil Err
	// means the failure was already reported to the user.
	ExitError struct {
		Code types.ExitCode
		Err  error
	}

	// rootFlags holds the persistent flags shared by every command.
	rootFlags struct {
		verbose      bool
		configPath   string
		settingsPath string
	}
)

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + e.Code.String()
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error { return e.Err }

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Settings == nil {
		deps.Settings = config.NewProvider()
	}

	app := &App{
		Settings: deps.Settings,
		runner:   deps.Runner,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
		settings: config.DefaultConfig(),
		logger:   slog.Default(),
		flags:    rootFlags{configPath: registry.DefaultFileName},
	}
	if deps.Host != nil {
		app.host = *deps.Host
	} else {
		app.host, app.hostErr = platform.Host()
	}
	return app, nil
}

// prepare loads the settings and installs the logger. It runs before every
// command. Without an explicit --settings file a broken settings file only
// produces a warning and the defaults apply.
func (a *App) prepare(ctx context.Context) error {
	cfg, err := a.Settings.Load(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(a.flags.settingsPath)})
	if err != nil {
		if a.flags.settingsPath != "" {
			return err
		}
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.flags.verbose))
		cfg = config.DefaultConfig()
	}
	a.settings = cfg

	if cfg.UI.Verbose {
		a.flags.verbose = true
	}
	level := cfg.UI.LogLevel.SlogLevel()
	if a.flags.verbose {
		level = slog.LevelDebug
	}
	a.logger = newLogger(a.stderr, level)
	slog.SetDefault(a.logger)

	if a.hostErr != nil {
		a.logger.Debug("host cannot build runtime addons", "error", a.hostErr)
	}
	return nil
}

// newLogger returns a slog logger backed by a charm logger on w.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := log.NewWithOptions(w, log.Options{
		Prefix: "ham",
		Level:  log.Level(level),
	})
	return slog.New(handler)
}

// store opens the ham document named by --config.
func (a *App) store() (*registry.Store, error) {
	return registry.NewStore(a.flags.configPath)
}

// orchestrator creates the build orchestrator for the ham document named by --config.
func (a *App) orchestrator() (*build.Orchestrator, error) {
	store, err := a.store()
	if err != nil {
		return nil, err
	}

	runner := a.runner
	if runner == nil {
		runner = &build.ExecRunner{
			Stdin:   os.Stdin,
			Stdout:  a.stdout,
			Stderr:  a.stderr,
			Timeout: a.settings.Build.StageTimeout,
			Sandbox: platform.DetectSandbox(),
		}
	}

	return build.New(build.Options{
		Store:    store,
		Host:     a.host,
		Runner:   runner,
		Settings: a.settings,
		Logger:   a.logger,
	}), nil
}

// defaultTarget returns the host target, or the reason there is none.
func (a *App) defaultTarget() (addon.Target, error) {
	if a.hostErr != nil {
		return addon.Target{}, a.hostErr
	}
	return a.host, nil
}

// fail reports err to the user and returns the error that makes the process
// exit with status 1.
func (a *App) fail(err error) error {
	renderServiceError(a.stderr, classifyError(err, a.flags.verbose), a.flags.verbose)
	return &ExitError{Code: 1}
}
