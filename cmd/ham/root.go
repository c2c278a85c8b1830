// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"ham-cli/internal/registry"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand creates the ham command tree bound to app.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ham",
		Short: "Native addon artifact cache and build orchestrator",
		Long: TitleStyle.Render("ham") + SubtitleStyle.Render(" - native addon artifact cache and build orchestrator") + `

ham keeps prebuilt native addons in a content-addressed cache, keyed by
runtime version, declared dependencies and target. Node and Electron addons
are built on demand with the host toolchain; binary addons are imported.

Addons are declared in a JSON ham config (` + registry.DefaultFileName + ` by default).

` + SubtitleStyle.Render("Examples:") + `
  ham install                                  Build every node/electron addon for this host
  ham import-binary libfoo ./libfoo-darwin-arm64
  ham ensure electron sqlite ./app/addons/sqlite
  ham cache ls                                 List cached artifacts`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.prepare(cmd.Context()); err != nil {
				return app.fail(err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&app.flags.configPath, "config", "c", registry.DefaultFileName, "ham config file")
	rootCmd.PersistentFlags().StringVar(&app.flags.settingsPath, "settings", "", "settings file (default is $XDG_CONFIG_HOME/ham/config.cue)")

	rootCmd.AddCommand(newImportBinaryCommand(app))
	rootCmd.AddCommand(newInstallCommand(app))
	rootCmd.AddCommand(newEnsureCommand(app))
	rootCmd.AddCommand(newGuessCommand(app))
	rootCmd.AddCommand(newCacheCommand(app))
	rootCmd.AddCommand(newSettingsCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// handleError prints errors that were not already reported by a command.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
