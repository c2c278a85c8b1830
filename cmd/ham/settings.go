// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"ham-cli/internal/config"
	"ham-cli/pkg/types"

	"github.com/spf13/cobra"
)

// newSettingsCommand creates the `ham settings` command tree.
// Subcommands that read settings use the App's settings Provider.
func newSettingsCommand(app *App) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage ham settings",
		Long: `Manage ham settings.

Settings are stored in:
  - Linux: ~/.config/ham/config.cue
  - macOS: ~/Library/Application Support/ham/config.cue
  - Windows: %APPDATA%\ham\config.cue

Every value can be overridden with a HAM_ environment variable,
e.g. HAM_LOCK_WAIT=1m or HAM_INSTALLER_COMMAND="pnpm add".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.Settings.Load(cmd.Context(), app.loadOptions())
			if err != nil {
				return app.fail(err)
			}
			return showSettings(app, cfg)
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default settings file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, _, err := app.Settings.Path(app.loadOptions())
			if err != nil {
				return app.fail(err)
			}
			created, err := config.CreateDefaultConfig(path)
			if err != nil {
				return app.fail(err)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Settings already exist at %s\n", SubtitleStyle.Render("•"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default settings at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, _, err := app.Settings.Path(app.loadOptions())
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective settings as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.Settings.Load(cmd.Context(), app.loadOptions())
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return settingsCmd
}

// loadOptions returns the settings load options selected by the root flags.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: types.FilesystemPath(a.flags.settingsPath)}
}

func showSettings(app *App, cfg *config.Config) error {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Settings"))
	fmt.Fprintln(w)

	path, exists, err := app.Settings.Path(app.loadOptions())
	if err != nil {
		return app.fail(err)
	}
	if exists {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Settings file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Settings file"), SubtitleStyle.Render("(using defaults)"))
	}

	orDefault := func(s string) string {
		if s == "" {
			return SubtitleStyle.Render("(auto)")
		}
		return valueStyle.Render(s)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("installer"))
	fmt.Fprintf(w, "  command: %s\n", valueStyle.Render(cfg.Installer.Command.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("rebuild"))
	fmt.Fprintf(w, "  node: %s\n", valueStyle.Render(cfg.Rebuild.Node.String()))
	fmt.Fprintf(w, "  entry: %s\n", orDefault(cfg.Rebuild.Entry))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("patch"))
	fmt.Fprintf(w, "  interpreter: %s\n", valueStyle.Render(cfg.Patch.Interpreter.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("build"))
	fmt.Fprintf(w, "  stage_timeout: %s\n", valueStyle.Render(cfg.Build.StageTimeout.String()))
	fmt.Fprintf(w, "  temp_dir: %s\n", orDefault(cfg.Build.TempDir))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("lock"))
	fmt.Fprintf(w, "  wait: %s\n", valueStyle.Render(cfg.Lock.Wait.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	fmt.Fprintf(w, "  log_level: %s\n", valueStyle.Render(cfg.UI.LogLevel.String()))

	return nil
}
