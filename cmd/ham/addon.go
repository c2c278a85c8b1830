// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"ham-cli/internal/build"
	"ham-cli/pkg/addon"

	"github.com/spf13/cobra"
)

// newImportBinaryCommand creates the `ham import-binary` command.
func newImportBinaryCommand(app *App) *cobra.Command {
	var targetFlag string

	importCmd := &cobra.Command{
		Use:   "import-binary <addonName> <addonPath>",
		Short: "Import a prebuilt addon directory as a binary artifact",
		Long: `Pack a prebuilt addon directory into the cache and record its target
in the ham config, creating the binary addon entry when needed.

The target is guessed from the directory name (e.g. libfoo-darwin-arm64)
unless --target is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target *addon.Target
			if targetFlag != "" {
				t, err := addon.ParseTarget(targetFlag)
				if err != nil {
					return app.fail(err)
				}
				target = &t
			}

			orch, err := app.orchestrator()
			if err != nil {
				return app.fail(err)
			}
			res, err := orch.ImportBinary(cmd.Context(), args[0], args[1], target)
			if err != nil {
				return app.fail(err)
			}

			fmt.Fprintf(app.stdout, "%s Imported %s for %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(res.Addon.String()), CmdStyle.Render(res.Target.String()))
			fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render(res.Artifact))
			return nil
		},
	}

	importCmd.Flags().StringVarP(&targetFlag, "target", "t", "", targetUsage("guessed from the directory name"))
	return importCmd
}

// newInstallCommand creates the `ham install` command.
func newInstallCommand(app *App) *cobra.Command {
	var force bool

	installCmd := &cobra.Command{
		Use:   "install [<type> <name>]",
		Short: "Build node and electron addons for this host",
		Long: `Build the named addon for the host target, or every node and electron
addon in the ham config when no addon is named. Addons whose artifact is
already cached are skipped unless --force is given.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := app.orchestrator()
			if err != nil {
				return app.fail(err)
			}

			if len(args) == 2 {
				kind, kindErr := addon.ParseKind(args[0])
				if kindErr != nil {
					return app.fail(kindErr)
				}
				res, installErr := orch.Install(cmd.Context(), kind, args[1], force)
				if installErr != nil {
					return app.fail(installErr)
				}
				printResult(app.stdout, res)
				return nil
			}

			results, err := orch.InstallAll(cmd.Context(), force)
			for i := range results {
				printResult(app.stdout, &results[i])
			}
			if err != nil {
				return app.fail(err)
			}
			if len(results) == 0 {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("No node or electron addons to install."))
			}
			return nil
		},
	}

	installCmd.Flags().BoolVarP(&force, "force", "f", false, "rebuild even when the artifact is cached")
	return installCmd
}

// newEnsureCommand creates the `ham ensure` command.
func newEnsureCommand(app *App) *cobra.Command {
	var targetFlag string

	ensureCmd := &cobra.Command{
		Use:   "ensure <type> <name> <dir>",
		Short: "Extract an addon artifact into a directory",
		Long: `Make sure the artifact for the addon and target exists, building it when
possible, then replace <dir> with its extracted contents.

Node and electron addons can only be built for the host target; binary
addons must have been imported for the requested target.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := addon.ParseKind(args[0])
			if err != nil {
				return app.fail(err)
			}

			var target addon.Target
			if targetFlag != "" {
				target, err = addon.ParseTarget(targetFlag)
			} else {
				target, err = app.defaultTarget()
			}
			if err != nil {
				return app.fail(err)
			}

			orch, err := app.orchestrator()
			if err != nil {
				return app.fail(err)
			}
			res, err := orch.Ensure(cmd.Context(), kind, args[1], target, args[2])
			if err != nil {
				return app.fail(err)
			}

			dest, absErr := filepath.Abs(args[2])
			if absErr != nil {
				dest = args[2]
			}
			fmt.Fprintf(app.stdout, "%s Extracted %s for %s into %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(res.Addon.String()), CmdStyle.Render(res.Target.String()), dest)
			return nil
		},
	}

	ensureCmd.Flags().StringVarP(&targetFlag, "target", "t", "", targetUsage("the host"))
	return ensureCmd
}

// newGuessCommand creates the `ham guess` command.
func newGuessCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "guess <filename>",
		Short: "Print the target a file or directory name refers to",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			t, ok := addon.Match(filepath.Base(args[0]))
			if !ok {
				return app.fail(&build.TargetGuessFailedError{Name: args[0]})
			}
			fmt.Fprintln(app.stdout, t.String())
			return nil
		},
	}
}

func printResult(w io.Writer, res *build.Result) {
	if res.Built {
		fmt.Fprintf(w, "%s Built %s for %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(res.Addon.String()), CmdStyle.Render(res.Target.String()))
	} else {
		fmt.Fprintf(w, "%s %s for %s is cached\n", SubtitleStyle.Render("•"), CmdStyle.Render(res.Addon.String()), CmdStyle.Render(res.Target.String()))
	}
	fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render(res.Artifact))
}

// targetUsage describes the --target flag with the accepted vocabulary.
func targetUsage(def string) string {
	platforms := make([]string, 0, len(addon.Platforms()))
	for _, p := range addon.Platforms() {
		platforms = append(platforms, string(p))
	}
	arches := make([]string, 0, len(addon.Arches()))
	for _, a := range addon.Arches() {
		arches = append(arches, string(a))
	}
	return fmt.Sprintf("target as <platform>-<arch>; platforms: %s; arches: %s (default: %s)",
		strings.Join(platforms, "|"), strings.Join(arches, "|"), def)
}
