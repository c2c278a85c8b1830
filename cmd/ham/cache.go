// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"ham-cli/internal/cache"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// digestPrefixLen is how much of an artifact digest `cache ls` prints.
const digestPrefixLen = 16

// newCacheCommand creates the `ham cache` command tree.
func newCacheCommand(app *App) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the artifact cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List cached artifacts per addon",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return listCache(app)
		},
	})

	return cacheCmd
}

func listCache(app *App) error {
	store, err := app.store()
	if err != nil {
		return app.fail(err)
	}
	doc, err := store.Load()
	if err != nil {
		return app.fail(err)
	}

	resolver := cache.NewResolver(store.Dir(), doc.Base)
	slots, err := resolver.Inventory(doc.Addons)
	if err != nil {
		return app.fail(err)
	}

	w := app.stdout
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Cache"), SubtitleStyle.Render(resolver.BaseDir()))
	if len(slots) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(no addons declared)"))
		return nil
	}

	var total uint64
	for _, slot := range slots {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s\n", CmdStyle.Render(slot.Addon.String()))
		if len(slot.Artifacts) == 0 {
			fmt.Fprintf(w, "  %s\n", WarningStyle.Render("(no artifacts)"))
			continue
		}
		for _, art := range slot.Artifacts {
			size := uint64(max(art.Size, 0))
			total += size
			fmt.Fprintf(w, "  %-16s %10s  %s\n", art.Target.String(), humanize.Bytes(size), SubtitleStyle.Render(art.Digest[:min(len(art.Digest), digestPrefixLen)]))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render("Total:"), humanize.Bytes(total))
	return nil
}
