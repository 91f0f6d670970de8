package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	tlc "github.com/aretw0/tally/pkg/adapters/lifecycle"
	"github.com/aretw0/tally/pkg/content"
	"github.com/aretw0/tally/pkg/core"
)

var (
	pruneDryRun bool
	watchTypes  []string
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Manage the image files attached to notes",
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored images and whether a note uses them",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer app.Close()

		names, err := app.Assets.ListAssets(ctx)
		if err != nil {
			fatal("Error listing assets", err)
		}
		notes, err := app.Service.List(ctx)
		if err != nil {
			fatal("Error listing notes", err)
		}
		used := content.UsedAssets(notes)
		for _, name := range names {
			mark := " "
			if _, ok := used[name]; !ok {
				mark = "?"
			}
			fmt.Printf("%s %s\n", mark, name)
		}
	},
}

var assetsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete images no note refers to",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer app.Close()

		notes, err := app.Service.List(ctx)
		if err != nil {
			fatal("Error listing notes", err)
		}
		used := content.UsedAssets(notes)

		if pruneDryRun {
			names, err := app.Assets.ListAssets(ctx)
			if err != nil {
				fatal("Error listing assets", err)
			}
			for _, name := range names {
				if _, ok := used[name]; !ok {
					fmt.Printf("would remove %s\n", name)
				}
			}
			return
		}

		removed, err := app.Assets.Prune(ctx, used)
		if err != nil {
			fatal("Error pruning assets", err)
		}
		for _, name := range removed {
			fmt.Printf("removed %s\n", name)
		}
		fmt.Printf("%d unused images removed\n", len(removed))
	},
}

var assetsWatchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Print changes to the image directory until interrupted",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		app := openApp(ctx)
		defer app.Close()

		pattern := "*"
		if len(args) == 1 {
			pattern = args[0]
		}
		events, err := app.Assets.Watch(ctx, pattern)
		if err != nil {
			fatal("Error watching assets", err)
		}

		var types []core.EventType
		for _, t := range watchTypes {
			types = append(types, core.EventType(strings.ToUpper(t)))
		}
		src := tlc.NewSource(events, tlc.WithTypes(types...))
		if err := src.Start(ctx); err != nil {
			fatal("Error starting watcher", err)
		}

		fmt.Fprintf(os.Stderr, "watching %s (Ctrl+C to stop)\n", app.Assets.Dir)
		for e := range src.Events() {
			fmt.Println(e.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(assetsCmd)
	assetsCmd.AddCommand(assetsListCmd, assetsPruneCmd, assetsWatchCmd)
	assetsPruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Only print what would be removed")
	assetsWatchCmd.Flags().StringSliceVar(&watchTypes, "type", nil, "Only show these event types (create, modify, delete)")
}
