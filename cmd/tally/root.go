package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tally"
)

var (
	verbose bool
	dataDir string
	unsafe  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "A notes ledger where tags double as bookkeeping entries",
	Long: `Tally keeps short notes in a local SQLite database. A tag such as
记账_支出_25.50 books the note as an expense of 25.50, so the same notes
feed search, statistics and backups.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "dir", "d", "", "Data directory (default $TALLY_HOME, nearest tally.yaml or ~/.tally)")
	rootCmd.PersistentFlags().BoolVar(&unsafe, "unsafe", false, "Disable the temp-dir sandbox used under `go run`")
}

// openApp opens the data directory selected by the global flags.
func openApp(ctx context.Context) *tally.App {
	app, err := tally.Open(ctx, tally.DataDir(dataDir),
		tally.WithLogger(slog.Default()),
		tally.WithDevSafety(!unsafe),
	)
	if err != nil {
		fatal("Error opening data directory", err)
	}
	return app
}
