package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/tally/internal/platform"
)

var initWeekStart string

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a data directory with a tally.yaml",
	Long: `Initialize a data directory: writes tally.yaml and creates the database and
image directory. Commands run below it find it automatically.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			fatal("Failed to resolve directory", err)
		}

		if _, err := os.Stat(filepath.Join(abs, platform.ConfigFileName)); err == nil {
			fatal("Failed to initialize", fmt.Errorf("%s already exists in %s", platform.ConfigFileName, abs))
		}
		if _, err := platform.ParseWeekday(initWeekStart); err != nil {
			fatal("Invalid --week-start", err)
		}

		cfg := platform.FileConfig{
			Database:    platform.DefaultDatabase,
			Assets:      platform.DefaultAssets,
			Debounce:    "300ms",
			GracePeriod: "5s",
			WeekStart:   initWeekStart,
		}
		if err := platform.SaveConfig(abs, cfg); err != nil {
			fatal("Failed to write config", err)
		}

		dataDir = abs
		app := openApp(context.Background())
		defer app.Close()

		fmt.Println("Initialized empty tally data directory in", app.Dir)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initWeekStart, "week-start", "monday", "First day of the week for this_week")
}
