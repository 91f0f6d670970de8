package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/tally/pkg/backup"
)

var (
	backupReplace bool
	backupJSON    bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, inspect and restore zip archives of every note and image",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create [file|dir]",
	Short: "Write a backup archive (default: ./noteapp_backup_<time>.zip)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer app.Close()

		path := backup.FileName(time.Now())
		if len(args) == 1 {
			path = args[0]
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, backup.FileName(time.Now()))
			}
		}

		res := app.Backup.CreateFile(ctx, path)
		report(res, res.Success, res.Message)
	},
}

var backupValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Print the metadata of a backup archive",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		meta := backup.ValidateFile(args[0])
		if meta == nil {
			fatal("Invalid backup", fmt.Errorf("%s is not a backup archive", args[0]))
		}
		if backupJSON {
			report(meta, true, "")
			return
		}
		fmt.Printf("version:     %s\n", meta.Version)
		fmt.Printf("created:     %s\n", meta.Time().Local().Format(time.DateTime))
		fmt.Printf("notes:       %d\n", meta.NoteCount)
		fmt.Printf("images:      %d\n", meta.ImageCount)
		fmt.Printf("app version: %s\n", meta.AppVersion)
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Load a backup archive; existing notes are kept unless --replace",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer app.Close()

		res := app.Backup.RestoreFile(ctx, args[0], backupReplace)
		if !backupJSON && res.Success {
			fmt.Println(res.Message)
			fmt.Printf("skipped: %d notes, %d images\n", res.SkippedNotes, res.SkippedImages)
			return
		}
		report(res, res.Success, res.Message)
	},
}

// report prints v as JSON or msg as text, exiting non-zero on failure.
func report(v any, ok bool, msg string) {
	if backupJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			fatal("Error encoding JSON", err)
		}
	} else if msg != "" {
		fmt.Println(msg)
	}
	if !ok {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd, backupValidateCmd, backupRestoreCmd)
	backupCmd.PersistentFlags().BoolVar(&backupJSON, "json", false, "Output in JSON format")
	backupRestoreCmd.Flags().BoolVar(&backupReplace, "replace", false, "Delete every note and image before restoring")
}
