package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/pkg/content"
	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/tags"
)

var (
	noteTitle   string
	noteContent string
	noteTags    []string
	noteAddTags []string
	noteImages  []string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note",
	Example: `  tally add --title lunch --tag 记账_支出_32
  tally add --title receipt --image ./receipt.jpg`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer app.Close()

		checkTags(noteTags)
		in := core.NoteInput{Title: noteTitle, Content: noteContent, Tags: noteTags}
		attach(ctx, app, &in, noteImages)

		n, err := app.Service.Create(ctx, in)
		if err != nil {
			fatal("Error creating note", err)
		}
		fmt.Println(n.ID)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the title, content, tags or images of a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer app.Close()

		n, err := app.Service.Get(ctx, args[0])
		if err != nil {
			fatal("Error reading note", err)
		}

		in := core.NoteInput{Title: n.Title, Content: n.Content, Tags: n.Tags, Images: n.Images}
		if cmd.Flags().Changed("title") {
			in.Title = noteTitle
		}
		if cmd.Flags().Changed("content") {
			in.Content = noteContent
		}
		if cmd.Flags().Changed("tag") {
			in.Tags = noteTags
		}
		for _, t := range noteAddTags {
			if !contains(in.Tags, t) {
				in.Tags = append(in.Tags, t)
			}
		}
		checkTags(in.Tags)
		attach(ctx, app, &in, noteImages)

		if _, err := app.Service.Update(ctx, n.ID, in); err != nil {
			fatal("Error updating note", err)
		}
		fmt.Printf("Updated %s\n", n.ID)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer app.Close()

		n, err := app.Service.Get(ctx, args[0])
		if errors.Is(err, core.ErrNotFound) {
			fatal("Error", fmt.Errorf("no note with id %s", args[0]))
		}
		if err != nil {
			fatal("Error reading note", err)
		}

		fmt.Printf("# %s\n", n.Title)
		fmt.Printf("id:      %s\n", n.ID)
		fmt.Printf("created: %s\n", n.CreationTime.Local().Format(time.DateTime))
		fmt.Printf("edited:  %s\n", n.LastEditTime.Local().Format(time.DateTime))
		if len(n.Tags) > 0 {
			fmt.Printf("tags:    %s\n", strings.Join(n.Tags, ", "))
		}
		fmt.Println()

		for _, seg := range content.Segments(n.Content, n.Images) {
			switch s := seg.(type) {
			case content.TextSegment:
				fmt.Println(s.Text)
			case content.ImageSegment:
				path, _ := app.Assets.Path(s.Image.FileName)
				if s.Image.Caption != "" {
					fmt.Printf("[image: %s] %s\n", path, s.Image.Caption)
				} else {
					fmt.Printf("[image: %s]\n", path)
				}
			}
		}
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete notes",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer app.Close()

		for _, id := range args {
			if err := app.Service.Delete(ctx, id); err != nil {
				fatal("Error deleting note", err)
			}
			fmt.Printf("Deleted %s\n", id)
		}
	},
}

// checkTags rejects tags that look like accounting tags but do not parse.
func checkTags(list []string) {
	for _, t := range list {
		if !strings.HasPrefix(strings.TrimSpace(t), tags.Prefix) {
			continue
		}
		if v := tags.Validate(t); !v.OK {
			fatal("Invalid tag "+t, errors.New(v.Error))
		}
	}
}

// attach stores each image file as an asset and appends its marker.
func attach(ctx context.Context, app *tally.App, in *core.NoteInput, files []string) {
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			fatal("Error reading image", err)
		}
		now := time.Now()
		name := content.NewImageName(now)
		if err := app.Assets.WriteAsset(ctx, name, data); err != nil {
			fatal("Error storing image", err)
		}
		in.Content, in.Images = content.InsertImage(in.Content, in.Images, name, now)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(addCmd, editCmd, showCmd, deleteCmd)

	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVarP(&noteTitle, "title", "t", "", "Note title")
		c.Flags().StringVarP(&noteContent, "content", "c", "", "Note content")
		c.Flags().StringArrayVar(&noteTags, "tag", nil, "Tag (repeatable)")
		c.Flags().StringArrayVar(&noteImages, "image", nil, "Attach an image file (repeatable)")
	}
	editCmd.Flags().StringArrayVar(&noteAddTags, "add-tag", nil, "Append a tag (repeatable)")
}
