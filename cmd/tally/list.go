package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/pkg/content"
	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/daterange"
	"github.com/aretw0/tally/pkg/query"
)

// filterFlags are the search and date flags shared by list, tags and stats.
type filterFlags struct {
	query  string
	scope  string
	filter string
	from   string
	to     string
}

func (f *filterFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&f.query, "query", "q", "", "Case-sensitive text to search for")
	c.Flags().StringVar(&f.scope, "scope", "all", "Search scope: all, title, content or tag")
	c.Flags().StringVar(&f.filter, "filter", "all", "Date filter: all, today, yesterday, this_week, this_month, this_year")
	c.Flags().StringVar(&f.from, "from", "", "Custom range start (YYYY-MM-DD)")
	c.Flags().StringVar(&f.to, "to", "", "Custom range end (YYYY-MM-DD), inclusive")
}

// pipeline builds a pipeline with the flag filter applied.
func (f *filterFlags) pipeline(app *tally.App) (*query.Pipeline, error) {
	p := app.NewPipeline()

	scope, err := core.ParseSearchScope(f.scope)
	if err != nil {
		p.Close()
		return nil, err
	}
	ft, err := core.ParseDateFilterType(f.filter)
	if err != nil {
		p.Close()
		return nil, err
	}

	if f.from != "" || f.to != "" {
		r, err := parseRange(f.from, f.to)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.SetCustomRange(r)
		ft = core.FilterCustom
	}

	p.SetScope(scope)
	p.SetDateFilter(ft)
	p.SetQueryNow(f.query)
	return p, nil
}

func parseRange(from, to string) (core.DateRange, error) {
	start := time.Time{}
	end := time.Now()
	if from != "" {
		t, err := time.ParseInLocation(time.DateOnly, from, time.Local)
		if err != nil {
			return core.DateRange{}, fmt.Errorf("--from: %w", err)
		}
		start = daterange.StartOfDay(t)
	}
	if to != "" {
		t, err := time.ParseInLocation(time.DateOnly, to, time.Local)
		if err != nil {
			return core.DateRange{}, fmt.Errorf("--to: %w", err)
		}
		end = t
	}
	return core.NewDateRange(start, daterange.EndOfDay(end)), nil
}

// snapshot returns the first list the pipeline emits.
func snapshot(ctx context.Context, p *query.Pipeline) []core.Note {
	ch, unsubscribe := p.Subscribe(ctx)
	defer unsubscribe()
	select {
	case notes := <-ch:
		return notes
	case <-ctx.Done():
		return nil
	}
}

var (
	listFlags  filterFlags
	listJSON   bool
	listFollow bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, most recently edited first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		app := openApp(ctx)
		defer app.Close()

		p, err := listFlags.pipeline(app)
		if err != nil {
			fatal("Error", err)
		}
		defer p.Close()

		if !listFollow {
			printNotes(snapshot(ctx, p))
			return
		}

		ch, unsubscribe := p.Subscribe(ctx)
		defer unsubscribe()
		for notes := range ch {
			printNotes(notes)
			if !listJSON {
				fmt.Println("--")
			}
		}
	},
}

func printNotes(notes []core.Note) {
	if listJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		if notes == nil {
			notes = []core.Note{}
		}
		if err := encoder.Encode(notes); err != nil {
			fatal("Error encoding JSON", err)
		}
		return
	}

	for _, n := range notes {
		line := fmt.Sprintf("%s  %s  %s", n.ID, n.LastEditTime.Local().Format("2006-01-02 15:04"), n.Title)
		if len(n.Tags) > 0 {
			line += "  [" + strings.Join(n.Tags, ", ") + "]"
		}
		if text := preview(n.Content); text != "" {
			line += "  " + text
		}
		fmt.Println(line)
	}
}

// preview is the first line of the content without image markers, cut to 40 characters.
func preview(text string) string {
	text, _, _ = strings.Cut(content.PlainText(text), "\n")
	if r := []rune(text); len(r) > 40 {
		return string(r[:40]) + "…"
	}
	return text
}

func init() {
	rootCmd.AddCommand(listCmd)
	listFlags.register(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVarP(&listFollow, "follow", "f", false, "Keep printing the list whenever it changes")
}
