package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/tally/pkg/accounting"
	"github.com/aretw0/tally/pkg/query"
)

var tagsFlags filterFlags

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the distinct tags of the matching notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer app.Close()

		p, err := tagsFlags.pipeline(app)
		if err != nil {
			fatal("Error", err)
		}
		defer p.Close()

		for _, t := range query.DistinctTags(snapshot(ctx, p)) {
			fmt.Println(t)
		}
	},
}

var (
	statsFlags filterFlags
	statsType  string
	statsGroup bool
	statsDay   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show income, expense and balance of the matching notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		app := openApp(ctx)
		defer app.Close()

		p, err := statsFlags.pipeline(app)
		if err != nil {
			fatal("Error", err)
		}
		defer p.Close()

		notes := snapshot(ctx, p)
		if statsDay != "" {
			day, err := time.ParseInLocation(time.DateOnly, statsDay, time.Local)
			if err != nil {
				fatal("Error parsing --day", err)
			}
			notes = p.NotesForDate(day)
		}
		if statsType != "" {
			notes = accounting.FilterByType(notes, statsType)
		}

		fmt.Println(accounting.Summary(notes))

		if !statsGroup {
			return
		}
		stats := accounting.CalculateStatistics(notes)
		total := stats.TotalIncome.Add(stats.TotalExpense)
		fmt.Println()
		for _, g := range accounting.GroupByType(notes) {
			fmt.Printf("%-6s %12s %7s  (%d)\n",
				g.Type,
				accounting.FormatAmount(g.Amount),
				accounting.PercentageString(g.Amount, total),
				len(g.Notes),
			)
		}
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd, statsCmd)
	tagsFlags.register(tagsCmd)
	statsFlags.register(statsCmd)
	statsCmd.Flags().StringVar(&statsType, "type", "", "Only count this accounting type (e.g. 支出)")
	statsCmd.Flags().BoolVar(&statsGroup, "group", false, "Break the totals down by type")
	statsCmd.Flags().StringVar(&statsDay, "day", "", "Only count notes created on this day (YYYY-MM-DD)")
}
