package tally_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/pkg/accounting"
	"github.com/aretw0/tally/pkg/core"
)

// Example_basic opens a data directory, records two entries and prints the balance.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "tally-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	app, err := tally.Open(context.Background(), tmpDir)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	ctx := context.Background()

	// 1. Record an expense and an income
	for _, in := range []core.NoteInput{
		{Title: "groceries", Tags: []string{"记账_支出_45.5"}},
		{Title: "refund", Tags: []string{"记账_收入_20"}},
	} {
		if _, err := app.Service.Create(ctx, in); err != nil {
			log.Fatal(err)
		}
	}

	// 2. Aggregate
	notes, err := app.Service.List(ctx)
	if err != nil {
		log.Fatal(err)
	}
	stats := accounting.CalculateStatistics(notes)

	fmt.Printf("Balance: %s\n", accounting.FormatAmount(stats.Balance))
	// Output:
	// Balance: ¥-25.5
}
