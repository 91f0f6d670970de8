// Package tally is the Composition Root for the Tally notes ledger.
//
// Tally keeps short notes whose tags double as bookkeeping entries: a tag
// such as "记账_支出_25.50" records an expense of 25.50. The module connects
// the domain packages with their infrastructure adapters:
//
//   - pkg/core: notes, the lifecycle service and the storage contracts.
//   - pkg/tags: the accounting tag grammar (parse, create, validate).
//   - pkg/accounting: income/expense/balance statistics over notes.
//   - pkg/daterange: date filter presets resolved to inclusive intervals.
//   - pkg/query: the debounced, shared search and filter pipeline.
//   - pkg/backup: zip archives of every note and asset.
//   - pkg/adapters/sqlite and pkg/adapters/fs: the default stores.
//
// Usage:
//
//	app, err := tally.Open(ctx, "./ledger", tally.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//
//	note, err := app.Service.Create(ctx, core.NoteInput{
//		Title: "lunch",
//		Tags:  []string{"记账_支出_32"},
//	})
package tally
