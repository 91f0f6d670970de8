package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tally/pkg/accounting"
	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/query"
)

func TestReduce(t *testing.T) {
	var s query.ScreenState

	s = query.Reduce(s, query.ScreenEvent{Kind: query.ToggleSearchBar})
	assert.True(t, s.ShowSearchBar)

	s = query.Reduce(s, query.ScreenEvent{Kind: query.UpdateQuery, Query: "coffee"})
	assert.Equal(t, "coffee", s.Query)
	assert.True(t, s.Searching)

	s = query.Reduce(s, query.ScreenEvent{Kind: query.UpdateQuery, Query: "   "})
	assert.False(t, s.Searching)

	s = query.Reduce(s, query.ScreenEvent{Kind: query.UpdateScope, Scope: core.ScopeTag})
	assert.Equal(t, core.ScopeTag, s.Scope)

	r := core.NewDateRange(now.AddDate(0, 0, -3), now)
	s = query.Reduce(s, query.ScreenEvent{Kind: query.UpdateDateFilter, DateFilter: core.FilterCustom, CustomRange: &r})

	s = query.Reduce(s, query.ScreenEvent{Kind: query.ClearSearch})
	assert.Equal(t, "", s.Query)
	assert.Equal(t, core.ScopeAll, s.Scope)
	assert.False(t, s.ShowSearchBar)
	assert.Equal(t, core.FilterCustom, s.DateFilter, "clearing the search keeps the date filter")
	assert.Equal(t, &r, s.CustomRange)

	s = query.Reduce(s, query.ScreenEvent{Kind: query.ToggleFunctionMenu})
	assert.True(t, s.ShowFunctionMenu)
	s = query.Reduce(s, query.ScreenEvent{Kind: query.CloseFunctionMenu})
	assert.False(t, s.ShowFunctionMenu)

	s = query.Reduce(s, query.ScreenEvent{Kind: query.ToggleAccountingStats})
	assert.True(t, s.ShowAccountingStats)

	stats := accounting.CalculateStatistics(nil)
	s = query.Reduce(s, query.ScreenEvent{Kind: query.StatsLoaded, Stats: &stats})
	s = query.Reduce(s, query.ScreenEvent{Kind: query.NotesLoaded, Notes: []core.Note{{ID: "1"}}})
	assert.Equal(t, &stats, s.Stats)
	assert.Len(t, s.Notes, 1)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	before := query.ScreenState{Query: "x"}
	after := query.Reduce(before, query.ScreenEvent{Kind: query.ClearSearch})
	assert.Equal(t, "x", before.Query)
	assert.Equal(t, "", after.Query)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "clear_search", query.ClearSearch.String())
	assert.Equal(t, "unknown", query.EventKind(99).String())
}

func TestDispatch(t *testing.T) {
	store := newFakeStore(
		core.Note{ID: "a", Title: "coffee", CreationTime: now},
		core.Note{ID: "b", Title: "tea", CreationTime: now.AddDate(0, 0, -1)},
	)
	p := newPipeline(store)
	defer p.Close()

	ch, unsubscribe := p.Subscribe(context.Background())
	defer unsubscribe()

	p.Dispatch(query.ScreenEvent{Kind: query.UpdateQuery, Query: "tea"})
	waitFor(t, ch, "b")

	p.Dispatch(query.ScreenEvent{Kind: query.ClearSearch})
	waitFor(t, ch, "a", "b")

	p.Dispatch(query.ScreenEvent{Kind: query.UpdateDateFilter, DateFilter: core.FilterToday})
	waitFor(t, ch, "a")

	r := core.NewDateRange(now.AddDate(0, 0, -2), now.Add(-time.Hour))
	p.Dispatch(query.ScreenEvent{Kind: query.UpdateDateFilter, DateFilter: core.FilterCustom, CustomRange: &r})
	waitFor(t, ch, "b")

	p.Dispatch(query.ScreenEvent{Kind: query.UpdateDateFilter, DateFilter: core.FilterAll})
	waitFor(t, ch, "a", "b")
	require.Nil(t, p.Filter().CustomRange)
}
