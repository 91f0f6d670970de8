package query

import (
	"strings"

	"github.com/aretw0/tally/pkg/accounting"
	"github.com/aretw0/tally/pkg/core"
)

// ScreenState is the immutable view model of the main note list.
type ScreenState struct {
	Notes               []core.Note
	Query               string
	Scope               core.SearchScope
	Searching           bool
	ShowSearchBar       bool
	ShowFunctionMenu    bool
	ShowAccountingStats bool
	Stats               *accounting.Statistics
	DateFilter          core.DateFilterType
	CustomRange         *core.DateRange
}

// EventKind enumerates the screen events.
type EventKind int

const (
	ToggleSearchBar EventKind = iota
	ToggleFunctionMenu
	CloseFunctionMenu
	ToggleAccountingStats
	ClearSearch
	UpdateQuery
	UpdateScope
	UpdateDateFilter
	NotesLoaded
	StatsLoaded
)

var eventNames = [...]string{
	"toggle_search_bar",
	"toggle_function_menu",
	"close_function_menu",
	"toggle_accounting_stats",
	"clear_search",
	"update_query",
	"update_scope",
	"update_date_filter",
	"notes_loaded",
	"stats_loaded",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// ScreenEvent is one user action or data update. Only the fields relevant
// to Kind are read.
type ScreenEvent struct {
	Kind        EventKind
	Query       string
	Scope       core.SearchScope
	DateFilter  core.DateFilterType
	CustomRange *core.DateRange
	Notes       []core.Note
	Stats       *accounting.Statistics
}

// Reduce returns the state that results from applying ev to s.
func Reduce(s ScreenState, ev ScreenEvent) ScreenState {
	switch ev.Kind {
	case ToggleSearchBar:
		s.ShowSearchBar = !s.ShowSearchBar
	case ToggleFunctionMenu:
		s.ShowFunctionMenu = !s.ShowFunctionMenu
	case CloseFunctionMenu:
		s.ShowFunctionMenu = false
	case ToggleAccountingStats:
		s.ShowAccountingStats = !s.ShowAccountingStats
	case ClearSearch:
		s.Query = ""
		s.Scope = core.ScopeAll
		s.Searching = false
		s.ShowSearchBar = false
	case UpdateQuery:
		s.Query = ev.Query
		s.Searching = strings.TrimSpace(ev.Query) != ""
	case UpdateScope:
		s.Scope = ev.Scope
	case UpdateDateFilter:
		s.DateFilter = ev.DateFilter
		s.CustomRange = ev.CustomRange
	case NotesLoaded:
		s.Notes = ev.Notes
	case StatsLoaded:
		s.Stats = ev.Stats
	}
	return s
}

// Dispatch forwards the filter-changing part of ev to the pipeline.
func (p *Pipeline) Dispatch(ev ScreenEvent) {
	switch ev.Kind {
	case ClearSearch:
		p.ClearSearch()
	case UpdateQuery:
		p.SetQuery(ev.Query)
	case UpdateScope:
		p.SetScope(ev.Scope)
	case UpdateDateFilter:
		if ev.CustomRange != nil {
			p.SetCustomRange(*ev.CustomRange)
		}
		if ev.DateFilter == core.FilterAll && ev.CustomRange == nil {
			p.ClearDateFilter()
			return
		}
		p.SetDateFilter(ev.DateFilter)
	}
}
