// Package core holds the note domain: the Note record, the filters applied to
// collections of notes and the contracts the storage adapters implement.
package core

import (
	"fmt"
	"strings"
	"time"
)

// Note is the central entity of the domain.
// ID and CreationTime are fixed at creation; LastEditTime moves on every edit.
type Note struct {
	ID           string
	Title        string
	Content      string
	CreationTime time.Time
	LastEditTime time.Time
	Tags         []string
	Images       []ImageRef
}

// HasImages reports whether the note references at least one asset.
func (n Note) HasImages() bool {
	return len(n.Images) > 0
}

// Clone returns a copy that shares no slices with n.
func (n Note) Clone() Note {
	c := n
	if n.Tags != nil {
		c.Tags = append([]string(nil), n.Tags...)
	}
	if n.Images != nil {
		c.Images = append([]ImageRef(nil), n.Images...)
	}
	return c
}

// ImageRef points at an asset file embedded in a note's content.
// Position is the character offset of the image marker at insertion time and
// is not adjusted when the content is edited afterwards.
type ImageRef struct {
	FileName   string
	Position   int
	InsertTime time.Time
	Caption    string
}

// SearchScope selects which note fields a text query is matched against.
type SearchScope int

const (
	ScopeAll SearchScope = iota
	ScopeTitle
	ScopeContent
	ScopeTag
)

var scopeNames = [...]string{"all", "title", "content", "tag"}

func (s SearchScope) String() string {
	if s < 0 || int(s) >= len(scopeNames) {
		return fmt.Sprintf("SearchScope(%d)", int(s))
	}
	return scopeNames[s]
}

// ParseSearchScope maps a scope name (case-insensitive) to a SearchScope.
func ParseSearchScope(name string) (SearchScope, error) {
	for i, n := range scopeNames {
		if strings.EqualFold(name, n) {
			return SearchScope(i), nil
		}
	}
	return ScopeAll, fmt.Errorf("unknown search scope %q", name)
}

// DateFilterType is a named preset (or custom interval) restricting notes by creation time.
type DateFilterType int

const (
	FilterAll DateFilterType = iota
	FilterToday
	FilterYesterday
	FilterThisWeek
	FilterThisMonth
	FilterThisYear
	FilterCustom
)

var filterNames = [...]string{"all", "today", "yesterday", "this_week", "this_month", "this_year", "custom"}

func (f DateFilterType) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return fmt.Sprintf("DateFilterType(%d)", int(f))
	}
	return filterNames[f]
}

// ParseDateFilterType maps a filter name to a DateFilterType.
// Dashes are accepted in place of underscores ("this-week").
func ParseDateFilterType(name string) (DateFilterType, error) {
	norm := strings.ReplaceAll(strings.ToLower(name), "-", "_")
	for i, n := range filterNames {
		if norm == n {
			return DateFilterType(i), nil
		}
	}
	return FilterAll, fmt.Errorf("unknown date filter %q", name)
}

// DateRange is an inclusive [Start, End] interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range, swapping the bounds if they are reversed.
func NewDateRange(start, end time.Time) DateRange {
	if end.Before(start) {
		start, end = end, start
	}
	return DateRange{Start: start, End: end}
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// EventType represents the type of change in the note collection.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change in the note collection or the asset directory.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}
