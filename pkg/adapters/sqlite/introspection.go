package sqlite

import (
	"github.com/aretw0/introspection"

	"github.com/aretw0/tally/pkg/core"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string `json:"path"`
	Closed        bool   `json:"closed"`
	Watchers      int    `json:"watchers"`
	Writes        int64  `json:"writes"`
	Subscribers   int    `json:"subscribers"`
	EventBuffer   int    `json:"event_buffer"`
	DroppedEvents int    `json:"dropped_events"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Path:          s.path,
		Closed:        s.closed,
		Watchers:      s.watchers,
		Writes:        s.writes,
		Subscribers:   s.broker.Subscribers(),
		EventBuffer:   s.broker.BufferSize(),
		DroppedEvents: s.broker.Dropped(),
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "sqlite-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
var _ core.NoteStore = (*Store)(nil)
