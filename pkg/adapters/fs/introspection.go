package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// AssetStoreState exposes internal state for observability.
type AssetStoreState struct {
	Dir           string     `json:"dir"`
	Written       int        `json:"written"`
	Deleted       int        `json:"deleted"`
	WatcherActive bool       `json:"watcher_active"`
	LastPrune     *time.Time `json:"last_prune,omitempty"`
}

// State implements introspection.Introspectable.
func (s *AssetStore) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return AssetStoreState{
		Dir:           s.Dir,
		Written:       s.written,
		Deleted:       s.deleted,
		WatcherActive: s.watcherActive,
		LastPrune:     s.lastPrune,
	}
}

// ComponentType implements introspection.Component.
func (s *AssetStore) ComponentType() string {
	return "asset-store"
}

var _ introspection.Introspectable = (*AssetStore)(nil)
var _ introspection.Component = (*AssetStore)(nil)

func (s *AssetStore) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}
