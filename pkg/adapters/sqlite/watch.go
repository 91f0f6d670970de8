package sqlite

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/tally/pkg/core"
)

// WatchAll streams the full note list: once immediately and again after
// every change. The channel is closed when ctx is done or the store closes.
func (s *Store) WatchAll(ctx context.Context) (<-chan []core.Note, error) {
	return s.watch(ctx, "all", s.List)
}

// WatchSearch streams the result of Search(query, scope) like WatchAll.
func (s *Store) WatchSearch(ctx context.Context, query string, scope core.SearchScope) (<-chan []core.Note, error) {
	return s.watch(ctx, "search", func(ctx context.Context) ([]core.Note, error) {
		return s.Search(ctx, query, scope)
	})
}

// watch runs fetch on subscription and on every change event. The output
// channel holds one list; a consumer that falls behind only sees the latest.
func (s *Store) watch(ctx context.Context, kind string, fetch func(context.Context) ([]core.Note, error)) (<-chan []core.Note, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	// Subscribe before the first fetch so no change slips in between.
	events, unsubscribe := s.broker.Subscribe()
	out := make(chan []core.Note, 1)

	s.setWatchers(1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer s.setWatchers(-1)
		defer unsubscribe()

		emit := func() bool {
			notes, err := fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				s.logger.Error("watch query failed", "kind", kind, "error", err)
				return true
			}
			// Replace a pending, unread list with the fresh one.
			select {
			case <-out:
			default:
			}
			select {
			case out <- notes:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return nil
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case _, ok := <-events:
				if !ok {
					return nil
				}
				// Coalesce a burst of events into a single re-query.
				drain(events)
				if !emit() {
					return nil
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("watch stopped", "kind", kind, "error", fmt.Errorf("sqlite watch: %w", err))
	}))

	return out, nil
}

func drain(events <-chan core.Event) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (s *Store) setWatchers(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers += delta
}
