// Package lifecycle exposes tally change events as a lifecycle.Source.
package lifecycle

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/tally/pkg/core"
)

// Source bridges a core.Event channel to the generic lifecycle event stream.
type Source struct {
	events <-chan core.Event
	out    chan lifecycle.Event
	keep   map[core.EventType]bool

	forwarded atomic.Int64
	filtered  atomic.Int64
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithTypes forwards only events of the given types.
func WithTypes(types ...core.EventType) SourceOption {
	return func(s *Source) {
		if len(types) == 0 {
			return
		}
		s.keep = make(map[core.EventType]bool, len(types))
		for _, t := range types {
			s.keep[t] = true
		}
	}
}

// NewSource creates a lifecycle.Source over events.
func NewSource(events <-chan core.Event, opts ...SourceOption) *Source {
	s := &Source{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ lifecycle.Source = (*Source)(nil)

// Events implements lifecycle.Source. The channel closes when the input
// closes or the context given to Start is done.
func (s *Source) Events() <-chan lifecycle.Event {
	return s.out
}

// Start implements lifecycle.Source.
func (s *Source) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if s.keep != nil && !s.keep[e.Type] {
					s.filtered.Add(1)
					continue
				}
				select {
				case s.out <- e:
					s.forwarded.Add(1)
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

// Forwarded returns how many events were delivered.
func (s *Source) Forwarded() int64 {
	return s.forwarded.Load()
}

// Filtered returns how many events were dropped by WithTypes.
func (s *Source) Filtered() int64 {
	return s.filtered.Load()
}
