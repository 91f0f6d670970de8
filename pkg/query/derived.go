package query

import (
	"context"
	"sort"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/tally/pkg/accounting"
	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/daterange"
)

// derive maps every list of the pipeline through fn. The derived channel
// shares the pipeline subscription and closes with it.
func derive[T any](ctx context.Context, p *Pipeline, fn func([]core.Note) T) (<-chan T, func()) {
	src, unsubscribe := p.Subscribe(ctx)
	out := make(chan T, 1)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for notes := range src {
			v := fn(notes)
			select {
			case <-out:
			default:
			}
			out <- v
		}
		return nil
	})
	return out, unsubscribe
}

// Statistics streams the accounting statistics of the current list.
func (p *Pipeline) Statistics(ctx context.Context) (<-chan accounting.Statistics, func()) {
	return derive(ctx, p, accounting.CalculateStatistics)
}

// AllTags streams the distinct tags of the current list, sorted.
func (p *Pipeline) AllTags(ctx context.Context) (<-chan []string, func()) {
	return derive(ctx, p, DistinctTags)
}

// AccountingNotes streams the notes of the current list that carry accounting tags.
func (p *Pipeline) AccountingNotes(ctx context.Context) (<-chan []core.Note, func()) {
	return derive(ctx, p, accounting.AccountingNotes)
}

// DistinctTags returns every tag used by notes once, sorted.
func DistinctTags(notes []core.Note) []string {
	seen := make(map[string]bool)
	tags := []string{}
	for _, n := range notes {
		for _, t := range n.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// NotesForDate returns the notes of the latest list created on day's calendar
// day. When a calendar tag is set, only notes carrying it are kept.
func (p *Pipeline) NotesForDate(day time.Time) []core.Note {
	p.mu.Lock()
	notes, _ := p.currentLocked()
	tag := p.calendarTag
	p.mu.Unlock()

	out := []core.Note{}
	for _, n := range notes {
		if !daterange.SameDay(day, n.CreationTime) {
			continue
		}
		if tag != "" && !hasTag(n, tag) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func hasTag(n core.Note, tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
