// Package query derives the current note list from a reactive store by
// combining a free-text search, a search scope and a date filter.
//
// A Pipeline owns its filter state. Text queries are debounced; every
// effective change replaces the underlying store subscription, and results
// from a replaced subscription never reach subscribers.
package query

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/daterange"
)

const (
	// DefaultDebounce is how long the text query must stay unchanged before it is applied.
	DefaultDebounce = 300 * time.Millisecond
	// DefaultGracePeriod keeps the store subscription alive after the last subscriber leaves.
	DefaultGracePeriod = 5 * time.Second
)

// Filter is the effective filter state behind a list.
type Filter struct {
	Query       string
	Scope       core.SearchScope
	DateFilter  core.DateFilterType
	CustomRange *core.DateRange
}

// Pipeline is a shared, reference-counted view over a core.NoteStore.
type Pipeline struct {
	store    core.Watchable
	debounce time.Duration
	grace    time.Duration
	resolver *daterange.Resolver
	logger   *slog.Logger

	mu sync.Mutex

	// Filter state. query is what the user typed; applied is the debounced value.
	query       string
	applied     string
	scope       core.SearchScope
	dateFilter  core.DateFilterType
	custom      *core.DateRange
	calendarTag string

	debounceSeq   uint64
	debounceTimer *time.Timer

	// Base subscription.
	gen        uint64
	cancelBase context.CancelFunc
	running    bool
	emissions  int
	queries    int

	// Shared output. value is only valid while valueFilter matches the filter.
	value       []core.Note
	valueFilter Filter
	hasValue    bool
	subs      map[uint64]chan []core.Note
	nextSub   uint64
	graceSeq  uint64
	graceTime *time.Timer
	closed    bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDebounce sets the text query debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) {
		p.debounce = d
	}
}

// WithGracePeriod sets how long the computation stays warm without subscribers.
func WithGracePeriod(d time.Duration) Option {
	return func(p *Pipeline) {
		p.grace = d
	}
}

// WithResolver sets the date range resolver.
func WithResolver(r *daterange.Resolver) Option {
	return func(p *Pipeline) {
		p.resolver = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// New creates a pipeline over store. Nothing runs until the first Subscribe.
func New(store core.Watchable, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    store,
		debounce: DefaultDebounce,
		grace:    DefaultGracePeriod,
		logger:   slog.Default(),
		subs:     make(map[uint64]chan []core.Note),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.resolver == nil {
		p.resolver = daterange.New()
	}
	return p
}

// SetQuery updates the text query. The change is applied once the query has
// been stable for the debounce delay; IsSearching reflects it immediately.
func (p *Pipeline) SetQuery(q string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.query = q
	p.debounceSeq++
	seq := p.debounceSeq
	if p.debounceTimer != nil {
		p.debounceTimer.Stop()
	}
	p.debounceTimer = time.AfterFunc(p.debounce, func() {
		p.applyQuery(seq)
	})
}

// SetQueryNow applies q at once, skipping the debounce delay.
func (p *Pipeline) SetQueryNow(q string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.debounceSeq++
	if p.debounceTimer != nil {
		p.debounceTimer.Stop()
		p.debounceTimer = nil
	}
	p.query = q
	if q == p.applied {
		return
	}
	p.applied = q
	p.restartLocked()
}

func (p *Pipeline) applyQuery(seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || seq != p.debounceSeq {
		return
	}
	p.debounceTimer = nil
	if p.query == p.applied {
		return
	}
	p.applied = p.query
	p.restartLocked()
}

// SetScope selects the fields the query is matched against.
func (p *Pipeline) SetScope(s core.SearchScope) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.scope == s {
		return
	}
	p.scope = s
	p.restartLocked()
}

// SetDateFilter selects a date preset.
func (p *Pipeline) SetDateFilter(ft core.DateFilterType) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.dateFilter == ft {
		return
	}
	p.dateFilter = ft
	p.restartLocked()
}

// SetCustomRange sets the interval used by core.FilterCustom.
func (p *Pipeline) SetCustomRange(r core.DateRange) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	r = core.NewDateRange(r.Start, r.End)
	p.custom = &r
	p.restartLocked()
}

// ClearSearch empties the query and resets the scope. The date filter is kept.
func (p *Pipeline) ClearSearch() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.debounceSeq++
	if p.debounceTimer != nil {
		p.debounceTimer.Stop()
		p.debounceTimer = nil
	}
	changed := p.applied != "" || p.scope != core.ScopeAll
	p.query = ""
	p.applied = ""
	p.scope = core.ScopeAll
	if changed {
		p.restartLocked()
	}
}

// ClearDateFilter resets the date filter and forgets the custom range.
func (p *Pipeline) ClearDateFilter() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	changed := p.dateFilter != core.FilterAll || p.custom != nil
	p.dateFilter = core.FilterAll
	p.custom = nil
	if changed {
		p.restartLocked()
	}
}

// SetCalendarTag remembers the tag highlighted in calendar views.
func (p *Pipeline) SetCalendarTag(tag string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calendarTag = tag
}

// CalendarTag returns the tag set by SetCalendarTag.
func (p *Pipeline) CalendarTag() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calendarTag
}

// IsSearching reports whether the typed (not yet debounced) query is non-blank.
func (p *Pipeline) IsSearching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.TrimSpace(p.query) != ""
}

// Filter returns the filter currently applied to the list.
func (p *Pipeline) Filter() Filter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filterLocked()
}

// currentLocked returns the cached list if it was computed under the current filter.
func (p *Pipeline) currentLocked() ([]core.Note, bool) {
	if !p.hasValue || !sameFilter(p.valueFilter, p.filterLocked()) {
		return nil, false
	}
	return p.value, true
}

func sameFilter(a, b Filter) bool {
	if a.Query != b.Query || a.Scope != b.Scope || a.DateFilter != b.DateFilter {
		return false
	}
	if a.CustomRange == nil || b.CustomRange == nil {
		return a.CustomRange == b.CustomRange
	}
	return a.CustomRange.Start.Equal(b.CustomRange.Start) && a.CustomRange.End.Equal(b.CustomRange.End)
}

func (p *Pipeline) filterLocked() Filter {
	f := Filter{Query: p.applied, Scope: p.scope, DateFilter: p.dateFilter}
	if p.custom != nil {
		c := *p.custom
		f.CustomRange = &c
	}
	return f
}

// restartLocked replaces the base subscription if one is running. The
// previous subscription is cancelled before the new one starts.
func (p *Pipeline) restartLocked() {
	if !p.running {
		return
	}
	p.startLocked()
}

func (p *Pipeline) startLocked() {
	if p.cancelBase != nil {
		p.cancelBase()
	}
	p.gen++
	gen := p.gen
	filter := p.filterLocked()

	// Lists computed under a superseded filter are dropped, including unread ones.
	if p.hasValue && !sameFilter(p.valueFilter, filter) {
		p.value = nil
		p.hasValue = false
		for _, ch := range p.subs {
			select {
			case <-ch:
			default:
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancelBase = cancel
	p.running = true

	blank := strings.TrimSpace(filter.Query) == ""
	if !blank {
		p.queries++
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		var (
			stream <-chan []core.Note
			err    error
		)
		if blank {
			stream, err = p.store.WatchAll(ctx)
		} else {
			stream, err = p.store.WatchSearch(ctx, filter.Query, filter.Scope)
		}
		if err != nil {
			return err
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case notes, ok := <-stream:
				if !ok {
					return nil
				}
				p.publish(gen, filter, notes)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		p.logger.Error("note subscription failed", "query", filter.Query, "scope", filter.Scope, "error", err)
	}))
}

func (p *Pipeline) stopLocked() {
	if p.cancelBase != nil {
		p.cancelBase()
		p.cancelBase = nil
	}
	p.gen++
	p.running = false
}

// publish delivers a base emission, dropping it if its subscription has been replaced.
func (p *Pipeline) publish(gen uint64, filter Filter, notes []core.Note) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen || p.closed {
		return
	}

	if r := p.resolver.Resolve(filter.DateFilter, filter.CustomRange); r != nil {
		notes = filterByRange(notes, *r)
	}

	p.value = notes
	p.valueFilter = filter
	p.hasValue = true
	p.emissions++
	for _, ch := range p.subs {
		offer(ch, notes)
	}
}

func filterByRange(notes []core.Note, r core.DateRange) []core.Note {
	out := make([]core.Note, 0, len(notes))
	for _, n := range notes {
		if r.Contains(n.CreationTime) {
			out = append(out, n)
		}
	}
	return out
}

// offer replaces any unread value in ch with notes.
func offer(ch chan []core.Note, notes []core.Note) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- notes:
	default:
	}
}

// Subscribe returns a channel carrying the latest filtered list. A cached list
// is delivered immediately. The channel conflates: a slow reader skips to the
// newest list. The returned function unsubscribes and closes the channel; the
// channel is also closed when ctx is done or the pipeline is closed.
func (p *Pipeline) Subscribe(ctx context.Context) (<-chan []core.Note, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan []core.Note, 1)
	if p.closed {
		close(ch)
		return ch, func() {}
	}

	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch

	// A pending teardown is cancelled by a returning subscriber.
	p.graceSeq++
	if p.graceTime != nil {
		p.graceTime.Stop()
		p.graceTime = nil
	}
	if !p.running {
		p.startLocked()
	}
	if notes, ok := p.currentLocked(); ok {
		ch <- notes
	}

	left := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(left)
			p.unsubscribe(id)
		})
	}
	if ctx.Done() != nil {
		lifecycle.Go(ctx, func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				unsubscribe()
			case <-left:
			}
			return nil
		})
	}
	return ch, unsubscribe
}

func (p *Pipeline) unsubscribe(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, ok := p.subs[id]
	if !ok {
		return
	}
	delete(p.subs, id)
	close(ch)

	if len(p.subs) > 0 || p.closed {
		return
	}
	p.graceSeq++
	seq := p.graceSeq
	p.graceTime = time.AfterFunc(p.grace, func() {
		p.teardown(seq)
	})
}

func (p *Pipeline) teardown(seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq != p.graceSeq || len(p.subs) > 0 {
		return
	}
	p.graceTime = nil
	p.stopLocked()
	p.logger.Debug("note pipeline idle, subscription released")
}

// Snapshot returns the latest list, or nil if nothing has been computed for
// the current filter yet.
func (p *Pipeline) Snapshot() []core.Note {
	p.mu.Lock()
	defer p.mu.Unlock()
	notes, _ := p.currentLocked()
	return notes
}

// Active reports whether a store subscription is currently running.
func (p *Pipeline) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Close stops the pipeline and closes every subscriber channel.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.debounceSeq++
	if p.debounceTimer != nil {
		p.debounceTimer.Stop()
	}
	p.graceSeq++
	if p.graceTime != nil {
		p.graceTime.Stop()
	}
	p.stopLocked()
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}
