// Package daterange maps a date filter selection to a concrete, inclusive
// time interval.
package daterange

import (
	"time"

	"github.com/aretw0/tally/pkg/core"
)

// Resolver resolves filter presets relative to the current time.
type Resolver struct {
	now       func() time.Time
	loc       *time.Location
	weekStart time.Weekday
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithLocation sets the time zone day boundaries are computed in.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) {
		r.loc = loc
	}
}

// WithWeekStart sets the first day of the week.
func WithWeekStart(day time.Weekday) Option {
	return func(r *Resolver) {
		r.weekStart = day
	}
}

// New creates a Resolver. Defaults: time.Now, time.Local, weeks starting on Monday.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		now:       time.Now,
		loc:       time.Local,
		weekStart: time.Monday,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WeekStart returns the configured first day of the week.
func (r *Resolver) WeekStart() time.Weekday {
	return r.weekStart
}

// Now returns the current time in the resolver's location.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Resolve returns the interval for ft, or nil when no filtering applies:
// FilterAll, or FilterCustom before a custom range has been chosen.
// The custom range is returned unchanged.
func (r *Resolver) Resolve(ft core.DateFilterType, custom *core.DateRange) *core.DateRange {
	now := r.Now()

	var start, end time.Time
	switch ft {
	case core.FilterToday:
		start, end = StartOfDay(now), EndOfDay(now)
	case core.FilterYesterday:
		y := now.AddDate(0, 0, -1)
		start, end = StartOfDay(y), EndOfDay(y)
	case core.FilterThisWeek:
		offset := (int(now.Weekday()) - int(r.weekStart) + 7) % 7
		start = StartOfDay(now.AddDate(0, 0, -offset))
		end = EndOfDay(start.AddDate(0, 0, 6))
	case core.FilterThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, r.loc)
		// Day 0 of the next month is the last day of this one.
		end = EndOfDay(time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, r.loc))
	case core.FilterThisYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, r.loc)
		end = EndOfDay(time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, r.loc))
	case core.FilterCustom:
		if custom == nil {
			return nil
		}
		c := *custom
		return &c
	default:
		return nil
	}

	return &core.DateRange{Start: start, End: end}
}

// StartOfDay returns 00:00:00.000 of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
