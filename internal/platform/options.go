package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/tally/pkg/core"
)

// options holds the internal configuration for a Tally app.
type options struct {
	logger      *slog.Logger
	store       core.NoteStore
	database    string
	assets      string
	debounce    time.Duration
	grace       time.Duration
	weekStart   time.Weekday
	appVersion  string
	eventBuffer int
	forceTemp   bool
	devSafety   bool
	mustExist   bool
	now         func() time.Time
}

// Option defines a functional option for configuring Tally.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		database:   DefaultDatabase,
		assets:     DefaultAssets,
		weekStart:  time.Monday,
		appVersion: "1.0",
		devSafety:  true,
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a note store instead of opening the SQLite database.
// The app does not close an injected store.
func WithStore(store core.NoteStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithDatabase sets the database file, relative to the data directory
// unless absolute. ":memory:" keeps notes in memory.
func WithDatabase(path string) Option {
	return func(o *options) {
		o.database = path
	}
}

// WithAssets sets the asset directory, relative to the data directory unless absolute.
func WithAssets(dir string) Option {
	return func(o *options) {
		o.assets = dir
	}
}

// WithDebounce sets the search debounce of pipelines created by the app.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithGracePeriod sets how long pipelines keep their store subscription without subscribers.
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) {
		o.grace = d
	}
}

// WithWeekStart sets the first day of the week for the THIS_WEEK filter.
func WithWeekStart(day time.Weekday) Option {
	return func(o *options) {
		o.weekStart = day
	}
}

// WithAppVersion sets the version recorded in backup archives.
func WithAppVersion(v string) Option {
	return func(o *options) {
		o.appVersion = v
	}
}

// WithEventBuffer sets the per-subscriber buffer of the store's change broker.
// Zero means default.
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run`.
// By default (true) the data directory is re-rooted under the system temp
// directory so development runs never touch real data.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithMustExist fails Open when the data directory does not exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithClock overrides the time source of the service, resolver and backups.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
