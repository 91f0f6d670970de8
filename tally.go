package tally

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/tally/internal/platform"
	"github.com/aretw0/tally/pkg/core"
)

// --- Types ---

// App is an opened data directory: stores, service and backup manager.
type App = platform.App

// Config is the content of tally.yaml.
type Config = platform.FileConfig

// --- Configuration ---

// Option defines a functional option for configuring Tally.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore injects a note store instead of the SQLite database.
func WithStore(store core.NoteStore) Option {
	return platform.WithStore(store)
}

// WithDatabase sets the database file.
func WithDatabase(path string) Option {
	return platform.WithDatabase(path)
}

// WithAssets sets the asset directory.
func WithAssets(dir string) Option {
	return platform.WithAssets(dir)
}

// WithDebounce sets the search debounce of pipelines.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithGracePeriod sets how long pipelines stay warm without subscribers.
func WithGracePeriod(d time.Duration) Option {
	return platform.WithGracePeriod(d)
}

// WithWeekStart sets the first day of the week.
func WithWeekStart(day time.Weekday) Option {
	return platform.WithWeekStart(day)
}

// WithAppVersion sets the version recorded in backups.
func WithAppVersion(v string) Option {
	return platform.WithAppVersion(v)
}

// WithEventBuffer sets the store's change broker buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the `go run` sandbox.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithMustExist fails Open when the data directory is missing.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// --- Factory ---

// Open opens the data directory at dir.
func Open(ctx context.Context, dir string, opts ...Option) (*App, error) {
	return platform.Open(ctx, dir, opts...)
}

// LoadConfig reads tally.yaml from dir.
func LoadConfig(dir string) (Config, error) {
	return platform.LoadConfig(dir)
}

// --- Safety & Utils ---

// DataDir picks the data directory from a flag, $TALLY_HOME or the working directory.
func DataDir(flag string) string {
	return platform.DataDir(flag)
}

// FindRoot looks upwards from startDir for a data directory.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}
