package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/tally/pkg/adapters/fs"
	"github.com/aretw0/tally/pkg/adapters/sqlite"
	"github.com/aretw0/tally/pkg/backup"
	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/daterange"
	"github.com/aretw0/tally/pkg/query"
)

// App wires the note store, asset store, service and backup manager of one
// data directory.
type App struct {
	Dir      string
	Store    core.NoteStore
	Assets   *fs.AssetStore
	Service  *core.Service
	Backup   *backup.Manager
	Resolver *daterange.Resolver
	Logger   *slog.Logger

	opts      *options
	ownsStore bool
	closeOnce sync.Once
}

// Open prepares the data directory dir and opens its stores.
// Settings from dir/tally.yaml apply first; opts override them.
func Open(ctx context.Context, dir string, opts ...Option) (*App, error) {
	pre := defaultOptions()
	for _, opt := range opts {
		opt(pre)
	}
	if pre.logger == nil {
		pre.logger = slog.Default()
	}

	useTemp := pre.forceTemp || (IsDevRun() && pre.devSafety)
	resolved := ResolveDataPath(dir, useTemp)
	if useTemp && resolved != filepath.Clean(dir) {
		pre.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", dir, "resolved_path", resolved)
	}

	if pre.mustExist {
		if _, err := os.Stat(resolved); err != nil {
			return nil, fmt.Errorf("data directory does not exist: %s", resolved)
		}
	} else if err := os.MkdirAll(resolved, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	fileCfg, err := LoadConfig(resolved)
	if err != nil {
		return nil, err
	}
	fileOpts, err := fileCfg.Options()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, err)
	}
	// File settings sit below explicit options.
	o := defaultOptions()
	for _, opt := range append(fileOpts, opts...) {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	app := &App{Dir: resolved, Logger: o.logger, opts: o}

	if o.store != nil {
		app.Store = o.store
	} else {
		store, err := sqlite.Open(ctx, sqlite.Config{
			Path:        app.path(o.database),
			Logger:      o.logger,
			EventBuffer: o.eventBuffer,
		})
		if err != nil {
			return nil, err
		}
		app.Store = store
		app.ownsStore = true
	}

	app.Assets = fs.NewAssetStore(fs.Config{Dir: app.path(o.assets), Logger: o.logger})
	if err := app.Assets.Initialize(ctx); err != nil {
		app.Close()
		return nil, err
	}

	var svcOpts []core.ServiceOption
	resolverOpts := []daterange.Option{daterange.WithWeekStart(o.weekStart)}
	backupOpts := []backup.Option{backup.WithLogger(o.logger), backup.WithAppVersion(o.appVersion)}
	if o.now != nil {
		svcOpts = append(svcOpts, core.WithClock(o.now))
		resolverOpts = append(resolverOpts, daterange.WithClock(o.now))
		backupOpts = append(backupOpts, backup.WithClock(o.now))
	}
	svcOpts = append(svcOpts, core.WithServiceLogger(o.logger))

	app.Service = core.NewService(app.Store, svcOpts...)
	app.Resolver = daterange.New(resolverOpts...)
	app.Backup = backup.New(app.Store, app.Assets, backupOpts...)

	o.logger.Debug("app opened", "dir", resolved, "database", o.database, "assets", o.assets)
	return app, nil
}

func (a *App) path(p string) string {
	if p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.Dir, p)
}

// NewPipeline returns a query pipeline over the app's store using the
// configured debounce, grace period and week start.
func (a *App) NewPipeline(opts ...query.Option) *query.Pipeline {
	base := []query.Option{query.WithResolver(a.Resolver), query.WithLogger(a.Logger)}
	if a.opts.debounce > 0 {
		base = append(base, query.WithDebounce(a.opts.debounce))
	}
	if a.opts.grace > 0 {
		base = append(base, query.WithGracePeriod(a.opts.grace))
	}
	return query.New(a.Store, append(base, opts...)...)
}

// Components lists the app's observable components.
func (a *App) Components() []introspection.Component {
	var out []introspection.Component
	for _, c := range []any{a.Service, a.Store, a.Assets, a.Backup} {
		if comp, ok := c.(introspection.Component); ok {
			out = append(out, comp)
		}
	}
	return out
}

// State returns the state of every introspectable component keyed by type.
func (a *App) State() map[string]any {
	states := make(map[string]any)
	for _, c := range a.Components() {
		if intro, ok := c.(introspection.Introspectable); ok {
			states[c.ComponentType()] = intro.State()
		}
	}
	return states
}

// Close releases the store if the app opened it.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		if !a.ownsStore {
			return
		}
		if c, ok := a.Store.(interface{ Close() error }); ok {
			err = c.Close()
		}
	})
	if errors.Is(err, core.ErrClosed) {
		return nil
	}
	return err
}
