// Package backup packs every note and asset into a single zip archive and
// restores such archives back into the stores.
//
// An archive holds three kinds of entries:
//
//	backup_metadata.json   version, timestamp and counts
//	notes.json             every note as a JSON array
//	images/<file>          one entry per asset, bytes verbatim
package backup

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/tally/pkg/core"
)

// Archive layout.
const (
	FormatVersion  = "1.0"
	MetadataEntry  = "backup_metadata.json"
	NotesEntry     = "notes.json"
	ImagesPrefix   = "images/"
	DefaultVersion = "1.0"
)

// Metadata describes an archive. Timestamp is epoch milliseconds.
type Metadata struct {
	Version    string `json:"version"`
	Timestamp  int64  `json:"timestamp"`
	NoteCount  int    `json:"noteCount"`
	ImageCount int    `json:"imageCount"`
	AppVersion string `json:"appVersion"`
}

// Time returns the creation time of the archive.
func (m Metadata) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// Result reports the outcome of a backup.
type Result struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Path       string `json:"path,omitempty"`
	NoteCount  int    `json:"noteCount"`
	ImageCount int    `json:"imageCount"`
	Err        error  `json:"-"`
}

// RestoreResult reports the outcome of a restore.
type RestoreResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	NoteCount     int    `json:"noteCount"`
	SkippedNotes  int    `json:"skippedNotes"`
	ImageCount    int    `json:"imageCount"`
	SkippedImages int    `json:"skippedImages"`
	Err           error  `json:"-"`
}

// Manager creates and restores archives. At most one operation runs at a time.
type Manager struct {
	notes      core.NoteStore
	assets     core.AssetStore
	logger     *slog.Logger
	appVersion string
	now        func() time.Time
	tempDir    string

	busy atomic.Bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithAppVersion sets the application version recorded in new archives.
func WithAppVersion(v string) Option {
	return func(m *Manager) {
		if v != "" {
			m.appVersion = v
		}
	}
}

// WithClock overrides the clock used for archive timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithTempDir sets where archives and restored assets are spooled.
// The default is the system temp directory.
func WithTempDir(dir string) Option {
	return func(m *Manager) {
		m.tempDir = dir
	}
}

// New returns a Manager over the given stores.
func New(notes core.NoteStore, assets core.AssetStore, opts ...Option) *Manager {
	m := &Manager{
		notes:      notes,
		assets:     assets,
		logger:     slog.Default(),
		appVersion: DefaultVersion,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// InProgress reports whether a backup or restore is running.
func (m *Manager) InProgress() bool {
	return m.busy.Load()
}

func (m *Manager) acquire() bool {
	return m.busy.CompareAndSwap(false, true)
}

func (m *Manager) release() {
	m.busy.Store(false)
}

// FileName returns the conventional archive name for a backup taken at now.
func FileName(now time.Time) string {
	return "noteapp_backup_" + now.Format("20060102_150405") + ".zip"
}

// Validate returns the metadata of the archive, or nil when r is not a
// readable archive or carries no metadata entry.
func Validate(r io.ReaderAt, size int64) *Metadata {
	zr, err := openZip(r, size)
	if err != nil {
		return nil
	}
	for _, f := range zr.File {
		if f.Name != MetadataEntry {
			continue
		}
		var meta Metadata
		if err := readJSON(f, &meta); err != nil {
			return nil
		}
		return &meta
	}
	return nil
}

// openZip tolerates unsafe entry names; callers vet names themselves.
func openZip(r io.ReaderAt, size int64) (*zip.Reader, error) {
	zr, err := zip.NewReader(r, size)
	if errors.Is(err, zip.ErrInsecurePath) {
		return zr, nil
	}
	return zr, err
}

func readJSON(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := json.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", f.Name, err)
	}
	return nil
}

// ManagerState exposes internal state for observability.
type ManagerState struct {
	InProgress bool   `json:"in_progress"`
	AppVersion string `json:"app_version"`
	Format     string `json:"format"`
}

// State implements introspection.Introspectable.
func (m *Manager) State() any {
	return ManagerState{
		InProgress: m.InProgress(),
		AppVersion: m.appVersion,
		Format:     FormatVersion,
	}
}

// ComponentType implements introspection.Component.
func (m *Manager) ComponentType() string {
	return "backup-manager"
}

var _ introspection.Introspectable = (*Manager)(nil)
var _ introspection.Component = (*Manager)(nil)
