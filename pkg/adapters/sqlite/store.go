// Package sqlite implements the note store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/tally/pkg/core"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL DEFAULT '',
	content        TEXT NOT NULL DEFAULT '',
	creation_time  INTEGER NOT NULL,
	last_edit_time INTEGER NOT NULL,
	tags           TEXT NOT NULL DEFAULT '[]',
	images         TEXT NOT NULL DEFAULT '[]',
	has_images     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS notes_last_edit ON notes(last_edit_time DESC);
`

const selectColumns = `SELECT id, title, content, creation_time, last_edit_time, tags, images FROM notes`

// Store is a core.NoteStore backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	broker *core.Broker

	mu       sync.RWMutex
	closed   bool
	watchers int
	writes   int64
}

// Config holds the configuration for the SQLite store.
type Config struct {
	// Path is the database file. ":memory:" keeps the store in memory.
	Path        string
	Logger      *slog.Logger
	EventBuffer int
}

// Open opens (creating if needed) the database and applies the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite: database path is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{
		db:     db,
		path:   cfg.Path,
		logger: cfg.Logger,
		broker: core.NewBroker(cfg.EventBuffer),
	}, nil
}

// Close stops every watch stream and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.broker.Close()
	return s.db.Close()
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return core.ErrClosed
	}
	return nil
}

// List returns every note, most recently edited first.
func (s *Store) List(ctx context.Context) ([]core.Note, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.query(ctx, selectColumns+` ORDER BY last_edit_time DESC, id`)
}

// Get retrieves a note by ID.
func (s *Store) Get(ctx context.Context, id string) (core.Note, error) {
	if err := s.checkOpen(); err != nil {
		return core.Note{}, err
	}
	notes, err := s.query(ctx, selectColumns+` WHERE id = ?`, id)
	if err != nil {
		return core.Note{}, err
	}
	if len(notes) == 0 {
		return core.Note{}, core.ErrNotFound
	}
	return notes[0], nil
}

// Search returns the notes whose scoped fields contain query as a
// case-sensitive substring. The tag scope matches against the encoded tag
// list, so a query can span the quotes and commas between tags.
func (s *Store) Search(ctx context.Context, query string, scope core.SearchScope) ([]core.Note, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var where string
	var args []any
	switch scope {
	case core.ScopeTitle:
		where, args = `instr(title, ?) > 0`, []any{query}
	case core.ScopeContent:
		where, args = `instr(content, ?) > 0`, []any{query}
	case core.ScopeTag:
		where, args = `instr(tags, ?) > 0`, []any{query}
	default:
		where = `instr(title, ?) > 0 OR instr(content, ?) > 0 OR instr(tags, ?) > 0`
		args = []any{query, query, query}
	}
	return s.query(ctx, selectColumns+` WHERE `+where+` ORDER BY last_edit_time DESC, id`, args...)
}

// Insert stores n, replacing any note with the same ID.
func (s *Store) Insert(ctx context.Context, n core.Note) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if n.ID == "" {
		return core.ErrInvalidID
	}
	args, err := rowArgs(n)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO notes
		(id, title, content, creation_time, last_edit_time, tags, images, has_images)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("insert note %s: %w", n.ID, err)
	}
	s.notify(core.EventCreate, n.ID)
	return nil
}

// Update rewrites an existing note. It returns core.ErrNotFound if absent.
func (s *Store) Update(ctx context.Context, n core.Note) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	args, err := rowArgs(n)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE notes SET
		title = ?, content = ?, creation_time = ?, last_edit_time = ?, tags = ?, images = ?, has_images = ?
		WHERE id = ?`, append(args[1:], n.ID)...)
	if err != nil {
		return fmt.Errorf("update note %s: %w", n.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return core.ErrNotFound
	}
	s.notify(core.EventModify, n.ID)
	return nil
}

// Delete removes a note. Deleting an absent note is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		s.notify(core.EventDelete, id)
	}
	return nil
}

// DeleteAll removes every note.
func (s *Store) DeleteAll(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes`); err != nil {
		return fmt.Errorf("delete all notes: %w", err)
	}
	s.notify(core.EventDelete, "")
	return nil
}

// Count returns the number of stored notes.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&n)
	return n, err
}

func (s *Store) notify(t core.EventType, id string) {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()

	s.broker.Publish(core.Event{Type: t, ID: id, Timestamp: time.Now().Unix()})
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]core.Note, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	notes := []core.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	return notes, nil
}

func scanNote(rows *sql.Rows) (core.Note, error) {
	var (
		n               core.Note
		created, edited int64
		tagsJSON        string
		imagesJSON      string
	)
	if err := rows.Scan(&n.ID, &n.Title, &n.Content, &created, &edited, &tagsJSON, &imagesJSON); err != nil {
		return core.Note{}, fmt.Errorf("scan note: %w", err)
	}
	n.CreationTime = time.UnixMilli(created)
	n.LastEditTime = time.UnixMilli(edited)

	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
		return core.Note{}, fmt.Errorf("decode tags of %s: %w", n.ID, err)
	}
	if err := json.Unmarshal([]byte(imagesJSON), &n.Images); err != nil {
		return core.Note{}, fmt.Errorf("decode images of %s: %w", n.ID, err)
	}
	if len(n.Images) == 0 {
		n.Images = nil
	}
	return n, nil
}

func rowArgs(n core.Note) ([]any, error) {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := encodeTags(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	images := n.Images
	if images == nil {
		images = []core.ImageRef{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}

	return []any{
		n.ID,
		n.Title,
		n.Content,
		n.CreationTime.UnixMilli(),
		n.LastEditTime.UnixMilli(),
		tagsJSON,
		string(imagesJSON),
		n.HasImages(),
	}, nil
}

// encodeTags writes the tag list without HTML escaping so that instr()
// sees "&" and "<" as typed.
func encodeTags(tags []string) (string, error) {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tags); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
