package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NoteInput carries the user-editable fields of a note.
type NoteInput struct {
	Title   string
	Content string
	Tags    []string
	Images  []ImageRef
}

// Service handles the note lifecycle: creation, edits and deletion.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock replaces the time source used for note timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator replaces the note ID generator.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		s.newID = fn
	}
}

// WithServiceLogger sets the logger used by the service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository returns the underlying repository.
func (s *Service) Repository() Repository {
	return s.repo
}

// clock returns the current time at the millisecond resolution notes are stored with.
func (s *Service) clock() time.Time {
	return s.now().Truncate(time.Millisecond)
}

// Create stores a new note with a fresh ID and both timestamps set to now.
func (s *Service) Create(ctx context.Context, in NoteInput) (Note, error) {
	now := s.clock()
	n := Note{
		ID:           s.newID(),
		Title:        in.Title,
		Content:      in.Content,
		CreationTime: now,
		LastEditTime: now,
		Tags:         append([]string(nil), in.Tags...),
		Images:       append([]ImageRef(nil), in.Images...),
	}

	if err := s.repo.Insert(ctx, n); err != nil {
		return Note{}, fmt.Errorf("create note: %w", err)
	}
	s.logger.Debug("note created", "id", n.ID, "tags", len(n.Tags))
	return n, nil
}

// Update replaces the editable fields of an existing note.
// CreationTime is preserved and LastEditTime is refreshed.
func (s *Service) Update(ctx context.Context, id string, in NoteInput) (Note, error) {
	if id == "" {
		return Note{}, ErrInvalidID
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Note{}, err
	}

	now := s.clock()
	if now.Before(existing.CreationTime) {
		now = existing.CreationTime
	}

	n := Note{
		ID:           id,
		Title:        in.Title,
		Content:      in.Content,
		CreationTime: existing.CreationTime,
		LastEditTime: now,
		Tags:         append([]string(nil), in.Tags...),
		Images:       append([]ImageRef(nil), in.Images...),
	}

	if err := s.repo.Update(ctx, n); err != nil {
		return Note{}, fmt.Errorf("update note %s: %w", id, err)
	}
	s.logger.Debug("note updated", "id", id)
	return n, nil
}

// Get retrieves a note.
func (s *Service) Get(ctx context.Context, id string) (Note, error) {
	if id == "" {
		return Note{}, ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// Find is Get without the error for a missing note: it returns (note, false) instead.
func (s *Service) Find(ctx context.Context, id string) (Note, bool, error) {
	n, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Note{}, false, nil
	}
	if err != nil {
		return Note{}, false, err
	}
	return n, true, nil
}

// List retrieves all notes.
func (s *Service) List(ctx context.Context) ([]Note, error) {
	return s.repo.List(ctx)
}

// Search runs a one-shot scoped search.
func (s *Service) Search(ctx context.Context, query string, scope SearchScope) ([]Note, error) {
	return s.repo.Search(ctx, query, scope)
}

// Delete removes a note by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	s.logger.Debug("note deleted", "id", id)
	return nil
}

// DeleteNote removes the given note.
func (s *Service) DeleteNote(ctx context.Context, n Note) error {
	return s.Delete(ctx, n.ID)
}

// WatchAll observes the full collection if the repository supports it.
func (s *Service) WatchAll(ctx context.Context) (<-chan []Note, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	return w.WatchAll(ctx)
}
