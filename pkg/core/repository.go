package core

import "context"

// Repository defines the contract for storing and retrieving notes.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism.
type Repository interface {
	// List returns every note, most recently edited first.
	List(ctx context.Context) ([]Note, error)

	// Get retrieves a note by its ID. It returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (Note, error)

	// Search returns the notes whose scoped fields contain query (case-sensitive substring).
	Search(ctx context.Context, query string, scope SearchScope) ([]Note, error)

	// Insert stores a note, replacing any note with the same ID.
	Insert(ctx context.Context, n Note) error

	// Update rewrites an existing note. It returns ErrNotFound if absent.
	Update(ctx context.Context, n Note) error

	// Delete removes a note by its ID. Deleting an absent note is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every note.
	DeleteAll(ctx context.Context) error
}

// Watchable is implemented by repositories that publish their contents reactively.
// Streams emit the current result immediately and again after every change;
// the channel is closed once ctx is done.
type Watchable interface {
	WatchAll(ctx context.Context) (<-chan []Note, error)
	WatchSearch(ctx context.Context, query string, scope SearchScope) (<-chan []Note, error)
}

// NoteStore is a reactive repository.
type NoteStore interface {
	Repository
	Watchable
}

// AssetStore manages the binary files referenced by ImageRef.FileName.
type AssetStore interface {
	ListAssets(ctx context.Context) ([]string, error)
	ReadAsset(ctx context.Context, name string) ([]byte, error)
	WriteAsset(ctx context.Context, name string, data []byte) error
	DeleteAsset(ctx context.Context, name string) error
	AssetExists(ctx context.Context, name string) (bool, error)
}
