// Package fs implements the asset store on a plain directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/tally/pkg/core"
)

// AssetStore keeps note attachments as files in a single directory.
type AssetStore struct {
	Dir    string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	lastPrune     *time.Time
	written       int
	deleted       int
}

// Config holds the configuration for the asset store.
type Config struct {
	Dir       string
	Logger    *slog.Logger
	MustExist bool
	// ErrorHandler receives watcher errors. Defaults to logging them.
	ErrorHandler func(error)
	// Debounce merges bursts of file events for the same asset.
	Debounce time.Duration
}

// NewAssetStore creates an asset store rooted at cfg.Dir.
func NewAssetStore(cfg Config) *AssetStore {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 50 * time.Millisecond
	}
	return &AssetStore{Dir: cfg.Dir, config: cfg}
}

// Initialize creates the asset directory unless MustExist is set.
func (s *AssetStore) Initialize(ctx context.Context) error {
	if s.config.MustExist {
		info, err := os.Stat(s.Dir)
		if os.IsNotExist(err) {
			return fmt.Errorf("asset directory does not exist: %s", s.Dir)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("asset path is not a directory: %s", s.Dir)
		}
		return nil
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create asset directory: %w", err)
	}
	return nil
}

// ValidateName rejects anything but a plain file name.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name || isTempFile(name) {
		return fmt.Errorf("%w: %q", core.ErrInvalidAssetName, name)
	}
	return nil
}

// Path returns the on-disk location of an asset.
func (s *AssetStore) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name), nil
}

// ListAssets returns the asset names in lexical order. A missing directory
// holds no assets.
func (s *AssetStore) ListAssets(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || isTempFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ReadAsset returns the bytes of an asset.
func (s *AssetStore) ReadAsset(ctx context.Context, name string) ([]byte, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", name, err)
	}
	return data, nil
}

// WriteAsset stores data under name, replacing any previous content atomically.
func (s *AssetStore) WriteAsset(ctx context.Context, name string, data []byte) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create asset directory: %w", err)
	}
	if err := WriteFileAtomic(p, data, 0644); err != nil {
		return fmt.Errorf("write asset %s: %w", name, err)
	}
	s.count(&s.written)
	return nil
}

// DeleteAsset removes an asset. Deleting a missing asset is not an error.
func (s *AssetStore) DeleteAsset(ctx context.Context, name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("delete asset %s: %w", name, err)
	}
	s.count(&s.deleted)
	return nil
}

// AssetExists reports whether an asset is present.
func (s *AssetStore) AssetExists(ctx context.Context, name string) (bool, error) {
	p, err := s.Path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Prune deletes every asset not present in used and returns the removed names.
func (s *AssetStore) Prune(ctx context.Context, used map[string]struct{}) ([]string, error) {
	names, err := s.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if _, ok := used[name]; ok {
			continue
		}
		if err := s.DeleteAsset(ctx, name); err != nil {
			s.config.Logger.Warn("failed to prune asset", "name", name, "error", err)
			continue
		}
		removed = append(removed, name)
	}

	s.mu.Lock()
	now := time.Now()
	s.lastPrune = &now
	s.mu.Unlock()

	s.config.Logger.Debug("pruned assets", "removed", len(removed), "kept", len(names)-len(removed))
	return removed, nil
}

func (s *AssetStore) count(c *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*c++
}

var _ core.AssetStore = (*AssetStore)(nil)
