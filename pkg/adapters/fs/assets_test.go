package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tally/pkg/adapters/fs"
	"github.com/aretw0/tally/pkg/core"
)

func newStore(t *testing.T) *fs.AssetStore {
	t.Helper()
	store := fs.NewAssetStore(fs.Config{Dir: filepath.Join(t.TempDir(), "images")})
	require.NoError(t, store.Initialize(context.Background()))
	return store
}

func TestAssetStore_ReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.WriteAsset(ctx, "a.jpg", []byte("jpeg")))
	ok, err := store.AssetExists(ctx, "a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := store.ReadAsset(ctx, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)

	require.NoError(t, store.WriteAsset(ctx, "a.jpg", []byte("jpeg v2")))
	data, err = store.ReadAsset(ctx, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg v2"), data)

	require.NoError(t, store.DeleteAsset(ctx, "a.jpg"))
	require.NoError(t, store.DeleteAsset(ctx, "a.jpg"))
	ok, err = store.AssetExists(ctx, "a.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	state := store.State().(fs.AssetStoreState)
	assert.Equal(t, 2, state.Written)
	assert.Equal(t, 1, state.Deleted)
}

func TestAssetStore_ListSkipsDirsAndTempFiles(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.WriteAsset(ctx, "b.jpg", []byte("b")))
	require.NoError(t, store.WriteAsset(ctx, "a.jpg", []byte("a")))
	require.NoError(t, os.Mkdir(filepath.Join(store.Dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, fs.TempFilePrefix+"x"), nil, 0644))

	names, err := store.ListAssets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, names)
}

func TestAssetStore_MissingDirIsEmpty(t *testing.T) {
	store := fs.NewAssetStore(fs.Config{Dir: filepath.Join(t.TempDir(), "nope")})
	names, err := store.ListAssets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)

	// Writing creates the directory on demand.
	require.NoError(t, store.WriteAsset(context.Background(), "x.png", []byte("x")))
}

func TestAssetStore_RejectsUnsafeNames(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	for _, name := range []string{"", ".", "..", "../escape.jpg", "dir/a.jpg", `dir\a.jpg`, fs.TempFilePrefix + "1"} {
		err := store.WriteAsset(ctx, name, []byte("x"))
		assert.True(t, errors.Is(err, core.ErrInvalidAssetName), "name %q: %v", name, err)
	}
}

func TestAssetStore_MustExist(t *testing.T) {
	store := fs.NewAssetStore(fs.Config{Dir: filepath.Join(t.TempDir(), "missing"), MustExist: true})
	assert.Error(t, store.Initialize(context.Background()))
}

func TestAssetStore_Prune(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	for _, n := range []string{"keep.jpg", "drop1.jpg", "drop2.jpg"} {
		require.NoError(t, store.WriteAsset(ctx, n, []byte(n)))
	}

	removed, err := store.Prune(ctx, map[string]struct{}{"keep.jpg": {}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"drop1.jpg", "drop2.jpg"}, removed)

	names, err := store.ListAssets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.jpg"}, names)
	assert.NotNil(t, store.State().(fs.AssetStoreState).LastPrune)
}

func TestAssetStore_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := fs.NewAssetStore(fs.Config{Dir: t.TempDir(), Debounce: 20 * time.Millisecond})
	events, err := store.Watch(ctx, "*.jpg")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return store.State().(fs.AssetStoreState).WatcherActive
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "ignored.txt"), []byte("x"), 0644))
	require.NoError(t, store.WriteAsset(ctx, "photo.jpg", []byte("x")))

	select {
	case e := <-events:
		assert.Equal(t, "photo.jpg", e.ID)
		assert.Equal(t, core.EventCreate, e.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for asset event")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func TestAssetStore_WatchRejectsBadPattern(t *testing.T) {
	store := newStore(t)
	_, err := store.Watch(context.Background(), "[")
	assert.Error(t, err)
}
