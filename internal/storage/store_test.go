package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcloset/internal/closet"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	base := t.TempDir()
	store, err := New(filepath.Join(base, "uploads"), filepath.Join(base, "wardrobe"))
	require.NoError(t, err)
	return store
}

func TestNewCreatesCategoryFolders(t *testing.T) {
	store := newTestStore(t)

	for _, category := range closet.Categories {
		info, err := os.Stat(filepath.Join(store.WardrobeRoot(), category))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestSaveUploadKeepsExtensionAndAvoidsCollisions(t *testing.T) {
	store := newTestStore(t)

	first, err := store.SaveUpload(strings.NewReader("one"), "photo.jpg")
	require.NoError(t, err)
	second, err := store.SaveUpload(strings.NewReader("two"), "photo.jpg")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, ".jpg", filepath.Ext(first))

	content, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one", string(content))
}

func TestMoveToCategory(t *testing.T) {
	store := newTestStore(t)

	src := filepath.Join(store.UploadDir(), "item_processed.png")
	require.NoError(t, os.WriteFile(src, []byte("cutout"), 0o644))

	relPath, err := store.MoveToCategory(src, "上衣")
	require.NoError(t, err)

	assert.Equal(t, "上衣/item_processed.png", relPath)
	assert.NoFileExists(t, src)
	assert.FileExists(t, store.WardrobePath(relPath))
}

func TestMoveToCategoryRoutesKeywordToBottom(t *testing.T) {
	store := newTestStore(t)

	src := filepath.Join(store.UploadDir(), "jeans_processed.png")
	require.NoError(t, os.WriteFile(src, []byte("cutout"), 0o644))

	relPath, err := store.MoveToCategory(src, "jeans")
	require.NoError(t, err)

	assert.Equal(t, "下身/jeans_processed.png", relPath)
}

func TestMoveToCategoryUnknownGoesToSpecial(t *testing.T) {
	store := newTestStore(t)

	src := filepath.Join(store.UploadDir(), "thing_processed.png")
	require.NoError(t, os.WriteFile(src, []byte("cutout"), 0o644))

	relPath, err := store.MoveToCategory(src, "something else")
	require.NoError(t, err)

	assert.Equal(t, "特殊/thing_processed.png", relPath)
}

func TestRemoveToleratesMissingFile(t *testing.T) {
	store := newTestStore(t)

	store.Remove(filepath.Join(store.UploadDir(), "never-existed.png"))
	store.Remove("")
}
