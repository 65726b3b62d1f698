package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkpost/internal/config"
)

func TestLocalStoreSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "/media/")
	require.NoError(t, err)

	ctx := context.Background()
	key, err := store.Save(ctx, FolderAdditional, "Photo.JPG", "image/jpeg", strings.NewReader("jpeg bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, FolderAdditional+"/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Equal(t, "/media/"+key, store.URL(key))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocalStoreUniqueNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	ctx := context.Background()
	a, err := store.Save(ctx, FolderPrimary, "same.png", "image/png", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := store.Save(ctx, FolderPrimary, "same.png", "image/png", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCleanKeyStaysInsideRoot(t *testing.T) {
	key, err := cleanKey("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", key)

	_, err = cleanKey("")
	assert.ErrorIs(t, err, errBadKey)
}

func TestNewPicksBackend(t *testing.T) {
	store, err := New(context.Background(), &config.Config{Storage: "local", MediaRoot: t.TempDir(), MediaURL: "/media"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = New(context.Background(), &config.Config{Storage: "ftp"})
	assert.Error(t, err)

	_, err = New(context.Background(), &config.Config{Storage: "s3"})
	assert.Error(t, err)
}

func TestS3StoreURL(t *testing.T) {
	s := &S3Store{bucket: "inkpost", region: "eu-west-3"}
	assert.Equal(t, "https://inkpost.s3.eu-west-3.amazonaws.com/uploads/a.png", s.URL("uploads/a.png"))
	assert.Equal(t, "", s.URL(""))
}
