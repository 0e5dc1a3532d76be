package blobcache_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/javelin/internal/adapters/blobcache"
	"go.trai.ch/javelin/internal/core/domain"
)

func TestStore_PutRead(t *testing.T) {
	t.Parallel()

	store, err := blobcache.Open(filepath.Join(t.TempDir(), domain.BlobFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	first, err := store.Put([]byte("class A"))
	require.NoError(t, err)
	second, err := store.Put([]byte("class B, longer"))
	require.NoError(t, err)

	got, err := store.Read(first)
	require.NoError(t, err)
	assert.Equal(t, "class A", string(got))

	got, err = store.Read(second)
	require.NoError(t, err)
	assert.Equal(t, "class B, longer", string(got))

	var buf bytes.Buffer
	n, err := store.Transfer(second, &buf)
	require.NoError(t, err)
	assert.EqualValues(t, len("class B, longer"), n)
	assert.Equal(t, "class B, longer", buf.String())
}

func TestStore_Deduplicates(t *testing.T) {
	t.Parallel()

	store, err := blobcache.Open(filepath.Join(t.TempDir(), domain.BlobFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	a, err := store.Put([]byte("same"))
	require.NoError(t, err)
	size := store.Size()
	b, err := store.Put([]byte("same"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, size, store.Size())
	assert.Equal(t, 1, store.Len())
}

func TestStore_ReopenKeepsTokens(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), domain.BlobFileName)
	store, err := blobcache.Open(path)
	require.NoError(t, err)
	tok, err := store.Put([]byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := blobcache.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Read(tok)
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))

	again, err := reopened.Put([]byte("persisted"))
	require.NoError(t, err)
	assert.Equal(t, tok, again)
}

func TestStore_TruncatedTail(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), domain.BlobFileName)
	store, err := blobcache.Open(path)
	require.NoError(t, err)
	tok, err := store.Put([]byte("complete"))
	require.NoError(t, err)
	_, err = store.Put([]byte("will be cut short"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-4))

	reopened, err := blobcache.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	assert.Equal(t, 1, reopened.Len())
	assert.Equal(t, tok.Offset+tok.Length, reopened.Size())
	got, err := reopened.Read(tok)
	require.NoError(t, err)
	assert.Equal(t, "complete", string(got))
}

func TestStore_UnknownToken(t *testing.T) {
	t.Parallel()

	store, err := blobcache.OpenTemp()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Read(domain.BlobToken{Offset: 100, Length: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrBlobNotFound.Error())
}

func TestStore_TempRemovedOnClose(t *testing.T) {
	t.Parallel()

	store, err := blobcache.OpenTemp()
	require.NoError(t, err)
	tok, err := store.Put([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err = store.Read(tok)
	require.Error(t, err)
}
