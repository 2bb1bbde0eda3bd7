package blob

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodylog/custodylog-server/internal/config"
	"github.com/custodylog/custodylog-server/internal/logger"
)

func newBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenInMemoryBadgerStore(logger.Discard().Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStore_PutGet(t *testing.T) {
	s := newBadgerStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "u/e/1_a.jpg", []byte{0xFF, 0xD8, 0xFF, 0xD9}, "image/jpeg"))

	got, err := s.Get(ctx, "u/e/1_a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF, 0xD9}, got)
}

func TestBadgerStore_GetMissing(t *testing.T) {
	s := newBadgerStore(t)
	_, err := s.Get(context.Background(), "u/e/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerStore_RejectsBadKeys(t *testing.T) {
	s := newBadgerStore(t)
	assert.ErrorIs(t, s.Put(context.Background(), "../x", []byte("x"), ""), ErrInvalidKey)
}

func TestBadgerStore_PingAfterClose(t *testing.T) {
	s, err := OpenInMemoryBadgerStore(nil)
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))

	require.NoError(t, s.Close())
	assert.Error(t, s.Ping(context.Background()))
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	fsStore, err := Open(ctx, config.BlobConfig{Backend: config.BlobFilesystem}, dir, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, fsStore)
	assert.Equal(t, filepath.Join(dir, "photos"), fsStore.(*FileStore).basePath)

	bStore, err := Open(ctx, config.BlobConfig{Backend: config.BlobBadger}, dir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bStore.Close() })
	assert.IsType(t, &BadgerStore{}, bStore)

	_, err = Open(ctx, config.BlobConfig{Backend: "tape"}, dir, nil)
	assert.Error(t, err)
}
