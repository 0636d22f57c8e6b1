package storage_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/bintree/storage"
)

func TestStorageProviders(t *testing.T) {
	ctx := context.Background()

	dirstore, err := storage.NewDirectoryStore(t.TempDir())
	require.NoError(t, err)

	cases := []struct {
		assertion string
		store     storage.Provider
	}{
		{
			"memory store",
			storage.NewMemStore(),
		},
		{
			"directory store",
			dirstore,
		},
	}

	read := func(t *testing.T, store storage.Provider, id string) []byte {
		t.Helper()
		rc, err := store.Get(ctx, id)
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return data
	}

	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			t.Run("put and get", func(t *testing.T) {
				require.NoError(t, c.store.Put(ctx, "test", bytes.NewReader([]byte("hello"))))
				require.Equal(t, []byte("hello"), read(t, c.store, "test"))
			})
			t.Run("put overwrites", func(t *testing.T) {
				require.NoError(t, c.store.Put(ctx, "test2", bytes.NewReader([]byte("hello"))))
				require.NoError(t, c.store.Put(ctx, "test2", bytes.NewReader([]byte("bye"))))
				require.Equal(t, []byte("bye"), read(t, c.store, "test2"))
			})
			t.Run("delete", func(t *testing.T) {
				require.NoError(t, c.store.Put(ctx, "test3", bytes.NewReader([]byte("hello"))))
				require.NoError(t, c.store.Delete(ctx, "test3"))
				_, err := c.store.Get(ctx, "test3")
				require.ErrorIs(t, err, storage.ErrObjectNotFound)
			})
			t.Run("get object that does not exist returns error", func(t *testing.T) {
				_, err := c.store.Get(ctx, "test4")
				require.ErrorIs(t, err, storage.ErrObjectNotFound)
			})
			t.Run("deleting object that does not exist returns no error", func(t *testing.T) {
				require.NoError(t, c.store.Delete(ctx, "test100"))
			})
			t.Run("string", func(t *testing.T) {
				require.NotEmpty(t, c.store.String())
			})
		})
	}
}

func TestDialS3RequiresEndpoint(t *testing.T) {
	_, err := storage.DialS3(context.Background(), storage.S3Config{Bucket: "trees"})
	require.Error(t, err)
}
