package catalog_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/bintree/catalog"
)

func TestCatalogs(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		assertion string
		f         func(*testing.T) catalog.Catalog
	}{
		{
			"mem",
			func(t *testing.T) catalog.Catalog {
				t.Helper()
				return catalog.NewMemCatalog()
			},
		},
		{
			"sql",
			func(t *testing.T) catalog.Catalog {
				t.Helper()
				db, err := sql.Open("sqlite3", ":memory:")
				require.NoError(t, err)
				db.SetMaxOpenConns(1)
				t.Cleanup(func() { db.Close() })
				c, err := catalog.NewSQLCatalog(db)
				require.NoError(t, err)
				return c
			},
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			cat := c.f(t)
			put := func(t *testing.T, name string, objectID string) catalog.Listing {
				t.Helper()
				version, err := cat.NextVersion(ctx)
				require.NoError(t, err)
				listing := catalog.Listing{
					Name:        name,
					Version:     version,
					ObjectID:    objectID,
					Count:       4,
					Height:      3,
					Fingerprint: 0xdeadbeef,
				}
				require.NoError(t, cat.Put(ctx, listing))
				return listing
			}

			t.Run("versions increase", func(t *testing.T) {
				v1, err := cat.NextVersion(ctx)
				require.NoError(t, err)
				v2, err := cat.NextVersion(ctx)
				require.NoError(t, err)
				require.Greater(t, v2, v1)
			})

			t.Run("put and get", func(t *testing.T) {
				expected := put(t, "alpha", "obj-1")
				listing, err := cat.Get(ctx, "alpha", expected.Version)
				require.NoError(t, err)
				require.Equal(t, expected.ObjectID, listing.ObjectID)
				require.Equal(t, 4, listing.Count)
				require.Equal(t, 3, listing.Height)
				require.Equal(t, uint32(0xdeadbeef), listing.Fingerprint)
				require.NotEmpty(t, listing.Timestamp)
			})

			t.Run("get latest", func(t *testing.T) {
				put(t, "beta", "obj-2")
				expected := put(t, "beta", "obj-3")
				listing, err := cat.GetLatest(ctx, "beta")
				require.NoError(t, err)
				require.Equal(t, expected.Version, listing.Version)
				require.Equal(t, "obj-3", listing.ObjectID)
			})

			t.Run("history is ordered", func(t *testing.T) {
				history, err := cat.History(ctx, "beta")
				require.NoError(t, err)
				require.Len(t, history, 2)
				require.Equal(t, "obj-2", history[0].ObjectID)
				require.Equal(t, "obj-3", history[1].ObjectID)
			})

			t.Run("names", func(t *testing.T) {
				names, err := cat.Names(ctx)
				require.NoError(t, err)
				require.Equal(t, []string{"alpha", "beta"}, names)
			})

			t.Run("duplicate listing", func(t *testing.T) {
				listing, err := cat.GetLatest(ctx, "alpha")
				require.NoError(t, err)
				require.ErrorIs(t, cat.Put(ctx, listing), catalog.ErrListingExists)
			})

			t.Run("not found", func(t *testing.T) {
				_, err := cat.GetLatest(ctx, "missing")
				require.ErrorIs(t, err, catalog.TreeNotFoundError{})
				_, err = cat.Get(ctx, "alpha", 999)
				require.ErrorIs(t, err, catalog.TreeNotFoundError{})
				_, err = cat.History(ctx, "missing")
				require.ErrorIs(t, err, catalog.TreeNotFoundError{})
			})
		})
	}
}

func TestSQLCatalogReopen(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	cat, err := catalog.NewSQLCatalog(db)
	require.NoError(t, err)
	version, err := cat.NextVersion(ctx)
	require.NoError(t, err)
	require.NoError(t, cat.Put(ctx, catalog.Listing{Name: "a", Version: version, ObjectID: "x"}))

	reopened, err := catalog.NewSQLCatalog(db)
	require.NoError(t, err)
	listing, err := reopened.GetLatest(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "x", listing.ObjectID)
	next, err := reopened.NextVersion(ctx)
	require.NoError(t, err)
	require.Greater(t, next, version)
}
