package registry_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reg-go/internal/registry"
)

func seedTree(f *fixture) {
	f.fs.AddFile("/src/tree/a.xml", []byte("<a/>"))
	f.fs.AddFile("/src/tree/sub/b.txt", []byte("b"))
}

func TestRegistryService_Import(t *testing.T) {
	t.Run("imports a directory tree", func(t *testing.T) {
		f := newFixture(t)
		seedTree(f)

		n, err := f.svc.Import(ctx, admin, "/src/tree", "/imported")
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		coll, err := f.svc.Get(ctx, admin, "/imported")
		require.NoError(t, err)
		assert.Equal(t, []string{"/imported/a.xml", "/imported/sub"}, coll.Children)

		b, err := f.svc.Get(ctx, admin, "/imported/sub/b.txt")
		require.NoError(t, err)
		assert.Equal(t, "b", string(b.Content))
		assert.True(t, strings.HasPrefix(b.MediaType, "text/plain"), b.MediaType)

		filter := registry.NewLogFilter()
		filter.Path = "/imported/a.xml"
		entries, err := f.svc.Logs(ctx, admin, filter, 0, -1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, registry.ActionAdd, entries[0].Action)
	})

	t.Run("re-import adds versions", func(t *testing.T) {
		f := newFixture(t)
		seedTree(f)

		_, err := f.svc.Import(ctx, admin, "/src/tree", "/imported")
		require.NoError(t, err)
		f.fs.AddFile("/src/tree/sub/b.txt", []byte("b2"))
		_, err = f.svc.Import(ctx, admin, "/src/tree", "/imported")
		require.NoError(t, err)

		versions, err := f.svc.Versions(ctx, admin, "/imported/sub/b.txt")
		require.NoError(t, err)
		assert.Len(t, versions, 2)

		b, err := f.svc.Get(ctx, admin, "/imported/sub/b.txt")
		require.NoError(t, err)
		assert.Equal(t, "b2", string(b.Content))
	})

	t.Run("imports into a mounted instance", func(t *testing.T) {
		f := newFixture(t)
		seedTree(f)

		_, err := f.svc.Import(ctx, admin, "/src/tree", "/_system/config/tree")
		require.NoError(t, err)

		a, err := f.svc.Get(ctx, admin, "/_system/config/tree/a.xml")
		require.NoError(t, err)
		assert.Equal(t, "<a/>", string(a.Content))
	})

	t.Run("missing source", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Import(ctx, admin, "/nowhere", "/imported")
		assert.Error(t, err)
		assert.False(t, f.exists(t, "/imported"))
	})
}

func TestRegistryService_Export(t *testing.T) {
	f := newFixture(t)
	seedTree(f)
	_, err := f.svc.Import(ctx, admin, "/src/tree", "/imported")
	require.NoError(t, err)

	t.Run("writes the tree", func(t *testing.T) {
		n, err := f.svc.Export(ctx, admin, "/imported", "/out")
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		require.NotNil(t, f.fs.File("/out/sub"))
		assert.True(t, f.fs.File("/out/sub").IsDirectory)
		require.NotNil(t, f.fs.File("/out/sub/b.txt"))
		assert.Equal(t, "b", string(f.fs.File("/out/sub/b.txt").Content))
		require.NotNil(t, f.fs.File("/out/a.xml"))
		assert.Equal(t, "<a/>", string(f.fs.File("/out/a.xml").Content))
	})

	t.Run("single resource", func(t *testing.T) {
		n, err := f.svc.Export(ctx, admin, "/imported/a.xml", "/single")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.NotNil(t, f.fs.File("/single/a.xml"))
	})

	t.Run("skips unauthorized paths", func(t *testing.T) {
		restricted := f.service(t, registry.NewPrefixAuthorizer([]string{"/imported/sub"}))
		n, err := restricted.Export(ctx, admin, "/imported", "/partial")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Nil(t, f.fs.File("/partial/sub/b.txt"))
		assert.NotNil(t, f.fs.File("/partial/a.xml"))
	})
}
