package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reg-go/internal/registry"
)

func TestRegistryService_Move(t *testing.T) {
	t.Run("moves a resource with its history and associations", func(t *testing.T) {
		f := newFixture(t)
		orig := f.put(t, "/a/doc", "x")
		f.put(t, "/a/ref", "r")
		require.NoError(t, f.svc.AddAssociation(ctx, admin, "/a/ref", "/a/doc", "depends"))
		require.NoError(t, f.svc.AddAssociation(ctx, admin, "/a/doc", "/a/ref", "uses"))

		require.NoError(t, f.svc.Move(ctx, admin, "/a/doc", "/b/doc2"))

		assert.False(t, f.exists(t, "/a/doc"))
		got, err := f.svc.Get(ctx, admin, "/b/doc2")
		require.NoError(t, err)
		assert.Equal(t, "x", string(got.Content))
		assert.Equal(t, orig.UUID, got.UUID)

		versions, err := f.svc.Versions(ctx, admin, "/b/doc2")
		require.NoError(t, err)
		assert.Equal(t, []int64{orig.Version}, versions)

		assocs, err := f.svc.Associations(ctx, admin, "/a/ref")
		require.NoError(t, err)
		assert.ElementsMatch(t, []registry.Association{
			{Source: "/a/ref", Target: "/b/doc2", Type: "depends"},
			{Source: "/b/doc2", Target: "/a/ref", Type: "uses"},
		}, assocs)
	})

	t.Run("moves a collection tree", func(t *testing.T) {
		f := newFixture(t)
		f.put(t, "/c/x", "1")
		f.put(t, "/c/d/y", "2")

		require.NoError(t, f.svc.Move(ctx, admin, "/c", "/e"))

		coll, err := f.svc.Get(ctx, admin, "/e")
		require.NoError(t, err)
		assert.Equal(t, []string{"/e/x", "/e/d"}, coll.Children)

		got, err := f.svc.Get(ctx, admin, "/e/d/y")
		require.NoError(t, err)
		assert.Equal(t, "2", string(got.Content))

		for _, p := range []string{"/c", "/c/x", "/c/d", "/c/d/y"} {
			assert.False(t, f.exists(t, p), p)
		}
		root, err := f.svc.Get(ctx, admin, "/")
		require.NoError(t, err)
		assert.Contains(t, root.Children, "/e")
		assert.NotContains(t, root.Children, "/c")
	})

	t.Run("rejects invalid moves", func(t *testing.T) {
		f := newFixture(t)
		f.put(t, "/m/x", "1")
		f.put(t, "/taken", "t")

		assert.ErrorIs(t, f.svc.Move(ctx, admin, "/m/x", "/taken"), registry.ErrExists)
		assert.ErrorIs(t, f.svc.Move(ctx, admin, "/missing", "/somewhere"), registry.ErrNotFound)
		assert.Error(t, f.svc.Move(ctx, admin, "/m", "/m/inner"))
		assert.Error(t, f.svc.Move(ctx, admin, "/", "/elsewhere"))
		assert.ErrorContains(t, f.svc.Move(ctx, admin, "/_system", "/sys"), "mount point")
		assert.True(t, f.exists(t, "/m/x"))
	})
}

func TestRegistryService_Copy(t *testing.T) {
	t.Run("copies a tree with fresh identities", func(t *testing.T) {
		f := newFixture(t)
		src := f.put(t, "/src/a", "1")
		f.put(t, "/src/sub/b", "2")
		require.NoError(t, f.svc.AddAssociation(ctx, admin, "/src/a", "/src/sub/b", "link"))

		require.NoError(t, f.svc.Copy(ctx, admin, "/src", "/dst"))

		a, err := f.svc.Get(ctx, admin, "/dst/a")
		require.NoError(t, err)
		assert.Equal(t, "1", string(a.Content))
		assert.NotEqual(t, src.UUID, a.UUID)

		b, err := f.svc.Get(ctx, admin, "/dst/sub/b")
		require.NoError(t, err)
		assert.Equal(t, "2", string(b.Content))

		versions, err := f.svc.Versions(ctx, admin, "/dst/a")
		require.NoError(t, err)
		assert.Len(t, versions, 1)

		assocs, err := f.svc.AssociationsOfType(ctx, admin, "/dst/a", "link")
		require.NoError(t, err)
		assert.Equal(t, []registry.Association{{Source: "/dst/a", Target: "/src/sub/b", Type: "link"}}, assocs)

		assert.True(t, f.exists(t, "/src/a"))
	})

	t.Run("copies into a mounted instance", func(t *testing.T) {
		f := newFixture(t)
		f.put(t, "/tpl/app", "defaults")

		require.NoError(t, f.svc.Copy(ctx, admin, "/tpl", "/_system/config/tpl"))

		got, err := f.svc.Get(ctx, admin, "/_system/config/tpl/app")
		require.NoError(t, err)
		assert.Equal(t, "/_system/config/tpl/app", got.Path)
		assert.Equal(t, "defaults", string(got.Content))
	})

	t.Run("refuses an existing destination", func(t *testing.T) {
		f := newFixture(t)
		f.put(t, "/one", "1")
		f.put(t, "/two", "2")

		assert.ErrorIs(t, f.svc.Copy(ctx, admin, "/one", "/two"), registry.ErrExists)

		got, err := f.svc.Get(ctx, admin, "/two")
		require.NoError(t, err)
		assert.Equal(t, "2", string(got.Content))
	})
}
