package mount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable([]Mount{
		{Path: "/_system/config", TargetPath: "/config", Instance: "conf"},
		{Path: "/_system/config/deep", TargetPath: "/deep", Instance: "deep"},
		{Path: "/gov", TargetPath: "/", Instance: "gov"},
	})
	require.NoError(t, err)
	return table
}

func TestNewTable(t *testing.T) {
	tests := []struct {
		name   string
		mounts []Mount
	}{
		{name: "relative path", mounts: []Mount{{Path: "a", TargetPath: "/b", Instance: "x"}}},
		{name: "relative target", mounts: []Mount{{Path: "/a", TargetPath: "b", Instance: "x"}}},
		{name: "missing instance", mounts: []Mount{{Path: "/a", TargetPath: "/b"}}},
		{name: "root mount", mounts: []Mount{{Path: "/", TargetPath: "/b", Instance: "x"}}},
		{name: "duplicate", mounts: []Mount{
			{Path: "/a", TargetPath: "/b", Instance: "x"},
			{Path: "/a/", TargetPath: "/c", Instance: "y"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.mounts)
			assert.Error(t, err)
		})
	}

	t.Run("orders longest prefix first", func(t *testing.T) {
		table := newTestTable(t)
		mounts := table.Mounts()
		require.Len(t, mounts, 3)
		assert.Equal(t, "/_system/config/deep", mounts[0].Path)
		assert.Equal(t, 3, table.Len())
	})
}

func TestTable_TranslateOut(t *testing.T) {
	table := newTestTable(t)

	tests := []struct {
		in       string
		want     string
		instance string
		ok       bool
	}{
		{in: "/_system/config", want: "/config", instance: "conf", ok: true},
		{in: "/_system/config/a/b", want: "/config/a/b", instance: "conf", ok: true},
		{in: "/_system/config/deep/x", want: "/deep/x", instance: "deep", ok: true},
		{in: "/_system/configuration", want: "/_system/configuration", ok: false},
		{in: "/gov", want: "/", instance: "gov", ok: true},
		{in: "/gov/policy", want: "/policy", instance: "gov", ok: true},
		{in: "/other", want: "/other", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, m, ok := table.TranslateOut(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.instance, m.Instance)
		})
	}
}

func TestTable_TranslateIn(t *testing.T) {
	table := newTestTable(t)
	conf := Mount{Path: "/_system/config", TargetPath: "/config", Instance: "conf"}
	gov := Mount{Path: "/gov", TargetPath: "/", Instance: "gov"}

	assert.Equal(t, "/_system/config/a", table.TranslateIn("/config/a", conf))
	assert.Equal(t, "/_system/config", table.TranslateIn("/config", conf))
	assert.Equal(t, "/elsewhere", table.TranslateIn("/elsewhere", conf))
	assert.Equal(t, "/gov/policy", table.TranslateIn("/policy", gov))
	assert.Equal(t, "/gov", table.TranslateIn("/", gov))
}

func TestTable_RoundTrip(t *testing.T) {
	table := newTestTable(t)
	for _, p := range []string{"/_system/config/x", "/_system/config/deep/y/z", "/gov/a"} {
		out, m, ok := table.TranslateOut(p)
		require.True(t, ok, p)
		assert.Equal(t, p, table.TranslateIn(out, m))
	}
}

func TestTable_Route(t *testing.T) {
	table := newTestTable(t)

	t.Run("external form", func(t *testing.T) {
		got, m, ok := table.Route("/_system/config/a")
		require.True(t, ok)
		assert.Equal(t, "/config/a", got)
		assert.Equal(t, "conf", m.Instance)
	})

	t.Run("translated form", func(t *testing.T) {
		got, m, ok := table.Route("/config/a")
		require.True(t, ok)
		assert.Equal(t, "/config/a", got)
		assert.Equal(t, "conf", m.Instance)
	})

	t.Run("unmounted", func(t *testing.T) {
		got, _, ok := table.Route("/plain")
		assert.False(t, ok)
		assert.Equal(t, "/plain", got)
	})
}

func TestTable_Covering(t *testing.T) {
	table := newTestTable(t)

	assert.Len(t, table.Covering(""), 3)

	got := table.Covering("/_system/config/a")
	require.Len(t, got, 1)
	assert.Equal(t, "conf", got[0].Instance)

	got = table.Covering("/_system")
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"conf", "deep"}, []string{got[0].Instance, got[1].Instance})

	assert.Empty(t, table.Covering("/plain"))
}

func TestTable_Nil(t *testing.T) {
	var table *Table
	got, _, ok := table.TranslateOut("/a")
	assert.False(t, ok)
	assert.Equal(t, "/a", got)
	assert.Empty(t, table.Covering(""))
	assert.Equal(t, 0, table.Len())
}
