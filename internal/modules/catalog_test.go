package modules

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestNewCatalog(t *testing.T) {
	c := NewCatalog()
	require.NotNil(t, c)
	require.Empty(t, c.List())
}

func TestCatalog_Add(t *testing.T) {
	c := NewCatalog()

	require.NoError(t, c.Add(&Descriptor{Key: "volumes"}))
	require.ErrorIs(t, c.Add(&Descriptor{Key: "volumes"}), ErrDuplicateKey)
	require.ErrorIs(t, c.Add(nil), ErrNilDescriptor)
	require.ErrorIs(t, c.Add(&Descriptor{}), ErrMissingKey)
	require.Len(t, c.List(), 1)
}

func TestCatalog_Get(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add(&Descriptor{Key: "models", Title: "Models"}))

	d, err := c.Get("models")
	require.NoError(t, err)
	require.Equal(t, "Models", d.Title)

	_, err = c.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_CategoriesAndNodeTypes(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add(&Descriptor{Key: "a", Categories: []string{"Core", "Informatics"}, NodeTypes: []string{"Model", "ModelDisplay"}}))
	require.NoError(t, c.Add(&Descriptor{Key: "b", Categories: []string{"Core"}, NodeTypes: []string{"Model", "Camera"}, Hidden: true}))

	require.Equal(t, []string{"Core", "Informatics"}, c.Categories())
	require.Equal(t, []string{"Camera", "Model", "ModelDisplay"}, c.NodeTypes())
	require.True(t, c.HasNodeType("Camera"))
	require.False(t, c.HasNodeType("Volume"))

	require.Len(t, c.ByCategory("Core"), 2)
	require.Len(t, c.ByCategory("Informatics"), 1)
	require.Empty(t, c.ByCategory("Nope"))

	visible := c.Visible()
	require.Len(t, visible, 1)
	require.Equal(t, "a", visible[0].Key)
}

func TestCatalog_LoadOrder(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add(&Descriptor{Key: "data", Dependencies: []string{"volumes", "models"}}))
	require.NoError(t, c.Add(&Descriptor{Key: "volumes", Dependencies: []string{"core"}}))
	require.NoError(t, c.Add(&Descriptor{Key: "models", Dependencies: []string{"core"}}))
	require.NoError(t, c.Add(&Descriptor{Key: "core"}))

	order, err := c.LoadOrder()
	require.NoError(t, err)

	keys := make([]string, len(order))
	for i, d := range order {
		keys[i] = d.Key
	}
	require.Equal(t, []string{"core", "volumes", "models", "data"}, keys)
}

func TestCatalog_LoadOrder_Errors(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add(&Descriptor{Key: "a", Dependencies: []string{"b"}}))
	require.NoError(t, c.Add(&Descriptor{Key: "b", Dependencies: []string{"a"}}))
	_, err := c.LoadOrder()
	require.ErrorIs(t, err, ErrDependencyCycle)

	c = NewCatalog()
	require.NoError(t, c.Add(&Descriptor{Key: "a", Dependencies: []string{"ghost"}}))
	_, err = c.LoadOrder()
	require.ErrorIs(t, err, ErrUnknownDependency)
}

func TestLoadYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"modules.yaml": &fstest.MapFile{Data: []byte(`
modules:
  - key: core
    node_types: [Camera]
  - key: volumes
    title: Volumes
    categories: [Core]
    dependencies: [core]
    node_types: [ScalarVolume, ScalarVolumeDisplay]
`)},
	}

	c, err := LoadYAML(fsys)
	require.NoError(t, err)
	require.Len(t, c.List(), 2)

	core, err := c.Get("core")
	require.NoError(t, err)
	require.Equal(t, "core", core.Title, "title defaults to key")
	require.True(t, c.HasNodeType("ScalarVolumeDisplay"))
}

func TestLoadYAML_Errors(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"missing file": {},
		"bad yaml":     {"modules.yaml": &fstest.MapFile{Data: []byte("modules: [")}},
		"duplicate": {"modules.yaml": &fstest.MapFile{Data: []byte(`
modules:
  - key: a
  - key: a
`)}},
		"unknown dependency": {"modules.yaml": &fstest.MapFile{Data: []byte(`
modules:
  - key: a
    dependencies: [b]
`)}},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadYAML(fsys)
			require.Error(t, err)
		})
	}
}

func TestBuiltin(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	for _, typ := range []string{"ScalarVolume", "Model", "LinearTransform", "Segmentation"} {
		require.True(t, c.HasNodeType(typ), typ)
	}

	order, err := c.LoadOrder()
	require.NoError(t, err)
	require.Equal(t, "core", order[0].Key)

	for _, d := range c.Visible() {
		require.False(t, d.Hidden)
	}
}
