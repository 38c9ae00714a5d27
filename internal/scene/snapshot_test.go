package scene

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// buildScene creates a small volume/display/transform scene.
func buildScene(t *testing.T, r *Registry) (volume, display, transform ID) {
	t.Helper()
	volume = addNode(t, r, "ScalarVolume")
	display = addNode(t, r, "ScalarVolumeDisplay")
	transform = addNode(t, r, "LinearTransform")

	v, _ := r.GetNodeByID(volume)
	require.NoError(t, v.SetName("MRHead"))
	require.NoError(t, v.SetAttribute("spacing", "0.9375 0.9375 1.3"))
	d, _ := r.GetNodeByID(display)
	require.NoError(t, d.SetAttribute("window", "200"))
	require.NoError(t, d.SetAttribute("level", "80"))

	require.NoError(t, r.SetReference(volume, "display", display))
	require.NoError(t, r.SetReference(volume, "transform", transform))
	return volume, display, transform
}

func TestExport_InsertionOrderAndPayload(t *testing.T) {
	r := New()
	volume, display, transform := buildScene(t, r)

	snap := r.Export()
	want := &Snapshot{
		Version: SnapshotVersion,
		Nodes: []NodeRecord{
			{
				ID: volume, Type: "ScalarVolume", Name: "MRHead",
				Attributes: map[string]string{"spacing": "0.9375 0.9375 1.3"},
				References: map[string]ID{"display": display, "transform": transform},
			},
			{
				ID: display, Type: "ScalarVolumeDisplay",
				Attributes: map[string]string{"window": "200", "level": "80"},
			},
			{ID: transform, Type: "LinearTransform"},
		},
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Fatalf("Export mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_IsDetachedCopy(t *testing.T) {
	r := New()
	volume, _, _ := buildScene(t, r)
	snap := r.Export()

	snap.Nodes[0].Attributes["spacing"] = "changed"
	n, _ := r.GetNodeByID(volume)
	v, _ := n.Attribute("spacing")
	require.Equal(t, "0.9375 0.9375 1.3", v)
}

func TestImport_RoundTripRenumbers(t *testing.T) {
	src := New()
	buildScene(t, src)
	exported := src.Export()

	dst := New()
	addNode(t, dst, "Placeholder") // shifts the ID space
	require.NoError(t, dst.RemoveNode(1))

	ids, err := dst.Import(exported)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	require.Equal(t, []ID{2, 3, 4}, ids)

	reexported := dst.Export()
	require.True(t, Equivalent(exported, reexported))

	vol, err := dst.GetNodeByID(ids[0])
	require.NoError(t, err)
	require.Equal(t, ids[1], vol.Reference("display"))
	require.Equal(t, ids[2], vol.Reference("transform"))
	require.Equal(t, 1, vol.RefCount(), "registry is the only owner after import")
}

func TestImport_Events(t *testing.T) {
	src := New()
	buildScene(t, src)

	dst := New()
	rec := &recorder{}
	dst.RegisterObserver(rec)

	_, err := dst.Import(src.Export())
	require.NoError(t, err)
	require.Equal(t, []EventKind{StartImport, NodeAdded, NodeAdded, NodeAdded, EndImport}, rec.kinds())
}

func TestImport_EmptySnapshot(t *testing.T) {
	r := New()
	ids, err := r.Import(&Snapshot{Version: SnapshotVersion})
	require.NoError(t, err)
	require.Empty(t, ids)
	require.Equal(t, 0, r.Len())
}

func TestImport_InvalidSnapshotLeavesRegistryUntouched(t *testing.T) {
	cases := map[string]*Snapshot{
		"nil":            nil,
		"future version": {Version: SnapshotVersion + 1},
		"missing id":     {Version: 1, Nodes: []NodeRecord{{Type: "Model"}}},
		"duplicate id":   {Version: 1, Nodes: []NodeRecord{{ID: 1, Type: "Model"}, {ID: 1, Type: "Model"}}},
		"empty type":     {Version: 1, Nodes: []NodeRecord{{ID: 1}}},
		"dangling reference": {Version: 1, Nodes: []NodeRecord{
			{ID: 1, Type: "Model", References: map[string]ID{"display": 7}},
		}},
	}
	for name, snap := range cases {
		t.Run(name, func(t *testing.T) {
			r := New()
			existing := addNode(t, r, "Model")
			rec := &recorder{}
			r.RegisterObserver(rec)

			_, err := r.Import(snap)
			require.ErrorIs(t, err, ErrSerialization)

			var serr *SerializationError
			require.True(t, errors.As(err, &serr))
			require.Equal(t, "import", serr.Op)

			require.Equal(t, 1, r.Len())
			_, err = r.GetNodeByID(existing)
			require.NoError(t, err)
			require.Empty(t, rec.events)
		})
	}
}

func TestImport_TypeValidator(t *testing.T) {
	r := New(WithTypeValidator(func(typ string) bool { return typ != "Forbidden" }))
	_, err := r.Import(&Snapshot{Version: 1, Nodes: []NodeRecord{{ID: 1, Type: "Forbidden"}}})
	require.ErrorIs(t, err, ErrSerialization)
	require.ErrorIs(t, err, ErrInvalidType)
}

func TestEquivalent(t *testing.T) {
	base := &Snapshot{Version: 1, Nodes: []NodeRecord{
		{ID: 1, Type: "Volume", References: map[string]ID{"display": 2}},
		{ID: 2, Type: "Display", Attributes: map[string]string{"opacity": "1"}},
	}}
	renumbered := &Snapshot{Version: 1, Nodes: []NodeRecord{
		{ID: 10, Type: "Volume", References: map[string]ID{"display": 20}},
		{ID: 20, Type: "Display", Attributes: map[string]string{"opacity": "1"}},
	}}
	require.True(t, Equivalent(base, renumbered))

	rewired := &Snapshot{Version: 1, Nodes: []NodeRecord{
		{ID: 10, Type: "Volume", References: map[string]ID{"display": 10}},
		{ID: 20, Type: "Display", Attributes: map[string]string{"opacity": "1"}},
	}}
	require.False(t, Equivalent(base, rewired), "reference points at a different position")

	otherAttr := &Snapshot{Version: 1, Nodes: []NodeRecord{
		{ID: 1, Type: "Volume", References: map[string]ID{"display": 2}},
		{ID: 2, Type: "Display", Attributes: map[string]string{"opacity": "0.5"}},
	}}
	require.False(t, Equivalent(base, otherAttr))

	require.False(t, Equivalent(base, &Snapshot{Version: 1}))
	require.True(t, Equivalent(nil, nil))
	require.False(t, Equivalent(base, nil))
}
