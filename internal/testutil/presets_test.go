package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Slicer/Slicer-sub006/internal/modules"
	"github.com/Slicer/Slicer-sub006/internal/scene"
)

func TestPresets_AreValid(t *testing.T) {
	catalog, err := modules.Builtin()
	require.NoError(t, err)

	for name, b := range map[string]*Builder{
		"head":         NewBuilder(t).WithHeadScene(),
		"segmentation": NewBuilder(t).WithSegmentationScene(),
	} {
		t.Run(name, func(t *testing.T) {
			snap := b.Snapshot()
			require.NoError(t, snap.Validate(catalog.HasNodeType))
		})
	}
}

func TestWithSegmentationScene_Topology(t *testing.T) {
	reg, ids := NewBuilder(t).WithSegmentationScene().Registry()
	require.Len(t, ids, 4)

	seg, err := reg.GetNodeByID(ids[1])
	require.NoError(t, err)
	require.Equal(t, "organs", seg.Name())
	require.Equal(t, ids[0], seg.Reference("master"))
	require.Equal(t, ids[2], seg.Reference("display"))
	require.Equal(t, ids[3], seg.Reference("storage"))

	require.Len(t, reg.NodesByType("Segmentation"), 1)
}

func TestPresets_Combine(t *testing.T) {
	snap := NewBuilder(t).WithHeadScene().WithNode(40, "MarkupsFiducial").Snapshot()
	require.Len(t, snap.Nodes, 4)
	require.Equal(t, scene.ID(40), snap.Nodes[3].ID)
}
