// Package testutil provides fixture builders for scene snapshots.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Slicer/Slicer-sub006/internal/scene"
	"github.com/Slicer/Slicer-sub006/internal/scenefile"
)

// refData holds a reference to be set once all nodes exist.
type refData struct {
	from scene.ID
	role string
	to   scene.ID
}

// Builder accumulates nodes and references and renders them as a snapshot.
type Builder struct {
	t     testing.TB
	nodes []nodeData
	refs  []refData
}

// NewBuilder creates an empty builder.
func NewBuilder(t testing.TB) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithNode adds a node record with optional configuration.
func (b *Builder) WithNode(id scene.ID, typ string, opts ...NodeOption) *Builder {
	node := defaultNode(id, typ)
	for _, opt := range opts {
		opt(&node)
	}
	b.nodes = append(b.nodes, node)
	return b
}

// WithReference makes from point at to under role.
func (b *Builder) WithReference(from scene.ID, role string, to scene.ID) *Builder {
	b.refs = append(b.refs, refData{from, role, to})
	return b
}

// Snapshot renders the accumulated records in insertion order. References
// are not checked, so invalid snapshots can be built on purpose.
func (b *Builder) Snapshot() *scene.Snapshot {
	b.t.Helper()
	snap := &scene.Snapshot{Version: scene.SnapshotVersion, Nodes: make([]scene.NodeRecord, len(b.nodes))}
	index := make(map[scene.ID]int, len(b.nodes))
	for i, n := range b.nodes {
		snap.Nodes[i] = n.record()
		index[n.id] = i
	}
	for _, ref := range b.refs {
		i, ok := index[ref.from]
		require.True(b.t, ok, "reference from unknown node %d", ref.from)
		if snap.Nodes[i].References == nil {
			snap.Nodes[i].References = make(map[string]scene.ID)
		}
		snap.Nodes[i].References[ref.role] = ref.to
	}
	return snap
}

// WriteFile stores the snapshot at path (format by extension) and returns path.
func (b *Builder) WriteFile(path string) string {
	b.t.Helper()
	require.NoError(b.t, scenefile.WriteFile(context.Background(), path, b.Snapshot()))
	return path
}

// Registry imports the snapshot into a new registry and returns it with the
// assigned IDs in record order.
func (b *Builder) Registry(opts ...scene.Option) (*scene.Registry, []scene.ID) {
	b.t.Helper()
	reg := scene.New(opts...)
	ids, err := reg.Import(b.Snapshot())
	require.NoError(b.t, err)
	return reg, ids
}
