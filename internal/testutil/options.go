package testutil

import (
	"maps"

	"github.com/Slicer/Slicer-sub006/internal/scene"
)

// nodeData holds all data for a node record.
type nodeData struct {
	id    scene.ID
	typ   string
	name  string
	attrs map[string]string
}

func defaultNode(id scene.ID, typ string) nodeData {
	return nodeData{id: id, typ: typ}
}

func (n nodeData) record() scene.NodeRecord {
	rec := scene.NodeRecord{ID: n.id, Type: n.typ, Name: n.name}
	if len(n.attrs) > 0 {
		rec.Attributes = maps.Clone(n.attrs)
	}
	return rec
}

// NodeOption configures a node during builder setup.
type NodeOption func(*nodeData)

// Name sets the node name.
func Name(name string) NodeOption {
	return func(n *nodeData) { n.name = name }
}

// Attr sets one attribute.
func Attr(key, value string) NodeOption {
	return func(n *nodeData) {
		if n.attrs == nil {
			n.attrs = make(map[string]string)
		}
		n.attrs[key] = value
	}
}

// Attrs sets several attributes at once.
func Attrs(kv map[string]string) NodeOption {
	return func(n *nodeData) {
		if n.attrs == nil {
			n.attrs = make(map[string]string, len(kv))
		}
		maps.Copy(n.attrs, kv)
	}
}
