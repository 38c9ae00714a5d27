package scene

import (
	"maps"
	"sort"

	"github.com/Slicer/Slicer-sub006/internal/log"
)

// ID identifies a node in a Registry.
type ID uint64

// NilID is never assigned to a node.
const NilID ID = 0

// Node is a named, typed entity with an attribute payload and references to
// other nodes. Its identity and lifetime are managed by a Registry.
type Node struct {
	id    ID
	typ   string
	name  string
	attrs map[string]string
	refs  map[string]ID

	count     int
	registry  *Registry
	destroyed bool
	onDestroy []func(*Node)
}

func newNode(typ string) *Node {
	return &Node{
		typ:   typ,
		attrs: make(map[string]string),
		refs:  make(map[string]ID),
		count: 1,
	}
}

// ID returns the registry-assigned identifier. It is NilID until the node is
// first added and keeps its last value after removal.
func (n *Node) ID() ID { return n.id }

// Type returns the node type given to CreateNode.
func (n *Node) Type() string { return n.typ }

// Name returns the display name.
func (n *Node) Name() string { return n.name }

// SetName sets the display name.
func (n *Node) SetName(name string) error {
	if n.destroyed {
		return ErrDestroyed
	}
	n.name = name
	return nil
}

// Attribute returns the value stored under key.
func (n *Node) Attribute(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// SetAttribute stores value under key.
func (n *Node) SetAttribute(key, value string) error {
	if n.destroyed {
		return ErrDestroyed
	}
	n.attrs[key] = value
	return nil
}

// RemoveAttribute deletes key. Removing a missing key is not an error.
func (n *Node) RemoveAttribute(key string) error {
	if n.destroyed {
		return ErrDestroyed
	}
	delete(n.attrs, key)
	return nil
}

// Attributes returns a copy of the attribute payload.
func (n *Node) Attributes() map[string]string {
	return maps.Clone(n.attrs)
}

// AttributeKeys returns the attribute keys in sorted order.
func (n *Node) AttributeKeys() []string {
	keys := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reference returns the node referenced under role, or NilID.
func (n *Node) Reference(role string) ID { return n.refs[role] }

// References returns a copy of the role -> node references.
func (n *Node) References() map[string]ID {
	return maps.Clone(n.refs)
}

// RefCount reports how many ownership shares are outstanding, including the
// registry's own share while the node is registered. It is read-only.
func (n *Node) RefCount() int { return n.count }

// Registered reports whether the node currently belongs to a registry.
func (n *Node) Registered() bool { return n.registry != nil }

// Destroyed reports whether the last ownership share has been released.
// A destroyed node keeps its ID and type but drops its payload.
func (n *Node) Destroyed() bool { return n.destroyed }

// OnDestroy registers fn to run when the node is destroyed.
func (n *Node) OnDestroy(fn func(*Node)) {
	if n.destroyed {
		fn(n)
		return
	}
	n.onDestroy = append(n.onDestroy, fn)
}

func (n *Node) retain() { n.count++ }

func (n *Node) release() {
	n.count--
	if n.count > 0 {
		return
	}
	n.destroyed = true
	n.attrs = nil
	n.refs = nil
	log.Debug(log.CatRegistry, "Node destroyed", "id", n.id, "type", n.typ)
	hooks := n.onDestroy
	n.onDestroy = nil
	for _, fn := range hooks {
		fn(n)
	}
}

// Handle is one share of ownership of a Node. The zero value is not usable;
// handles come from CreateNode and Retain.
type Handle struct {
	node     *Node
	released bool
}

// Node returns the node this handle shares.
func (h *Handle) Node() *Node { return h.node }

// Released reports whether Release has been called on this handle.
func (h *Handle) Released() bool { return h.released }

// Retain returns a new, independent share of the same node.
func (h *Handle) Retain() (*Handle, error) {
	if h == nil || h.node == nil || h.released {
		return nil, ErrReleased
	}
	if h.node.destroyed {
		return nil, ErrDestroyed
	}
	h.node.retain()
	return &Handle{node: h.node}, nil
}

// Release gives this share back. It fails with ErrReleased on the second
// call and leaves the count untouched.
func (h *Handle) Release() error {
	if h == nil || h.node == nil || h.released {
		return ErrReleased
	}
	h.released = true
	h.node.release()
	return nil
}
