package scene

import (
	"github.com/Slicer/Slicer-sub006/internal/log"
	"github.com/Slicer/Slicer-sub006/internal/pubsub"
)

// Option configures a Registry.
type Option func(*Registry)

// WithTypeValidator restricts CreateNode and Import to node types accepted by
// valid, typically modules.Catalog.HasNodeType.
func WithTypeValidator(valid func(typ string) bool) Option {
	return func(r *Registry) { r.validType = valid }
}

// WithPublisher mirrors every dispatched event to p after the synchronous
// observers have run.
func WithPublisher(p pubsub.Publisher[Event]) Option {
	return func(r *Registry) { r.publisher = p }
}

type observerSlot struct {
	token  Token
	obs    Observer
	active bool
}

// Registry owns an ordered collection of nodes.
type Registry struct {
	nodes  []*Node
	index  map[ID]*Node
	lastID ID

	observers   []*observerSlot
	lastToken   Token
	dispatching int
	stale       bool

	validType func(string) bool
	publisher pubsub.Publisher[Event]
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{index: make(map[ID]*Node)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateNode allocates an unregistered node of the given type. The returned
// handle is the caller's share of ownership.
func (r *Registry) CreateNode(typ string) (*Handle, error) {
	if err := r.checkType(typ); err != nil {
		return nil, err
	}
	return &Handle{node: newNode(typ)}, nil
}

func (r *Registry) checkType(typ string) error {
	if typ == "" {
		return ErrInvalidType
	}
	if r.validType != nil && !r.validType(typ) {
		return ErrInvalidType
	}
	return nil
}

// AddNode registers the node behind h, assigns it the next ID and takes a
// registry share of ownership. Observers receive NodeAdded before AddNode
// returns.
func (r *Registry) AddNode(h *Handle) (ID, error) {
	if h == nil || h.node == nil || h.released {
		return NilID, &NodeError{Op: "add", Err: ErrReleased}
	}
	n := h.node
	if n.destroyed {
		return NilID, &NodeError{Op: "add", ID: n.id, Err: ErrDestroyed}
	}
	if n.registry != nil {
		return NilID, &NodeError{Op: "add", ID: n.id, Err: ErrAlreadyRegistered}
	}

	r.lastID++
	n.id = r.lastID
	n.registry = r
	n.retain()
	r.nodes = append(r.nodes, n)
	r.index[n.id] = n

	log.Debug(log.CatRegistry, "Node added", "id", n.id, "type", n.typ, "refs", n.count)
	r.dispatch(Event{Kind: NodeAdded, NodeID: n.id, NodeType: n.typ})
	return n.id, nil
}

// RemoveNode unregisters the node and gives back the registry's share. The
// node is destroyed if no handle still holds it. References to it from
// other nodes are cleared, and so are the node's own references, since the
// IDs they hold mean nothing outside this registry.
func (r *Registry) RemoveNode(id ID) error {
	n, err := r.lookup("remove", id)
	if err != nil {
		return err
	}

	for i, cur := range r.nodes {
		if cur == n {
			r.nodes = append(r.nodes[:i], r.nodes[i+1:]...)
			break
		}
	}
	delete(r.index, id)
	for _, other := range r.nodes {
		for role, target := range other.refs {
			if target == id {
				delete(other.refs, role)
			}
		}
	}
	clear(n.refs)
	n.registry = nil
	typ := n.typ
	n.release()

	log.Debug(log.CatRegistry, "Node removed", "id", id, "type", typ, "destroyed", n.destroyed)
	r.dispatch(Event{Kind: NodeRemoved, NodeID: id, NodeType: typ})
	return nil
}

// GetNodeByID returns the registered node with the given ID.
func (r *Registry) GetNodeByID(id ID) (*Node, error) {
	return r.lookup("get", id)
}

func (r *Registry) lookup(op string, id ID) (*Node, error) {
	if n, ok := r.index[id]; ok {
		return n, nil
	}
	if id != NilID && id <= r.lastID {
		return nil, &NodeError{Op: op, ID: id, Err: ErrAlreadyRemoved}
	}
	return nil, &NodeError{Op: op, ID: id, Err: ErrNotFound}
}

// Nodes returns the registered nodes in insertion order.
func (r *Registry) Nodes() []*Node {
	out := make([]*Node, len(r.nodes))
	copy(out, r.nodes)
	return out
}

// NodesByType returns the registered nodes of one type in insertion order.
func (r *Registry) NodesByType(typ string) []*Node {
	out := make([]*Node, 0)
	for _, n := range r.nodes {
		if n.typ == typ {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int { return len(r.nodes) }

// SetReference points node id at target under role. A NilID target removes
// the reference. Both nodes must be registered.
func (r *Registry) SetReference(id ID, role string, target ID) error {
	n, err := r.lookup("reference", id)
	if err != nil {
		return err
	}
	if target == NilID {
		delete(n.refs, role)
		return nil
	}
	if _, err := r.lookup("reference", target); err != nil {
		return err
	}
	n.refs[role] = target
	return nil
}

// Clear removes every node, bracketed by StartClear and EndClear.
// Nodes added by observers while clearing are kept.
func (r *Registry) Clear() {
	r.dispatch(Event{Kind: StartClear})
	for _, n := range r.Nodes() {
		if n.registry != r {
			continue
		}
		_ = r.RemoveNode(n.id)
	}
	r.dispatch(Event{Kind: EndClear})
}

// Modified fires a Modified event without any structural change.
func (r *Registry) Modified() {
	r.dispatch(Event{Kind: Modified})
}

// RegisterObserver adds o to the end of the dispatch order.
func (r *Registry) RegisterObserver(o Observer) Token {
	r.lastToken++
	r.observers = append(r.observers, &observerSlot{token: r.lastToken, obs: o, active: true})
	return r.lastToken
}

// UnregisterObserver removes the observer registered under t. It may be
// called from inside a callback.
func (r *Registry) UnregisterObserver(t Token) error {
	for i, slot := range r.observers {
		if slot.token != t || !slot.active {
			continue
		}
		slot.active = false
		if r.dispatching > 0 {
			r.stale = true
		} else {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
		}
		return nil
	}
	return ErrNotFound
}

// ObserverCount returns the number of registered observers.
func (r *Registry) ObserverCount() int {
	n := 0
	for _, slot := range r.observers {
		if slot.active {
			n++
		}
	}
	return n
}

// dispatch calls every observer that is active when its turn comes. The slice
// is only compacted once the outermost dispatch finishes, so indices stay
// valid across nested dispatches triggered by callbacks.
func (r *Registry) dispatch(e Event) {
	// The mirror sees events in the order observers do, nested dispatches included.
	if r.publisher != nil {
		r.publisher.Publish(e.Kind.pubsubType(), e)
	}

	r.dispatching++
	n := len(r.observers)
	for i := 0; i < n; i++ {
		slot := r.observers[i]
		if slot.active {
			slot.obs.OnSceneChanged(e)
		}
	}
	r.dispatching--

	if r.dispatching == 0 && r.stale {
		live := r.observers[:0]
		for _, slot := range r.observers {
			if slot.active {
				live = append(live, slot)
			}
		}
		clear(r.observers[len(live):])
		r.observers = live
		r.stale = false
	}
}
