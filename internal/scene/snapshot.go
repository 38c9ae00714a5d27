package scene

import (
	"errors"
	"fmt"
	"maps"

	"github.com/Slicer/Slicer-sub006/internal/log"
)

// SnapshotVersion is the snapshot layout written by Export.
const SnapshotVersion = 1

// Snapshot is the format-independent export of a registry.
type Snapshot struct {
	Version int          `yaml:"version" json:"version"`
	Nodes   []NodeRecord `yaml:"nodes" json:"nodes"`
}

// NodeRecord is one exported node. ID is only meaningful inside the snapshot
// it belongs to: references point at other records' IDs, and Import assigns
// fresh registry IDs.
type NodeRecord struct {
	ID         ID                `yaml:"id" json:"id"`
	Type       string            `yaml:"type" json:"type"`
	Name       string            `yaml:"name,omitempty" json:"name,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	References map[string]ID     `yaml:"references,omitempty" json:"references,omitempty"`
}

// Export captures every registered node in insertion order.
func (r *Registry) Export() *Snapshot {
	snap := &Snapshot{Version: SnapshotVersion, Nodes: make([]NodeRecord, 0, len(r.nodes))}
	for _, n := range r.nodes {
		rec := NodeRecord{ID: n.id, Type: n.typ, Name: n.name}
		if len(n.attrs) > 0 {
			rec.Attributes = maps.Clone(n.attrs)
		}
		if len(n.refs) > 0 {
			rec.References = maps.Clone(n.refs)
		}
		snap.Nodes = append(snap.Nodes, rec)
	}
	return snap
}

// Validate checks that s can be imported into a registry whose type rules
// are given by valid (nil accepts any non-empty type).
func (s *Snapshot) Validate(valid func(string) bool) error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	if s.Version < 0 || s.Version > SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	seen := make(map[ID]struct{}, len(s.Nodes))
	for i, rec := range s.Nodes {
		if rec.ID == NilID {
			return fmt.Errorf("node %d: missing id", i)
		}
		if _, dup := seen[rec.ID]; dup {
			return fmt.Errorf("node %d: duplicate id %d", i, rec.ID)
		}
		seen[rec.ID] = struct{}{}
		if rec.Type == "" || (valid != nil && !valid(rec.Type)) {
			return fmt.Errorf("node %d: %w %q", i, ErrInvalidType, rec.Type)
		}
	}
	for i, rec := range s.Nodes {
		for role, target := range rec.References {
			if _, ok := seen[target]; !ok {
				return fmt.Errorf("node %d: reference %q points at unknown id %d", i, role, target)
			}
		}
	}
	return nil
}

// Import adds a node for every record in s and returns their new IDs in
// record order. The snapshot is validated before the registry is touched; on
// failure the error is a *SerializationError and nothing was added.
// Observers see StartImport, one NodeAdded per record, then EndImport.
func (r *Registry) Import(s *Snapshot) ([]ID, error) {
	if err := s.Validate(r.validType); err != nil {
		log.Warn(log.CatRegistry, "Rejected snapshot", "error", err)
		return nil, &SerializationError{Op: "import", Err: err}
	}

	r.dispatch(Event{Kind: StartImport})

	ids := make([]ID, len(s.Nodes))
	remap := make(map[ID]ID, len(s.Nodes))
	added := make([]*Node, len(s.Nodes))
	for i, rec := range s.Nodes {
		n := newNode(rec.Type)
		n.name = rec.Name
		maps.Copy(n.attrs, rec.Attributes)
		h := &Handle{node: n}
		id, err := r.AddNode(h)
		if err != nil {
			return ids[:i], &SerializationError{Op: "import", Err: err}
		}
		_ = h.Release()
		ids[i] = id
		remap[rec.ID] = id
		added[i] = n
	}
	for i, rec := range s.Nodes {
		n := added[i]
		if n.registry != r {
			// An observer removed it during the import.
			continue
		}
		for role, old := range rec.References {
			if target, ok := r.index[remap[old]]; ok {
				n.refs[role] = target.id
			}
		}
	}

	log.Debug(log.CatRegistry, "Snapshot imported", "nodes", len(ids))
	r.dispatch(Event{Kind: EndImport})
	return ids, nil
}

// Equivalent reports whether a and b describe the same scene up to ID
// renumbering: same node count, and position by position the same type,
// name, attributes, and reference targets.
func Equivalent(a, b *Snapshot) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Nodes) != len(b.Nodes) {
		return false
	}
	posA := positions(a)
	posB := positions(b)
	for i := range a.Nodes {
		ra, rb := a.Nodes[i], b.Nodes[i]
		if ra.Type != rb.Type || ra.Name != rb.Name {
			return false
		}
		if !maps.Equal(ra.Attributes, rb.Attributes) {
			return false
		}
		if len(ra.References) != len(rb.References) {
			return false
		}
		for role, ta := range ra.References {
			tb, ok := rb.References[role]
			if !ok {
				return false
			}
			pa, okA := posA[ta]
			pb, okB := posB[tb]
			if okA != okB || pa != pb {
				return false
			}
		}
	}
	return true
}

func positions(s *Snapshot) map[ID]int {
	pos := make(map[ID]int, len(s.Nodes))
	for i, rec := range s.Nodes {
		pos[rec.ID] = i
	}
	return pos
}
