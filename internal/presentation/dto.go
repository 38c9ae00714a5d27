package presentation

import (
	"sort"
	"time"

	"github.com/Slicer/Slicer-sub006/internal/modules"
	"github.com/Slicer/Slicer-sub006/internal/scene"
	"github.com/Slicer/Slicer-sub006/internal/snapshots"
)

// SceneDTO summarises a snapshot for `scenectl inspect`.
type SceneDTO struct {
	Version int            `json:"version"`
	Count   int            `json:"count"`
	Types   map[string]int `json:"types"`
	Nodes   []NodeDTO      `json:"nodes"`
}

// NodeDTO is one node of a SceneDTO.
type NodeDTO struct {
	ID         uint64            `json:"id"`
	Type       string            `json:"type"`
	Name       string            `json:"name,omitempty"`
	Attributes int               `json:"attributes"`
	References map[string]uint64 `json:"references,omitempty"`
}

// ModuleDTO represents a catalog entry.
type ModuleDTO struct {
	Key          string   `json:"key"`
	Title        string   `json:"title"`
	Categories   []string `json:"categories"`
	NodeTypes    []string `json:"node_types"`
	Dependencies []string `json:"dependencies"`
}

// SnapshotDTO represents a stored snapshot without its payload.
type SnapshotDTO struct {
	Name      string    `json:"name"`
	GUID      string    `json:"guid"`
	Nodes     int       `json:"nodes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromSnapshot builds the inspect view of snap.
func FromSnapshot(snap *scene.Snapshot) SceneDTO {
	dto := SceneDTO{
		Version: snap.Version,
		Count:   len(snap.Nodes),
		Types:   make(map[string]int),
		Nodes:   make([]NodeDTO, 0, len(snap.Nodes)),
	}
	for _, rec := range snap.Nodes {
		dto.Types[rec.Type]++
		n := NodeDTO{
			ID:         uint64(rec.ID),
			Type:       rec.Type,
			Name:       rec.Name,
			Attributes: len(rec.Attributes),
		}
		if len(rec.References) > 0 {
			n.References = make(map[string]uint64, len(rec.References))
			for role, id := range rec.References {
				n.References[role] = uint64(id)
			}
		}
		dto.Nodes = append(dto.Nodes, n)
	}
	return dto
}

// FromModules converts catalog descriptors, keeping their order.
func FromModules(descs []*modules.Descriptor) []ModuleDTO {
	out := make([]ModuleDTO, 0, len(descs))
	for _, d := range descs {
		out = append(out, ModuleDTO{
			Key:          d.Key,
			Title:        d.Title,
			Categories:   nonNil(d.Categories),
			NodeTypes:    nonNil(d.NodeTypes),
			Dependencies: nonNil(d.Dependencies),
		})
	}
	return out
}

// FromRecords converts store records, keeping their order.
func FromRecords(recs []*snapshots.Record) []SnapshotDTO {
	out := make([]SnapshotDTO, 0, len(recs))
	for _, r := range recs {
		out = append(out, SnapshotDTO{
			Name:      r.Name,
			GUID:      r.GUID,
			Nodes:     r.NodeCount,
			CreatedAt: r.CreatedAt.UTC(),
			UpdatedAt: r.UpdatedAt.UTC(),
		})
	}
	return out
}

// sortedKeys returns the keys of m in order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
