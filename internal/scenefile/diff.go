package scenefile

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Slicer/Slicer-sub006/internal/scene"
)

// Canonical renders snap as YAML with IDs renumbered 1..n in record order,
// so two equivalent snapshots render identically.
func Canonical(snap *scene.Snapshot) (string, error) {
	remap := make(map[scene.ID]scene.ID, len(snap.Nodes))
	for i, rec := range snap.Nodes {
		remap[rec.ID] = scene.ID(i + 1)
	}
	out := &scene.Snapshot{Version: snap.Version, Nodes: make([]scene.NodeRecord, len(snap.Nodes))}
	for i, rec := range snap.Nodes {
		rec.ID = remap[rec.ID]
		if len(rec.References) > 0 {
			refs := make(map[string]scene.ID, len(rec.References))
			for role, target := range rec.References {
				refs[role] = remap[target]
			}
			rec.References = refs
		}
		out.Nodes[i] = rec
	}
	data, err := Marshal(out, FormatYAML)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Diff returns a unified-style line diff between the canonical renderings
// of a and b. It is empty when the snapshots are equivalent.
func Diff(a, b *scene.Snapshot) (string, error) {
	ta, err := Canonical(a)
	if err != nil {
		return "", err
	}
	tb, err := Canonical(b)
	if err != nil {
		return "", err
	}
	if ta == tb {
		return "", nil
	}

	dmp := diffmatchpatch.New()
	runesA, runesB, lines := dmp.DiffLinesToRunes(ta, tb)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(runesA, runesB, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
		}
	}
	return sb.String(), nil
}
