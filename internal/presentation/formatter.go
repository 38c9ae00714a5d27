// Package presentation renders command output as JSON or terminal tables.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
)

// MaxCellWidth bounds table cells; longer values are truncated with an ellipsis.
const MaxCellWidth = 40

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"})
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"})
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"})
)

// Formatter handles output formatting.
type Formatter struct {
	writer io.Writer
	json   bool
}

// NewFormatter creates a formatter writing tables, or indented JSON when
// asJSON is set.
func NewFormatter(writer io.Writer, asJSON bool) *Formatter {
	return &Formatter{writer: writer, json: asJSON}
}

// FormatScene writes the inspect view of a snapshot.
func (f *Formatter) FormatScene(dto SceneDTO) error {
	if f.json {
		return f.encode(dto)
	}
	if _, err := fmt.Fprintf(f.writer, "version %d, %d nodes\n", dto.Version, dto.Count); err != nil {
		return err
	}
	rows := make([][]string, 0, len(dto.Nodes))
	for _, n := range dto.Nodes {
		refs := make([]string, 0, len(n.References))
		for _, role := range sortedKeys(n.References) {
			refs = append(refs, role+"="+strconv.FormatUint(n.References[role], 10))
		}
		rows = append(rows, []string{
			strconv.FormatUint(n.ID, 10), n.Type, n.Name, strconv.Itoa(n.Attributes), strings.Join(refs, " "),
		})
	}
	if err := f.table([]string{"ID", "TYPE", "NAME", "ATTRS", "REFERENCES"}, rows); err != nil {
		return err
	}

	typeRows := make([][]string, 0, len(dto.Types))
	for _, typ := range sortedKeys(dto.Types) {
		typeRows = append(typeRows, []string{typ, strconv.Itoa(dto.Types[typ])})
	}
	return f.table([]string{"TYPE", "COUNT"}, typeRows)
}

// FormatModules writes the module catalog.
func (f *Formatter) FormatModules(dtos []ModuleDTO) error {
	if f.json {
		return f.encode(dtos)
	}
	rows := make([][]string, 0, len(dtos))
	for _, m := range dtos {
		rows = append(rows, []string{
			m.Key, m.Title, strings.Join(m.Categories, ", "), strings.Join(m.NodeTypes, ", "), strings.Join(m.Dependencies, ", "),
		})
	}
	return f.table([]string{"KEY", "TITLE", "CATEGORIES", "NODE TYPES", "DEPENDS ON"}, rows)
}

// FormatSnapshots writes stored snapshot metadata.
func (f *Formatter) FormatSnapshots(dtos []SnapshotDTO) error {
	if f.json {
		return f.encode(dtos)
	}
	rows := make([][]string, 0, len(dtos))
	for _, s := range dtos {
		rows = append(rows, []string{
			s.Name, strconv.Itoa(s.Nodes), s.UpdatedAt.Format("2006-01-02 15:04:05"), s.GUID,
		})
	}
	return f.table([]string{"NAME", "NODES", "UPDATED", "GUID"}, rows)
}

// FormatDiff writes a line diff, colouring added and removed lines when the
// output supports it.
func (f *Formatter) FormatDiff(diff string) error {
	if f.json {
		return f.encode(map[string]any{"equal": diff == "", "diff": diff})
	}
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(text, "+ "):
			text = addedStyle.Render(text)
		case strings.HasPrefix(text, "- "):
			text = removedStyle.Render(text)
		}
		if _, err := fmt.Fprintln(f.writer, text); err != nil {
			return err
		}
	}
	return nil
}

// FormatResult writes a generic result: JSON when enabled, otherwise msg.
func (f *Formatter) FormatResult(msg string, result any) error {
	if f.json {
		return f.encode(result)
	}
	_, err := fmt.Fprintln(f.writer, msg)
	return err
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (f *Formatter) table(headers []string, rows [][]string) error {
	for _, row := range rows {
		for i, cell := range row {
			row[i] = Truncate(cell, MaxCellWidth)
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(f.writer, t.Render())
	return err
}

// Truncate shortens s to at most width display cells, ending in "…" when
// anything was cut. Wide runes count as two cells.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
