package modules

import (
	"embed"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/Slicer/Slicer-sub006/internal/log"
)

//go:embed modules.yaml
var builtinFS embed.FS

// CatalogFile is the root structure for modules.yaml.
type CatalogFile struct {
	Modules []ModuleDef `yaml:"modules"`
}

// ModuleDef defines a single module in YAML.
type ModuleDef struct {
	Key          string   `yaml:"key"`
	Title        string   `yaml:"title"`
	Categories   []string `yaml:"categories"`
	Contributors []string `yaml:"contributors"`
	NodeTypes    []string `yaml:"node_types"`
	Dependencies []string `yaml:"dependencies"`
	Hidden       bool     `yaml:"hidden"`
}

// LoadYAML builds a catalog from modules.yaml at the root of fsys and checks
// that the dependency graph resolves.
func LoadYAML(fsys fs.FS) (*Catalog, error) {
	content, err := fs.ReadFile(fsys, "modules.yaml")
	if err != nil {
		return nil, fmt.Errorf("read modules.yaml: %w", err)
	}

	var file CatalogFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parse modules.yaml: %w", err)
	}

	catalog := NewCatalog()
	for i, def := range file.Modules {
		d := &Descriptor{
			Key:          def.Key,
			Title:        def.Title,
			Categories:   def.Categories,
			Contributors: def.Contributors,
			NodeTypes:    def.NodeTypes,
			Dependencies: def.Dependencies,
			Hidden:       def.Hidden,
		}
		if d.Title == "" {
			d.Title = d.Key
		}
		if err := catalog.Add(d); err != nil {
			return nil, fmt.Errorf("module %d (%s): %w", i, def.Key, err)
		}
	}
	if _, err := catalog.LoadOrder(); err != nil {
		return nil, err
	}

	log.Debug(log.CatModules, "Loaded module catalog", "modules", len(catalog.List()), "node_types", len(catalog.NodeTypes()))
	return catalog, nil
}

// Builtin loads the catalog compiled into the binary.
func Builtin() (*Catalog, error) {
	return LoadYAML(builtinFS)
}
