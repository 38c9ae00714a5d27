package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Slicer/Slicer-sub006/internal/modules"
	"github.com/Slicer/Slicer-sub006/internal/presentation"
)

func newModulesCmd(a *app) *cobra.Command {
	var (
		category string
		order    bool
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the built-in module catalog",
		Long: `List the modules scenectl knows about and the node types each provides.

Examples:
  # Visible modules in catalog order
  scenectl modules

  # Filter by category
  scenectl modules --category Segmentation

  # Dependency load order, including hidden modules
  scenectl modules --order --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := modules.Builtin()
			if err != nil {
				return err
			}

			var descs []*modules.Descriptor
			switch {
			case order:
				if descs, err = catalog.LoadOrder(); err != nil {
					return err
				}
			case category != "":
				descs = catalog.ByCategory(category)
				if len(descs) == 0 {
					return fmt.Errorf("no modules in category %q (known: %v)", category, catalog.Categories())
				}
			default:
				descs = catalog.List()
			}
			if !all {
				descs = visible(descs)
			}
			return a.formatter(cmd).FormatModules(presentation.FromModules(descs))
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only modules in this category")
	cmd.Flags().BoolVar(&order, "order", false, "list in dependency load order")
	cmd.Flags().BoolVar(&all, "all", false, "include hidden modules")
	return cmd
}

func visible(descs []*modules.Descriptor) []*modules.Descriptor {
	out := make([]*modules.Descriptor, 0, len(descs))
	for _, d := range descs {
		if !d.Hidden {
			out = append(out, d)
		}
	}
	return out
}
