package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/Slicer/Slicer-sub006/internal/log"
	"github.com/Slicer/Slicer-sub006/internal/modules"
	"github.com/Slicer/Slicer-sub006/internal/presentation"
	"github.com/Slicer/Slicer-sub006/internal/scene"
	"github.com/Slicer/Slicer-sub006/internal/scenefile"
	"github.com/Slicer/Slicer-sub006/internal/tracing"
)

// errScenesDiffer is returned by `diff --exit-code` when the scenes differ.
var errScenesDiffer = errors.New("scenes differ")

// loadScene reads path and imports it into a fresh registry. With strict set,
// node types must be declared by a module in the built-in catalog.
func loadScene(ctx context.Context, path string, strict bool, opts ...scene.Option) (*scene.Registry, error) {
	snap, err := scenefile.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if strict {
		catalog, err := modules.Builtin()
		if err != nil {
			return nil, err
		}
		opts = append(opts, scene.WithTypeValidator(catalog.HasNodeType))
	}
	reg := scene.New(opts...)

	token := reg.RegisterObserver(tracing.NewSpanObserver(trace.SpanFromContext(ctx)))
	defer func() { _ = reg.UnregisterObserver(token) }()

	if _, err := reg.Import(snap); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug(log.CatCLI, "Loaded scene", "path", path, "nodes", reg.Len())
	return reg, nil
}

func newInspectCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Validate a scene file and list its nodes",
		Long: `Validate a scene file and list its nodes.

Nodes are shown renumbered from 1 in file order, the way they would be
numbered after loading into an empty scene.

Examples:
  scenectl inspect head.yaml
  scenectl inspect --strict head.json
  scenectl inspect head.yaml --json | jq '.types'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadScene(cmd.Context(), args[0], strict)
			if err != nil {
				return err
			}
			return a.formatter(cmd).FormatScene(presentation.FromSnapshot(reg.Export()))
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "reject node types not provided by a known module")
	return cmd
}

func newConvertCmd(a *app) *cobra.Command {
	var (
		strict bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Rewrite a scene file, optionally in another format",
		Long: `Load IN, then write it to OUT. Node IDs are renumbered from 1.

The output format comes from --format, then from the OUT extension
(.yaml, .yml, .json), then from export.format in the config.

Examples:
  scenectl convert head.yaml head.json
  scenectl convert --format json head.yaml head.scene`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]

			def, err := scenefile.ParseFormat(a.cfg.Export.Format)
			if err != nil {
				return err
			}
			outFormat := scenefile.FormatFromPath(out, def)
			if format != "" {
				if outFormat, err = scenefile.ParseFormat(format); err != nil {
					return err
				}
			}

			reg, err := loadScene(cmd.Context(), in, strict)
			if err != nil {
				return err
			}
			snap := reg.Export()
			if err := scenefile.WriteFileAs(cmd.Context(), out, snap, outFormat); err != nil {
				return err
			}
			return a.formatter(cmd).FormatResult(
				fmt.Sprintf("wrote %d nodes to %s (%s)", len(snap.Nodes), out, outFormat),
				map[string]any{"path": out, "format": outFormat, "nodes": len(snap.Nodes)},
			)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "reject node types not provided by a known module")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: yaml or json")
	return cmd
}

func newDiffCmd(a *app) *cobra.Command {
	var exitCode bool
	cmd := &cobra.Command{
		Use:   "diff A B",
		Short: "Compare two scene files ignoring node numbering",
		Long: `Compare two scene files after renumbering both from 1.

Files that differ only in node IDs produce no output.

Examples:
  scenectl diff before.yaml after.yaml
  scenectl diff --exit-code before.yaml after.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a1, err := scenefile.ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			b1, err := scenefile.ReadFile(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			diff, err := scenefile.Diff(a1, b1)
			if err != nil {
				return err
			}
			if err := a.formatter(cmd).FormatDiff(diff); err != nil {
				return err
			}
			if exitCode && diff != "" {
				return errScenesDiffer
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "fail when the scenes differ")
	return cmd
}
