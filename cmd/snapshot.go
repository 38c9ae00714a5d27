package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Slicer/Slicer-sub006/internal/cachemanager"
	"github.com/Slicer/Slicer-sub006/internal/config"
	"github.com/Slicer/Slicer-sub006/internal/infrastructure/sqlite"
	"github.com/Slicer/Slicer-sub006/internal/presentation"
	"github.com/Slicer/Slicer-sub006/internal/scenefile"
	"github.com/Slicer/Slicer-sub006/internal/snapshots"
)

// withStore opens the snapshot store for the duration of fn.
func (a *app) withStore(fn func(repo snapshots.Repository) error) error {
	path := a.cfg.Store.Path
	if path == "" {
		path = config.DefaultStorePath()
	}
	if path == "" {
		return fmt.Errorf("store.path is not set and the home directory is unknown")
	}

	db, err := sqlite.NewDB(path)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	defer func() { _ = db.Close() }()

	var opts []sqlite.RepositoryOption
	if a.cfg.Cache.Enabled {
		cache := cachemanager.NewInMemoryCacheManager[string, *snapshots.Record](
			"snapshots", a.cfg.Cache.TTL, a.cfg.Cache.CleanupInterval)
		opts = append(opts, sqlite.WithCache(cache, a.cfg.Cache.TTL))
	}
	return fn(db.SnapshotRepository(opts...))
}

func newSnapshotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save, load, list and remove named snapshots",
		Long: `Manage named snapshots in the local store (store.path in the config).

Examples:
  scenectl snapshot save baseline head.yaml
  scenectl snapshot list
  scenectl snapshot load baseline restored.json
  scenectl snapshot rm baseline`,
	}
	cmd.AddCommand(
		newSnapshotSaveCmd(a),
		newSnapshotLoadCmd(a),
		newSnapshotListCmd(a),
		newSnapshotRmCmd(a),
	)
	return cmd
}

func newSnapshotSaveCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "save NAME FILE",
		Short: "Store FILE under NAME, replacing any previous snapshot of that name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			reg, err := loadScene(cmd.Context(), path, strict)
			if err != nil {
				return err
			}
			return a.withStore(func(repo snapshots.Repository) error {
				rec, err := repo.Save(cmd.Context(), name, reg.Export())
				if err != nil {
					return err
				}
				return a.formatter(cmd).FormatResult(
					fmt.Sprintf("saved %s (%d nodes)", rec.Name, rec.NodeCount),
					presentation.FromRecords([]*snapshots.Record{rec})[0],
				)
			})
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "reject node types not provided by a known module")
	return cmd
}

func newSnapshotLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load NAME OUT",
		Short: "Write the snapshot stored under NAME to OUT",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, out := args[0], args[1]
			return a.withStore(func(repo snapshots.Repository) error {
				rec, err := findSnapshot(cmd.Context(), repo, name)
				if err != nil {
					return err
				}
				if err := scenefile.WriteFile(cmd.Context(), out, rec.Snapshot); err != nil {
					return err
				}
				return a.formatter(cmd).FormatResult(
					fmt.Sprintf("wrote %s to %s (%d nodes)", rec.Name, out, rec.NodeCount),
					map[string]any{"name": rec.Name, "path": out, "nodes": rec.NodeCount},
				)
			})
		},
	}
}

func newSnapshotListCmd(a *app) *cobra.Command {
	var (
		prefix string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(repo snapshots.Repository) error {
				recs, err := repo.List(cmd.Context(), snapshots.ListFilter{Prefix: prefix, Limit: limit})
				if err != nil {
					return err
				}
				return a.formatter(cmd).FormatSnapshots(presentation.FromRecords(recs))
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only names starting with this prefix")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of snapshots (0 for all)")
	return cmd
}

func newSnapshotRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"delete"},
		Short:   "Remove the snapshot stored under NAME",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return a.withStore(func(repo snapshots.Repository) error {
				if err := repo.Delete(cmd.Context(), name); err != nil {
					return err
				}
				return a.formatter(cmd).FormatResult("removed "+name, map[string]string{"name": name})
			})
		},
	}
}

func findSnapshot(ctx context.Context, repo snapshots.Repository, name string) (*snapshots.Record, error) {
	rec, err := repo.FindByName(ctx, name)
	if snapshots.IsNotFound(err) {
		return nil, fmt.Errorf("%w (see `scenectl snapshot list`)", err)
	}
	return rec, err
}
