package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Slicer/Slicer-sub006/internal/log"
	"github.com/Slicer/Slicer-sub006/internal/pubsub"
	"github.com/Slicer/Slicer-sub006/internal/scene"
	"github.com/Slicer/Slicer-sub006/internal/scenefile"
	"github.com/Slicer/Slicer-sub006/internal/snapshots"
	"github.com/Slicer/Slicer-sub006/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		strict   bool
		saveName string
	)
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Reload a scene file whenever it changes and show what changed",
		Long: `Load FILE, then reload it each time it is written. After every reload the
differences from the previous version are printed. Invalid versions are
reported and skipped.

With --save, every valid version is also stored under the given name.

The debounce interval comes from watch.debounce in the config.

Examples:
  scenectl watch head.yaml
  scenectl watch --save head-live head.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			path := args[0]

			w, err := watcher.New(watcher.Config{Path: path, DebounceDur: a.cfg.Watch.Debounce})
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()
			onChange, err := w.Start()
			if err != nil {
				return err
			}

			// Registry events are mirrored to the log asynchronously.
			broker := pubsub.NewBroker[scene.Event]()
			defer broker.Close()
			defer logDropped(broker)
			go pubsub.Forward(ctx, broker.Subscribe(ctx), func(e pubsub.Event[scene.Event]) {
				log.Debug(log.CatWatcher, "Scene event", "kind", e.Payload.Kind, "node", e.Payload.NodeID, "type", e.Payload.NodeType)
			})

			var prev *scene.Snapshot
			reload := func() error {
				reg, err := loadScene(ctx, path, strict, scene.WithPublisher(broker))
				if err != nil {
					// A half-written or invalid file is reported, not fatal.
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
					return nil
				}
				snap := reg.Export()
				f := a.formatter(cmd)
				if err := f.FormatResult(
					fmt.Sprintf("loaded %s (%d nodes)", path, len(snap.Nodes)),
					map[string]any{"path": path, "nodes": len(snap.Nodes)},
				); err != nil {
					return err
				}
				if prev != nil {
					diff, err := scenefile.Diff(prev, snap)
					if err != nil {
						return err
					}
					if err := f.FormatDiff(diff); err != nil {
						return err
					}
				}
				prev = snap

				if saveName == "" {
					return nil
				}
				return a.withStore(func(repo snapshots.Repository) error {
					_, err := repo.Save(ctx, saveName, snap)
					return err
				})
			}

			if err := reload(); err != nil {
				return err
			}
			for {
				select {
				case <-ctx.Done():
					return nil
				case _, ok := <-onChange:
					if !ok {
						return nil
					}
					if err := reload(); err != nil {
						return err
					}
				}
			}
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "reject node types not provided by a known module")
	cmd.Flags().StringVar(&saveName, "save", "", "also store every valid version under this snapshot name")
	return cmd
}

// logDropped warns when the event log mirror could not keep up.
func logDropped(broker *pubsub.Broker[scene.Event]) {
	if n := broker.Dropped(); n > 0 {
		log.Warn(log.CatWatcher, "Scene events dropped from log mirror", "dropped", n)
	}
}
