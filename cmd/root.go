// Package cmd implements the scenectl command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Slicer/Slicer-sub006/internal/config"
	"github.com/Slicer/Slicer-sub006/internal/log"
	"github.com/Slicer/Slicer-sub006/internal/presentation"
	"github.com/Slicer/Slicer-sub006/internal/tracing"
)

// localConfigPath is checked before the user config directory.
const localConfigPath = ".scenectl/config.yaml"

var version = "dev"

// app carries state shared by every subcommand of one invocation.
type app struct {
	v         *viper.Viper
	cfgFile   string
	cfg       config.Config
	asJSON    bool
	logStderr bool

	provider *tracing.Provider
	span     trace.Span
	cleanups []func()
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "scenectl",
		Short: "Inspect, convert and store scene snapshots",
		Long: `scenectl works with scene snapshot files: a flat list of typed nodes with
attributes and references between them.

Snapshots can be validated, converted between YAML and JSON, compared while
ignoring node numbering, and saved by name in a local SQLite store.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: .scenectl/config.yaml, then ~/.config/scenectl/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&a.logStderr, "log-stderr", false, "write debug logs to stderr")

	rootCmd.AddCommand(
		newInspectCmd(a),
		newConvertCmd(a),
		newDiffCmd(a),
		newModulesCmd(a),
		newSnapshotCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
	)
	return rootCmd, a
}

// setup loads configuration and starts logging and tracing.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := a.initConfig(); err != nil {
		return err
	}
	if err := a.initLogging(cmd); err != nil {
		return err
	}
	return a.initTracing(cmd)
}

func (a *app) initConfig() error {
	defaults := config.Defaults()
	a.v.SetDefault("log.enabled", defaults.Log.Enabled)
	a.v.SetDefault("log.path", defaults.Log.Path)
	a.v.SetDefault("log.level", defaults.Log.Level)
	a.v.SetDefault("store.path", defaults.Store.Path)
	a.v.SetDefault("export.format", defaults.Export.Format)
	a.v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	a.v.SetDefault("cache.ttl", defaults.Cache.TTL)
	a.v.SetDefault("cache.cleanup_interval", defaults.Cache.CleanupInterval)
	a.v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	a.v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	a.v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	a.v.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	a.v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	a.v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	// SCENECTL_STORE_PATH overrides store.path, and so on.
	a.v.SetEnvPrefix("scenectl")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		// Config lookup order:
		// 1. .scenectl/config.yaml (current directory)
		// 2. ~/.config/scenectl/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			a.v.SetConfigFile(localConfigPath)
		} else if dir := config.DefaultConfigDir(); dir != "" {
			a.v.AddConfigPath(dir)
			a.v.SetConfigName("config")
			a.v.SetConfigType("yaml")
		}
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	a.cfg = config.Config{}
	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if err := config.Validate(a.cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (a *app) initLogging(cmd *cobra.Command) error {
	switch {
	case a.logStderr:
		log.InitWriter(cmd.ErrOrStderr())
		log.SetMinLevel(log.LevelDebug)
	case a.cfg.Log.Enabled:
		if err := os.MkdirAll(filepath.Dir(a.cfg.Log.Path), 0o750); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		cleanup, err := log.InitWithTeaLog(a.cfg.Log.Path, "scenectl")
		if err != nil {
			return fmt.Errorf("opening log: %w", err)
		}
		a.cleanups = append(a.cleanups, cleanup)
		level, _ := log.ParseLevel(a.cfg.Log.Level)
		log.SetMinLevel(level)
	default:
		return nil
	}
	a.cleanups = append(a.cleanups, log.Reset)
	log.Debug(log.CatCLI, "Starting command", "command", cmd.CommandPath(), "config", a.v.ConfigFileUsed())
	return nil
}

func (a *app) initTracing(cmd *cobra.Command) error {
	t := a.cfg.Tracing
	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      t.Enabled,
		Exporter:     t.Exporter,
		FilePath:     t.FilePath,
		OTLPEndpoint: t.OTLPEndpoint,
		SampleRate:   t.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	a.provider = provider

	ctx, span := provider.Tracer().Start(cmd.Context(), tracing.SpanPrefixCLI+cmd.Name(),
		trace.WithAttributes(attribute.String(tracing.AttrCommand, cmd.CommandPath())))
	a.span = span
	cmd.SetContext(ctx)
	return nil
}

// close ends the command span, flushes traces and closes the log.
func (a *app) close(runErr error) {
	if a.span != nil {
		tracing.End(a.span, runErr)
	}
	if a.provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Failed to flush traces", err)
		}
		cancel()
	}
	if runErr != nil {
		log.ErrorErr(log.CatCLI, "Command failed", runErr)
	}
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
}

func (a *app) formatter(cmd *cobra.Command) *presentation.Formatter {
	return presentation.NewFormatter(cmd.OutOrStdout(), a.asJSON)
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx; watch stops when ctx ends.
func ExecuteContext(ctx context.Context) error {
	rootCmd, a := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	a.close(err)
	return err
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
}
