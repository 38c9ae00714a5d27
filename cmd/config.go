package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Slicer/Slicer-sub006/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create, edit and show the scenectl configuration",
	}
	cmd.AddCommand(newConfigInitCmd(a), newConfigSetCmd(a), newConfigShowCmd(a))
	return cmd
}

// configPath is the file config commands act on: --config, the file that was
// loaded, or the user config location.
func (a *app) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			return used
		}
	}
	if dir := config.DefaultConfigDir(); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return localConfigPath
}

func newConfigInitCmd(a *app) *cobra.Command {
	var (
		force bool
		local bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		Long: `Write a commented default config file.

The file goes to --config if given, to .scenectl/config.yaml with --local,
and to ~/.config/scenectl/config.yaml otherwise. An existing file is kept
unless --force is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath()
			if local {
				path = localConfigPath
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			return a.formatter(cmd).FormatResult("wrote "+path, map[string]string{"path": path})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&local, "local", false, "write .scenectl/config.yaml in the current directory")
	return cmd
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set one value in the config file, keeping comments",
		Long: `Set one value in the config file, keeping comments and layout.

Examples:
  scenectl config set export.format json
  scenectl config set cache.ttl 1h`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath()
			if err := config.SetValue(path, args[0], args[1]); err != nil {
				return err
			}
			return a.formatter(cmd).FormatResult(
				fmt.Sprintf("set %s = %s in %s", args[0], args[1], path),
				map[string]string{"path": path, "key": args[0], "value": args[1]},
			)
		},
	}
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings := a.v.AllSettings()
			if a.asJSON {
				return a.formatter(cmd).FormatResult("", settings)
			}
			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(settings); err != nil {
				return err
			}
			return encoder.Close()
		},
	}
}
