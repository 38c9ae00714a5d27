package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigInit_UserDir(t *testing.T) {
	dir := isolate(t)
	want := filepath.Join(dir, ".config", "scenectl", "config.yaml")

	out, err := runCmd(t, "config", "init")
	require.NoError(t, err)
	require.Contains(t, out, "wrote "+want)
	require.FileExists(t, want)

	_, err = runCmd(t, "config", "init")
	require.ErrorContains(t, err, "already exists")

	_, err = runCmd(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigInit_Local(t *testing.T) {
	dir := isolate(t)

	_, err := runCmd(t, "config", "init", "--local")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, localConfigPath))
}

func TestConfigSetAndShow(t *testing.T) {
	isolate(t)

	_, err := runCmd(t, "config", "init")
	require.NoError(t, err)

	out, err := runCmd(t, "config", "set", "export.format", "json")
	require.NoError(t, err)
	require.Contains(t, out, "set export.format = json")

	_, err = runCmd(t, "config", "set", "cache.ttl", "1h")
	require.NoError(t, err)

	out, err = runCmd(t, "config", "show")
	require.NoError(t, err)
	var settings map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &settings))
	export := settings["export"].(map[string]any)
	require.Equal(t, "json", export["format"])

	out, err = runCmd(t, "config", "show", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &settings))
	require.Equal(t, "1h", settings["cache"].(map[string]any)["ttl"])
}

func TestConfigSet_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("# custom\nlog:\n  level: info\n"), 0o600))

	_, err := runCmd(t, "--config", cfgPath, "config", "set", "log.level", "debug")
	require.NoError(t, err)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "# custom")
	require.Contains(t, string(data), "level: debug")
}

func TestConfigSet_InvalidKey(t *testing.T) {
	isolate(t)
	_, err := runCmd(t, "config", "init")
	require.NoError(t, err)

	_, err = runCmd(t, "config", "set", "", "x")
	require.ErrorContains(t, err, "invalid key")
}
