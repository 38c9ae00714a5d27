package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Slicer/Slicer-sub006/internal/scene"
	"github.com/Slicer/Slicer-sub006/internal/scenefile"
	"github.com/Slicer/Slicer-sub006/internal/testutil"
)

// syncBuffer is written by the command goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// isolate points HOME, the working directory and the store at a temp dir so
// no user configuration leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("SCENECTL_STORE_PATH", filepath.Join(dir, "store", "snapshots.db"))
	t.Chdir(dir)
	return dir
}

func runCmdContext(ctx context.Context, args ...string) (stdout, stderr string, err error) {
	rootCmd, a := newRootCmd()
	var out, errOut syncBuffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(ctx)
	a.close(err)
	return out.String(), errOut.String(), err
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCmdContext(context.Background(), args...)
	return out, err
}

func writeScene(t *testing.T, path string, snap *scene.Snapshot) string {
	t.Helper()
	require.NoError(t, scenefile.WriteFile(context.Background(), path, snap))
	return path
}

func headScene(t *testing.T) *scene.Snapshot {
	return testutil.NewBuilder(t).WithHeadScene().Snapshot()
}

func TestRoot_Help(t *testing.T) {
	isolate(t)
	out, err := runCmd(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"inspect", "convert", "diff", "modules", "snapshot", "watch", "config"} {
		require.Contains(t, out, sub)
	}
}

func TestRoot_InvalidConfig(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("export:\n  format: xml\n"), 0o600))

	_, err := runCmd(t, "--config", cfgPath, "modules")
	require.ErrorContains(t, err, "export.format")
}

func TestRoot_MissingExplicitConfig(t *testing.T) {
	dir := isolate(t)
	_, err := runCmd(t, "--config", filepath.Join(dir, "nope.yaml"), "modules")
	require.ErrorContains(t, err, "reading config")
}

func TestRoot_LocalConfigIsUsed(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".scenectl"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, localConfigPath), []byte("export:\n  format: json\n"), 0o600))

	out, err := runCmd(t, "config", "show", "--json")
	require.NoError(t, err)
	var settings map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &settings))
	require.Equal(t, "json", settings["export"].(map[string]any)["format"])
}

func TestRoot_LogStderr(t *testing.T) {
	dir := isolate(t)
	path := writeScene(t, filepath.Join(dir, "head.yaml"), headScene(t))

	_, stderr, err := runCmdContext(context.Background(), "--log-stderr", "inspect", path)
	require.NoError(t, err)
	require.Contains(t, stderr, "[DEBUG]")
	require.Contains(t, stderr, "Loaded scene")
}

func TestRoot_LogFileFromConfig(t *testing.T) {
	dir := isolate(t)
	logPath := filepath.Join(dir, "logs", "scenectl.log")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  enabled: true\n  level: debug\n  path: "+logPath+"\n"), 0o600))
	path := writeScene(t, filepath.Join(dir, "head.yaml"), headScene(t))

	_, err := runCmd(t, "--config", cfgPath, "inspect", path)
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "Loaded scene")
}

func TestRoot_TracingToFile(t *testing.T) {
	dir := isolate(t)
	tracePath := filepath.Join(dir, "traces.jsonl")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"tracing:\n  enabled: true\n  exporter: file\n  file_path: "+tracePath+"\n"), 0o600))
	path := writeScene(t, filepath.Join(dir, "head.yaml"), headScene(t))

	_, err := runCmd(t, "--config", cfgPath, "inspect", path)
	require.NoError(t, err)

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	require.Contains(t, string(data), `"name":"cli.inspect"`)
	require.Contains(t, string(data), `"name":"scenefile.read"`)
	require.Contains(t, string(data), `"node_added"`)
}

func TestSetVersion(t *testing.T) {
	prev := version
	t.Cleanup(func() { version = prev })

	SetVersion("1.2.3")
	rootCmd, _ := newRootCmd()
	require.Equal(t, "1.2.3", rootCmd.Version)
}
