package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Slicer/Slicer-sub006/internal/presentation"
)

func runModulesJSON(t *testing.T, args ...string) []presentation.ModuleDTO {
	t.Helper()
	out, err := runCmd(t, append([]string{"modules", "--json"}, args...)...)
	require.NoError(t, err)
	var dtos []presentation.ModuleDTO
	require.NoError(t, json.Unmarshal([]byte(out), &dtos))
	return dtos
}

func keys(dtos []presentation.ModuleDTO) []string {
	out := make([]string, len(dtos))
	for i, d := range dtos {
		out[i] = d.Key
	}
	return out
}

func TestModules_HidesHiddenByDefault(t *testing.T) {
	isolate(t)

	visible := keys(runModulesJSON(t))
	require.NotContains(t, visible, "core")
	require.Contains(t, visible, "volumes")

	all := keys(runModulesJSON(t, "--all"))
	require.Contains(t, all, "core")
	require.Len(t, all, len(visible)+1)
}

func TestModules_Category(t *testing.T) {
	isolate(t)

	dtos := runModulesJSON(t, "--category", "Segmentation")
	require.Equal(t, []string{"segmentations"}, keys(dtos))
	require.Contains(t, dtos[0].NodeTypes, "Segmentation")

	_, err := runCmd(t, "modules", "--category", "Nope")
	require.ErrorContains(t, err, `no modules in category "Nope"`)
}

func TestModules_LoadOrder(t *testing.T) {
	isolate(t)

	dtos := runModulesJSON(t, "--order", "--all")
	pos := make(map[string]int, len(dtos))
	for i, d := range dtos {
		pos[d.Key] = i
	}
	require.Equal(t, "core", dtos[0].Key)
	for _, d := range dtos {
		for _, dep := range d.Dependencies {
			require.Less(t, pos[dep], pos[d.Key], "%s loads before its dependency %s", d.Key, dep)
		}
	}
}

func TestModules_Table(t *testing.T) {
	isolate(t)

	out, err := runCmd(t, "modules")
	require.NoError(t, err)
	require.Contains(t, out, "volumes")
	require.Contains(t, out, "ScalarVolume")
}
