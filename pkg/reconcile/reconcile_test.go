package reconcile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/confmorph/confmorph/pkg/configfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readJSON(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestParseAction(t *testing.T) {
	for _, s := range []string{"overwrite", "skip", "replace", "update"} {
		a, err := ParseAction(s)
		require.NoError(t, err)
		assert.Equal(t, Action(s), a)
	}
	_, err := ParseAction("merge")
	assert.Error(t, err)
}

func TestReconcileNoPathReturnsBytesOnly(t *testing.T) {
	content := []byte(`{"a": 1}`)
	res, err := New().Reconcile(content, "", ActionUpdate)
	require.NoError(t, err)
	assert.Equal(t, content, res.Bytes)
	assert.False(t, res.Written)
	assert.Equal(t, configfmt.FormatJSON, res.Format)
}

func TestReconcileCreatesMissingDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "dir", "mcp.json")
	content := []byte(`{"a": 1}`)

	res, err := New().Reconcile(content, dest, ActionSkip)
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.False(t, res.Skipped)

	onDisk, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)
}

func TestReconcileSkipLeavesFileUntouched(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "mcp.json")
	writeFile(t, dest, `{"keep": "me"}`)

	res, err := New().Reconcile([]byte(`{"new": true}`), dest, ActionSkip)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.False(t, res.Written)
	assert.Nil(t, res.Bytes)
	assert.Equal(t, []byte(`{"keep": "me"}`), res.Previous)

	onDisk, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"keep": "me"}`), onDisk, "skip must leave the file byte-for-byte unchanged")
}

func TestReconcileOverwrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "mcp.json")
	writeFile(t, dest, `{"old": 1}`)

	content := []byte(`{"new": 2}`)
	res, err := New().Reconcile(content, dest, ActionOverwrite)
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, []byte(`{"old": 1}`), res.Previous)

	onDisk, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)
}

func TestReconcileReplaceShallowMerge(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "mcp.json")
	writeFile(t, dest, `{"a": {"x": 1, "y": 2}, "b": 5}`)

	res, err := New().Reconcile([]byte(`{"a": {"y": 9, "z": 3}, "c": 7}`), dest, ActionReplace)
	require.NoError(t, err)

	got := readJSON(t, res.Bytes)
	// Replace swaps the whole value of "a": the existing "x" is gone.
	assert.Equal(t, map[string]any{
		"a": map[string]any{"y": 9.0, "z": 3.0},
		"b": 5.0,
		"c": 7.0,
	}, got)
}

func TestReconcileUpdateDeepMerge(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "mcp.json")
	writeFile(t, dest, `{"a": {"x": 1, "y": 2}, "b": 5}`)

	res, err := New().Reconcile([]byte(`{"a": {"y": 9, "z": 3}, "c": 7}`), dest, ActionUpdate)
	require.NoError(t, err)

	got := readJSON(t, res.Bytes)
	// Update merges inside "a": existing "x" survives, "y" is replaced.
	assert.Equal(t, map[string]any{
		"a": map[string]any{"x": 1.0, "y": 9.0, "z": 3.0},
		"b": 5.0,
		"c": 7.0,
	}, got)
}

func TestReconcileUpdateNonMappingConflictReplacesWholeValue(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "mcp.json")
	writeFile(t, dest, `{"a": {"x": 1}, "b": 5}`)

	res, err := New().Reconcile([]byte(`{"a": "flattened"}`), dest, ActionUpdate)
	require.NoError(t, err)

	got := readJSON(t, res.Bytes)
	assert.Equal(t, map[string]any{"a": "flattened", "b": 5.0}, got)
}

func TestReconcileMergeKeepsDestinationDialect(t *testing.T) {
	t.Run("yaml destination stays yaml", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "servers.yaml")
		writeFile(t, dest, "servers:\n  - fs\nkeep: \"yes please\"\n")

		res, err := New().Reconcile([]byte(`{"added": "value"}`), dest, ActionUpdate)
		require.NoError(t, err)
		assert.Equal(t, configfmt.FormatYAML, res.Format)

		parsed, ok := configfmt.ParseContainer(string(res.Bytes))
		require.True(t, ok)
		m := parsed.(map[string]any)
		assert.Equal(t, "value", m["added"])
		assert.Equal(t, "yes please", m["keep"])
	})

	t.Run("toml destination stays toml", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "config.toml")
		writeFile(t, dest, "keep = \"old\"\n")

		res, err := New().Reconcile([]byte(`{"added": "value"}`), dest, ActionReplace)
		require.NoError(t, err)
		assert.Equal(t, configfmt.FormatTOML, res.Format)
		assert.Contains(t, string(res.Bytes), `keep = "old"`)
		assert.Contains(t, string(res.Bytes), `added = "value"`)
	})
}

func TestReconcileMergeTypeMismatches(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		incoming string
	}{
		{
			name:     "existing is prose",
			existing: "not a structured document at all",
			incoming: `{"a": 1}`,
		},
		{
			name:     "existing root is a list",
			existing: `[1, 2, 3]`,
			incoming: `{"a": 1}`,
		},
		{
			name:     "generated content is not json",
			existing: `{"a": 1}`,
			incoming: "command = \"npx\"",
		},
		{
			name:     "generated root is a list",
			existing: `{"a": 1}`,
			incoming: `[{"a": 1}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "dest")
			writeFile(t, dest, tt.existing)

			_, err := New().Reconcile([]byte(tt.incoming), dest, ActionUpdate)
			var mismatch *MergeTypeMismatchError
			require.ErrorAs(t, err, &mismatch)

			onDisk, readErr := os.ReadFile(dest)
			require.NoError(t, readErr)
			assert.Equal(t, tt.existing, string(onDisk), "a failed merge must not touch the destination")
		})
	}
}

func TestReconcileUnknownActionOnExistingFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "mcp.json")
	writeFile(t, dest, `{"a": 1}`)

	_, err := New().Reconcile([]byte(`{"b": 2}`), dest, Action("bogus"))
	var conflict *OutputConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, dest, conflict.Path)
}

func TestMergeShallow(t *testing.T) {
	existing := map[string]any{"a": 1, "b": 2}
	incoming := map[string]any{"b": 3, "c": 4}

	got := mergeShallow(existing, incoming)
	assert.Equal(t, map[string]any{"a": 1, "b": 3, "c": 4}, got)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, existing, "inputs must not be mutated")
}

func TestMergeDeepDoesNotMutateInputs(t *testing.T) {
	existing := map[string]any{"a": map[string]any{"x": 1}}
	incoming := map[string]any{"a": map[string]any{"y": 2}}

	got := mergeDeep(existing, incoming)
	assert.Equal(t, map[string]any{"a": map[string]any{"x": 1, "y": 2}}, got)
	assert.Equal(t, map[string]any{"a": map[string]any{"x": 1}}, existing)
	assert.Equal(t, map[string]any{"a": map[string]any{"y": 2}}, incoming)
}
