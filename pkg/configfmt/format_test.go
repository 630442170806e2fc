package configfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    ConfigFormat
	}{
		{
			name:    "empty string",
			content: "",
			want:    FormatText,
		},
		{
			name:    "whitespace only",
			content: "  \n\t  \n",
			want:    FormatText,
		},
		{
			name:    "json object",
			content: `{"mcpServers": {"fs": {"command": "npx"}}}`,
			want:    FormatJSON,
		},
		{
			name:    "json array",
			content: `[{"name": "fs"}, {"name": "git"}]`,
			want:    FormatJSON,
		},
		{
			name:    "json scalar is not a container",
			content: `42`,
			want:    FormatText,
		},
		{
			name:    "json string scalar is not a container",
			content: `"hello"`,
			want:    FormatText,
		},
		{
			name:    "toml table",
			content: "[servers.fs]\ncommand = \"npx\"\nargs = [\"-y\", \"pkg\"]\n",
			want:    FormatTOML,
		},
		{
			name:    "toml top-level keys",
			content: "command = \"npx\"\nenabled = true\n",
			want:    FormatTOML,
		},
		{
			name:    "toon flat map",
			content: "name: fs\ncommand: npx\n",
			want:    FormatTOON,
		},
		{
			name:    "toon sized list",
			content: "args[2]: -y,pkg\n",
			want:    FormatTOON,
		},
		{
			name:    "yaml block list is not toon",
			content: "servers:\n  - name: fs\n  - name: git\n",
			want:    FormatYAML,
		},
		{
			name:    "nested block map classifies toon before yaml",
			content: "server:\n  url: \"http://localhost:8080\"\n  retries: 3\n",
			want:    FormatTOON,
		},
		{
			name:    "prose",
			content: "Convert my filesystem server config to the vscode layout please.",
			want:    FormatText,
		},
		{
			name:    "multiline prose",
			content: "This is a note.\nIt spans two lines and is not a config.\n",
			want:    FormatText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.content))
		})
	}
}

func TestParseContainerReturnsCanonicalMaps(t *testing.T) {
	v, ok := ParseContainer("servers:\n  - name: fs\n    port: 1\n")
	require.True(t, ok)

	root, ok := v.(map[string]any)
	require.True(t, ok, "yaml root should normalize to map[string]any")
	list, ok := root["servers"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	_, ok = list[0].(map[string]any)
	assert.True(t, ok, "nested yaml maps should normalize to map[string]any")
}

func TestParseContainerRejectsScalars(t *testing.T) {
	for _, content := range []string{"", "   ", "true", "3.14", `"quoted"`} {
		_, ok := ParseContainer(content)
		assert.False(t, ok, "content %q should not parse to a container", content)
	}
}
