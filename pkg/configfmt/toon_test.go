package configfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTOON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    any
		wantErr bool
	}{
		{
			name:    "flat map",
			content: "command: npx\nport: 8080\nenabled: true\n",
			want:    map[string]any{"command": "npx", "port": 8080.0, "enabled": true},
		},
		{
			name:    "nested block",
			content: "server:\n  command: npx\n  port: 8080\n",
			want:    map[string]any{"server": map[string]any{"command": "npx", "port": 8080.0}},
		},
		{
			name:    "inline scalar list",
			content: "args[3]: -y,pkg,--stdio\n",
			want:    map[string]any{"args": []any{"-y", "pkg", "--stdio"}},
		},
		{
			name:    "empty list",
			content: "args[0]:\n",
			want:    map[string]any{"args": []any{}},
		},
		{
			name:    "dash item list",
			content: "servers[2]:\n  - fs\n  - git\n",
			want:    map[string]any{"servers": []any{"fs", "git"}},
		},
		{
			name:    "tabular rows",
			content: "servers[2]{name,port}:\n  fs,3000\n  git,3001\n",
			want: map[string]any{"servers": []any{
				map[string]any{"name": "fs", "port": 3000.0},
				map[string]any{"name": "git", "port": 3001.0},
			}},
		},
		{
			name:    "quoted value with comma",
			content: "args[2]: \"a,b\",c\n",
			want:    map[string]any{"args": []any{"a,b", "c"}},
		},
		{
			name:    "root array",
			content: "[2]: fs,git\n",
			want:    []any{"fs", "git"},
		},
		{
			name:    "null and quoted literals",
			content: "a: null\nb: \"true\"\nc: \"42\"\n",
			want:    map[string]any{"a": nil, "b": "true", "c": "42"},
		},
		{
			name:    "length mismatch",
			content: "args[3]: a,b\n",
			wantErr: true,
		},
		{
			name:    "missing dash items",
			content: "servers[2]:\n  - fs\n",
			wantErr: true,
		},
		{
			name:    "tabular cell count mismatch",
			content: "servers[1]{name,port}:\n  fs\n",
			wantErr: true,
		},
		{
			name:    "yaml style dash line",
			content: "servers:\n  - name: fs\n",
			wantErr: true,
		},
		{
			name:    "prose",
			content: "this is not a config\n",
			wantErr: true,
		},
		{
			name:    "odd indentation",
			content: "server:\n   command: npx\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTOON(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeTOON(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{
			name: "flat map sorts keys",
			in:   map[string]any{"command": "npx", "args": []any{"-y", "pkg"}},
			want: "args[2]: -y,pkg\ncommand: npx\n",
		},
		{
			name: "nested map",
			in:   map[string]any{"server": map[string]any{"port": 8080.0}},
			want: "server:\n  port: 8080\n",
		},
		{
			name: "tabular list",
			in: map[string]any{"servers": []any{
				map[string]any{"name": "fs", "port": 3000.0},
				map[string]any{"name": "git", "port": 3001.0},
			}},
			want: "servers[2]{name,port}:\n  fs,3000\n  git,3001\n",
		},
		{
			name: "numeric looking string is quoted",
			in:   map[string]any{"version": "42"},
			want: "version: \"42\"\n",
		},
		{
			name: "empty list",
			in:   map[string]any{"args": []any{}},
			want: "args[0]:\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeTOON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeTOONRejectsNestedLists(t *testing.T) {
	_, err := EncodeTOON(map[string]any{"rows": []any{[]any{1.0, 2.0}}})
	require.Error(t, err)
}

func TestTOONRoundTrip(t *testing.T) {
	in := map[string]any{
		"mcpServers": map[string]any{
			"fs": map[string]any{
				"command": "npx",
				"args":    []any{"-y", "server-filesystem"},
				"env":     map[string]any{"ROOT": "/tmp/data"},
			},
		},
		"enabled": true,
	}
	encoded, err := EncodeTOON(in)
	require.NoError(t, err)
	decoded, err := DecodeTOON(encoded)
	require.NoError(t, err)
	assert.Equal(t, in, decoded)
}
