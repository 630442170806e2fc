package transform

import (
	"path/filepath"
	"strings"

	"github.com/confmorph/confmorph/pkg/configfmt"
)

// Schema describes one target configuration dialect.
type Schema struct {
	// Name is the canonical schema name, matching an embedded spec snippet.
	Name string
	// DefaultOutput is the conventional location of this schema's file,
	// relative to the project root.
	DefaultOutput string
	// OutputFormat is the serialization dialect of the final file.
	OutputFormat configfmt.ConfigFormat
}

var schemas = []Schema{
	{Name: "claude", DefaultOutput: "mcp.json", OutputFormat: configfmt.FormatJSON},
	{Name: "gemini", DefaultOutput: filepath.Join(".gemini", "mcp.json"), OutputFormat: configfmt.FormatJSON},
	{Name: "codex", DefaultOutput: ".mcp.json", OutputFormat: configfmt.FormatJSON},
	{Name: "vscode", DefaultOutput: filepath.Join(".vscode", "mcp.json"), OutputFormat: configfmt.FormatJSON},
	{Name: "opencode", DefaultOutput: filepath.Join(".opencode", "opencode.json"), OutputFormat: configfmt.FormatJSON},
	{Name: "mistral", DefaultOutput: filepath.Join(".vibe", "config.toml"), OutputFormat: configfmt.FormatTOML},
	{Name: "qwen", DefaultOutput: filepath.Join(".qwen", "settings.json"), OutputFormat: configfmt.FormatJSON},
}

var schemaAliases = map[string]string{
	"anthropic":          "claude",
	"claude-code":        "claude",
	"github-copilot-cli": "vscode",
	"copilot":            "vscode",
	"vibe":               "mistral",
}

// LookupSchema resolves a schema name or alias.
func LookupSchema(name string) (Schema, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := schemaAliases[key]; ok {
		key = canonical
	}
	for _, s := range schemas {
		if s.Name == key {
			return s, true
		}
	}
	return Schema{}, false
}

// SchemaNames lists the canonical schema names.
func SchemaNames() []string {
	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = s.Name
	}
	return names
}
