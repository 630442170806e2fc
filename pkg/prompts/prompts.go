// Package prompts assembles the conversion prompt sent to a generation
// provider from embedded markdown templates and per-schema specification
// snippets.
package prompts

import (
	"embed"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed templates/system.md
var systemPromptContent string

//go:embed templates/prompt.md
var conversionPromptTemplate string

//go:embed specs/*.md
var schemaSpecFiles embed.FS

// BuildConversionPrompt returns the system instruction and task prompt for
// converting inputConfig to the named target schema.
func BuildConversionPrompt(targetSchema, inputConfig string) (system, prompt string, err error) {
	spec, err := schemaSpec(targetSchema)
	if err != nil {
		return "", "", err
	}
	prompt = conversionPromptTemplate
	prompt = strings.ReplaceAll(prompt, "{target_schema}", targetSchema)
	prompt = strings.ReplaceAll(prompt, "{schema_spec}", spec)
	prompt = strings.ReplaceAll(prompt, "{input_config}", inputConfig)
	return strings.TrimSpace(systemPromptContent), strings.TrimSpace(prompt), nil
}

func schemaSpec(targetSchema string) (string, error) {
	data, err := schemaSpecFiles.ReadFile("specs/" + strings.ToLower(targetSchema) + ".md")
	if err != nil {
		return "", fmt.Errorf("no specification for target schema %q: %w", targetSchema, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("specification for target schema %q is empty", targetSchema)
	}
	return string(data), nil
}
