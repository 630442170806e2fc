package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/confmorph/confmorph/pkg/configfmt"
	"github.com/confmorph/confmorph/pkg/llm"
	"github.com/confmorph/confmorph/pkg/prompts"
)

// Generator produces model output for a generation request.
type Generator interface {
	Generate(ctx context.Context, req llm.GenerateRequest) (string, error)
}

// Options tune a single conversion.
type Options struct {
	// EncodeTOON re-encodes parseable input as TOON before prompting,
	// which trims token usage on large structured configs.
	EncodeTOON bool
	// Model overrides the provider's default model for this conversion.
	Model string
	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int64
	// Temperature is the sampling temperature.
	Temperature float64
}

// Transformer converts configuration content between schema dialects
// by delegating the semantic mapping to a language model.
type Transformer struct {
	gen Generator
}

func New(gen Generator) *Transformer {
	return &Transformer{gen: gen}
}

// Result carries the converted content and how the input was presented.
type Result struct {
	Content     string
	InputFormat configfmt.ConfigFormat
	SentAsTOON  bool
}

// Convert translates content into the target schema's dialect.
func (t *Transformer) Convert(ctx context.Context, content string, target Schema, opts Options) (*Result, error) {
	format := configfmt.Detect(content)
	payload := content
	sentTOON := false

	if opts.EncodeTOON && format != configfmt.FormatText {
		if container, ok := configfmt.ParseContainer(content); ok {
			if encoded, err := configfmt.EncodeTOON(container); err == nil {
				payload = encoded
				sentTOON = true
			}
		}
	}

	system, prompt, err := prompts.BuildConversionPrompt(target.Name, payload)
	if err != nil {
		return nil, err
	}

	raw, err := t.gen.Generate(ctx, llm.GenerateRequest{
		Prompt:      prompt,
		System:      system,
		Model:       opts.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return nil, err
	}

	cleaned := CleanOutput(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("model returned empty output for schema %q", target.Name)
	}

	final, err := coerceFormat(cleaned, target.OutputFormat)
	if err != nil {
		return nil, err
	}

	return &Result{Content: final, InputFormat: format, SentAsTOON: sentTOON}, nil
}

// CleanOutput strips markdown code fences and unwraps a single-element
// JSON array, both common artifacts of model responses.
func CleanOutput(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		lines := strings.Split(s, "\n")
		// Drop the opening fence line, with or without a language tag.
		lines = lines[1:]
		for i, line := range lines {
			if strings.TrimSpace(line) == "```" {
				lines = lines[:i]
				break
			}
		}
		s = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	if strings.HasPrefix(s, "[") {
		var arr []json.RawMessage
		if err := json.Unmarshal([]byte(s), &arr); err == nil && len(arr) == 1 {
			var inner any
			if err := json.Unmarshal(arr[0], &inner); err == nil {
				if _, ok := inner.(map[string]any); ok {
					if pretty, err := json.MarshalIndent(inner, "", "  "); err == nil {
						return string(pretty)
					}
				}
			}
		}
	}
	return s
}

// coerceFormat reserializes model output into the schema's file format.
// The model is asked for JSON, so TOML targets need a conversion pass.
func coerceFormat(content string, target configfmt.ConfigFormat) (string, error) {
	if target == configfmt.FormatJSON {
		return content, nil
	}
	converted, err := configfmt.Reserialize(content, target)
	if err != nil {
		return "", fmt.Errorf("reserializing output as %s: %w", target, err)
	}
	return converted, nil
}
