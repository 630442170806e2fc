package configfmt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Serialize renders a parsed container in the given output dialect.
// TOON is an input-only payload notation and text has no serializer, so
// both are rejected here.
func Serialize(v any, format ConfigFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("serialize json: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("serialize yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("serialize yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, fmt.Errorf("serialize toml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("cannot serialize to %q", format)
	}
}

// Reserialize parses content and renders it in the target dialect. When the
// content does not parse to a container it is returned unchanged: a provider
// response explaining why conversion failed is more useful verbatim than as
// a hard error.
func Reserialize(content string, target ConfigFormat) (string, error) {
	if Detect(content) == target {
		return content, nil
	}
	v, ok := ParseContainer(content)
	if !ok {
		return content, nil
	}
	out, err := Serialize(v, target)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
