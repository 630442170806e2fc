package configfmt

import (
	"encoding/json"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ConfigFormat identifies the serialization dialect of a configuration blob.
type ConfigFormat string

const (
	FormatJSON ConfigFormat = "json"
	FormatYAML ConfigFormat = "yaml"
	FormatTOML ConfigFormat = "toml"
	FormatTOON ConfigFormat = "toon"
	FormatText ConfigFormat = "text"
)

// parseAttempt is one step of the detection cascade. Each parser reports
// success only when the result is a container (map or slice); scalars are
// rejected so that prose and bare JSON values fall through to the next step.
type parseAttempt struct {
	format ConfigFormat
	parse  func(string) (any, bool)
}

// Ordered strict-to-lenient. YAML must come last: its parser happily reads
// arbitrary prose as a scalar string, and a valid TOML document is often
// also parseable as YAML.
var attempts = []parseAttempt{
	{FormatJSON, parseJSON},
	{FormatTOML, parseTOML},
	{FormatTOON, parseTOON},
	{FormatYAML, parseYAML},
}

// Detect classifies the serialization dialect of content. It never fails:
// anything that no parser accepts as a container is classified as text.
func Detect(content string) ConfigFormat {
	if strings.TrimSpace(content) == "" {
		return FormatText
	}
	for _, attempt := range attempts {
		if _, ok := attempt.parse(content); ok {
			return attempt.format
		}
	}
	return FormatText
}

// ParseContainer runs the same cascade as Detect but returns the parsed
// container (map[string]any or []any), avoiding a second parse for callers
// that need both the dialect and the value.
func ParseContainer(content string) (any, bool) {
	if strings.TrimSpace(content) == "" {
		return nil, false
	}
	for _, attempt := range attempts {
		if v, ok := attempt.parse(content); ok {
			return v, true
		}
	}
	return nil, false
}

func parseJSON(content string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return nil, false
	}
	return asContainer(v)
}

func parseTOML(content string) (any, bool) {
	var m map[string]any
	if err := toml.Unmarshal([]byte(content), &m); err != nil {
		return nil, false
	}
	return normalize(m), true
}

func parseTOON(content string) (any, bool) {
	v, err := DecodeTOON(content)
	if err != nil {
		return nil, false
	}
	return asContainer(v)
}

func parseYAML(content string) (any, bool) {
	var v any
	if err := yaml.Unmarshal([]byte(content), &v); err != nil {
		return nil, false
	}
	return asContainer(normalize(v))
}

func asContainer(v any) (any, bool) {
	switch v.(type) {
	case map[string]any, []any:
		return v, true
	default:
		return nil, false
	}
}

// normalize rewrites parser-specific container types into the canonical
// map[string]any / []any shape shared by every dialect.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			if ks, ok := k.(string); ok {
				m[ks] = normalize(e)
			}
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	case []map[string]any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = normalize(e)
		}
		return s
	default:
		return v
	}
}
