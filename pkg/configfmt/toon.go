package configfmt

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// TOON is a compact tabular notation used to shrink LLM input payloads.
// It is never produced as a final output dialect. The codec covers the
// subset the conversion pipeline emits:
//
//	key: value
//	key:              nested block
//	key[N]: a,b,c     inline scalar list
//	key[N]:           list of N "- item" entries
//	key[N]{f1,f2}:    N rows of comma-separated field values
//
// Decoding is strict: declared lengths must match, every line must fit one
// of the forms above. Strictness is what keeps prose and YAML documents from
// classifying as TOON.

const toonIndent = 2

var toonKeyRe = regexp.MustCompile(`^([A-Za-z0-9_$.-]+|"(?:[^"\\]|\\.)*")(\[(\d+)\])?(\{([^}]*)\})?:(.*)$`)

type toonLine struct {
	indent int
	text   string
}

type toonDecoder struct {
	lines []toonLine
	pos   int
}

// DecodeTOON parses a TOON document into map[string]any / []any containers.
func DecodeTOON(content string) (any, error) {
	d := &toonDecoder{}
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := 0
		for indent < len(line) && line[indent] == ' ' {
			indent++
		}
		if strings.HasPrefix(line[indent:], "\t") || indent%toonIndent != 0 {
			return nil, fmt.Errorf("toon: bad indentation at %q", line)
		}
		d.lines = append(d.lines, toonLine{indent / toonIndent, line[indent:]})
	}
	if len(d.lines) == 0 {
		return nil, fmt.Errorf("toon: empty document")
	}

	// A document is either a root array header or a map block.
	if strings.HasPrefix(d.lines[0].text, "[") {
		v, err := d.parseEntryValue("", d.lines[0], 0)
		if err != nil {
			return nil, err
		}
		if d.pos != len(d.lines) {
			return nil, fmt.Errorf("toon: trailing content after root array")
		}
		return v, nil
	}
	v, err := d.parseMap(0)
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.lines) {
		return nil, fmt.Errorf("toon: unexpected line %q", d.lines[d.pos].text)
	}
	return v, nil
}

func (d *toonDecoder) parseMap(indent int) (map[string]any, error) {
	m := map[string]any{}
	for d.pos < len(d.lines) && d.lines[d.pos].indent == indent {
		line := d.lines[d.pos]
		match := toonKeyRe.FindStringSubmatch(line.text)
		if match == nil {
			return nil, fmt.Errorf("toon: not a key line: %q", line.text)
		}
		key := match[1]
		if strings.HasPrefix(key, `"`) {
			unquoted, err := strconv.Unquote(key)
			if err != nil {
				return nil, fmt.Errorf("toon: bad key %q: %w", key, err)
			}
			key = unquoted
		}
		d.pos++
		v, err := d.parseEntryValue(key, line, indent)
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
	if d.pos < len(d.lines) && d.lines[d.pos].indent > indent {
		return nil, fmt.Errorf("toon: unexpected indent at %q", d.lines[d.pos].text)
	}
	return m, nil
}

// parseEntryValue consumes the value of a single entry whose header line has
// already been matched. The cursor has been advanced past the header except
// for root arrays, where the header is the current line.
func (d *toonDecoder) parseEntryValue(key string, line toonLine, indent int) (any, error) {
	match := toonKeyRe.FindStringSubmatch(line.text)
	if match == nil {
		// Root array header: [N]: ... with no key.
		match = regexp.MustCompile(`^(\[(\d+)\])(\{([^}]*)\})?:(.*)$`).FindStringSubmatch(line.text)
		if match == nil {
			return nil, fmt.Errorf("toon: malformed line %q", line.text)
		}
		d.pos++
		match = []string{match[0], "", match[1], match[2], match[3], match[4], match[5]}
	}
	lengthStr, fields, rest := match[3], match[5], strings.TrimSpace(match[6])

	if lengthStr == "" {
		if rest != "" {
			return parseTOONScalar(rest)
		}
		// Nested block; absent children mean an empty map.
		if d.pos < len(d.lines) && d.lines[d.pos].indent == indent+1 {
			return d.parseMap(indent + 1)
		}
		return map[string]any{}, nil
	}

	length, err := strconv.Atoi(lengthStr)
	if err != nil {
		return nil, fmt.Errorf("toon: bad length in %q", line.text)
	}

	if match[4] != "" {
		return d.parseTabular(fields, length, indent+1)
	}
	if rest != "" || length == 0 {
		items, err := splitTOONRow(rest)
		if err != nil {
			return nil, err
		}
		if rest == "" {
			items = nil
		}
		if len(items) != length {
			return nil, fmt.Errorf("toon: list %q declares %d items, found %d", key, length, len(items))
		}
		out := make([]any, 0, length)
		for _, item := range items {
			v, err := parseTOONScalar(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	return d.parseItems(length, indent+1)
}

func (d *toonDecoder) parseItems(length, indent int) ([]any, error) {
	out := make([]any, 0, length)
	for i := 0; i < length; i++ {
		if d.pos >= len(d.lines) || d.lines[d.pos].indent != indent {
			return nil, fmt.Errorf("toon: expected %d list items, found %d", length, i)
		}
		text := d.lines[d.pos].text
		if text == "-" {
			d.pos++
			m, err := d.parseMap(indent + 1)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
			continue
		}
		rest, ok := strings.CutPrefix(text, "- ")
		if !ok {
			return nil, fmt.Errorf("toon: expected list item, got %q", text)
		}
		v, err := parseTOONScalar(strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		d.pos++
		out = append(out, v)
	}
	return out, nil
}

func (d *toonDecoder) parseTabular(fieldSpec string, length, indent int) ([]any, error) {
	fields, err := splitTOONRow(fieldSpec)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, length)
	for i := 0; i < length; i++ {
		if d.pos >= len(d.lines) || d.lines[d.pos].indent != indent {
			return nil, fmt.Errorf("toon: expected %d rows, found %d", length, i)
		}
		cells, err := splitTOONRow(d.lines[d.pos].text)
		if err != nil {
			return nil, err
		}
		if len(cells) != len(fields) {
			return nil, fmt.Errorf("toon: row %q has %d cells, want %d", d.lines[d.pos].text, len(cells), len(fields))
		}
		row := make(map[string]any, len(fields))
		for j, field := range fields {
			v, err := parseTOONScalar(cells[j])
			if err != nil {
				return nil, err
			}
			row[strings.TrimSpace(field)] = v
		}
		d.pos++
		out = append(out, row)
	}
	return out, nil
}

// splitTOONRow splits comma-separated cells, honoring double quotes.
func splitTOONRow(row string) ([]string, error) {
	var cells []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(row); i++ {
		c := row[i]
		switch {
		case c == '"' && (i == 0 || row[i-1] != '\\'):
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == ',' && !inQuote:
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("toon: unterminated quote in %q", row)
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells, nil
}

func parseTOONScalar(s string) (any, error) {
	switch s {
	case "null", "":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if strings.HasPrefix(s, `"`) {
		v, err := strconv.Unquote(s)
		if err != nil {
			return nil, fmt.Errorf("toon: bad string %q: %w", s, err)
		}
		return v, nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n, nil
	}
	return s, nil
}

// EncodeTOON renders a container in the compact notation. Containers the
// subset cannot express (lists nested directly inside lists) return an
// error; callers fall back to the original payload.
func EncodeTOON(v any) (string, error) {
	var sb strings.Builder
	switch t := v.(type) {
	case map[string]any:
		if err := encodeTOONMap(&sb, t, 0); err != nil {
			return "", err
		}
	case []any:
		if err := encodeTOONList(&sb, "", t, 0); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("toon: root must be a map or list, got %T", v)
	}
	return sb.String(), nil
}

func encodeTOONMap(sb *strings.Builder, m map[string]any, indent int) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pad := strings.Repeat(" ", indent*toonIndent)
	for _, k := range keys {
		switch v := m[k].(type) {
		case map[string]any:
			fmt.Fprintf(sb, "%s%s:\n", pad, encodeTOONKey(k))
			if err := encodeTOONMap(sb, v, indent+1); err != nil {
				return err
			}
		case []any:
			if err := encodeTOONList(sb, encodeTOONKey(k), v, indent); err != nil {
				return err
			}
		default:
			fmt.Fprintf(sb, "%s%s: %s\n", pad, encodeTOONKey(k), encodeTOONScalar(v))
		}
	}
	return nil
}

func encodeTOONList(sb *strings.Builder, key string, list []any, indent int) error {
	pad := strings.Repeat(" ", indent*toonIndent)
	if allScalars(list) {
		cells := make([]string, len(list))
		for i, v := range list {
			cells[i] = encodeTOONScalar(v)
		}
		sep := ""
		if len(cells) > 0 {
			sep = " "
		}
		fmt.Fprintf(sb, "%s%s[%d]:%s%s\n", pad, key, len(list), sep, strings.Join(cells, ","))
		return nil
	}
	if fields, ok := tabularFields(list); ok {
		fmt.Fprintf(sb, "%s%s[%d]{%s}:\n", pad, key, len(list), strings.Join(fields, ","))
		rowPad := strings.Repeat(" ", (indent+1)*toonIndent)
		for _, item := range list {
			row := item.(map[string]any)
			cells := make([]string, len(fields))
			for i, field := range fields {
				cells[i] = encodeTOONScalar(row[field])
			}
			fmt.Fprintf(sb, "%s%s\n", rowPad, strings.Join(cells, ","))
		}
		return nil
	}
	fmt.Fprintf(sb, "%s%s[%d]:\n", pad, key, len(list))
	itemPad := strings.Repeat(" ", (indent+1)*toonIndent)
	for _, item := range list {
		switch v := item.(type) {
		case map[string]any:
			fmt.Fprintf(sb, "%s-\n", itemPad)
			if err := encodeTOONMap(sb, v, indent+2); err != nil {
				return err
			}
		case []any:
			return fmt.Errorf("toon: nested lists are not representable")
		default:
			fmt.Fprintf(sb, "%s- %s\n", itemPad, encodeTOONScalar(v))
		}
	}
	return nil
}

func allScalars(list []any) bool {
	for _, v := range list {
		switch v.(type) {
		case map[string]any, []any:
			return false
		}
	}
	return true
}

// tabularFields reports whether every item is a flat map over the same
// scalar-valued keys, yielding the shared field list in sorted order.
func tabularFields(list []any) ([]string, bool) {
	if len(list) == 0 {
		return nil, false
	}
	var fields []string
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		keys := make([]string, 0, len(m))
		for k, v := range m {
			switch v.(type) {
			case map[string]any, []any:
				return nil, false
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if i == 0 {
			fields = keys
			continue
		}
		if len(keys) != len(fields) {
			return nil, false
		}
		for j := range keys {
			if keys[j] != fields[j] {
				return nil, false
			}
		}
	}
	return fields, true
}

var toonBareRe = regexp.MustCompile(`^[A-Za-z0-9_$./ -]*[A-Za-z_$./-][A-Za-z0-9_$./ -]*$`)

func encodeTOONKey(k string) string {
	if regexp.MustCompile(`^[A-Za-z0-9_$.-]+$`).MatchString(k) {
		return k
	}
	return strconv.Quote(k)
}

func encodeTOONScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case string:
		if t == "true" || t == "false" || t == "null" || t == "" {
			return strconv.Quote(t)
		}
		if _, err := strconv.ParseFloat(t, 64); err == nil {
			return strconv.Quote(t)
		}
		if !toonBareRe.MatchString(t) || t != strings.TrimSpace(t) {
			return strconv.Quote(t)
		}
		return t
	default:
		return strconv.Quote(fmt.Sprint(t))
	}
}
