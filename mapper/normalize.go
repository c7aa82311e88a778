package mapper

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Fields is the canonical camelCase view of a wire payload. The backend is
// not consistent about snake_case vs camelCase; Normalize resolves that once
// so message templates only ever ask for one spelling.
type Fields map[string]any

// Normalize builds the canonical field view. A camelCase key present on the
// wire wins over its snake_case twin. Keys starting with '_' are transport
// metadata and kept as-is.
func Normalize(payload map[string]any) Fields {
	f := make(Fields, len(payload))
	for k, v := range payload {
		if strings.HasPrefix(k, "_") {
			f[k] = v
			continue
		}
		canonical := camelCase(k)
		if canonical != k {
			if _, direct := payload[canonical]; direct {
				continue
			}
		}
		f[canonical] = v
	}
	return f
}

func camelCase(k string) string {
	if !strings.Contains(k, "_") {
		return k
	}
	parts := strings.Split(k, "_")
	var b strings.Builder
	b.Grow(len(k))
	first := true
	for _, p := range parts {
		if p == "" {
			continue
		}
		if first {
			b.WriteString(p)
			first = false
			continue
		}
		b.WriteString(upperFirst(p))
	}
	return b.String()
}

// String renders scalar values as text. Objects and arrays yield "".
func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// First returns the first non-empty string among keys.
func (f Fields) First(keys ...string) string {
	for _, k := range keys {
		if s := f.String(k); s != "" {
			return s
		}
	}
	return ""
}

func (f Fields) Float(key string) (float64, bool) {
	switch v := f[key].(type) {
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	}
	return 0, false
}

func (f Fields) Int(key string) (int, bool) {
	n, ok := f.Float(key)
	if !ok {
		return 0, false
	}
	return int(n), true
}

// Len is the element count of an array field, or 0.
func (f Fields) Len(key string) int {
	if items, ok := f[key].([]any); ok {
		return len(items)
	}
	return 0
}

// ShortID returns the first 8 runes of an id field.
func (f Fields) ShortID(key string) string {
	return shortID(f.String(key))
}

func shortID(id string) string {
	if utf8.RuneCountInString(id) > 8 {
		return string([]rune(id)[:8])
	}
	return id
}
