package prompt

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/dsjohal14/promptlib/internal/libs/obs"
)

// ParseField decodes a field that may hold either already-structured data or
// its JSON text. nil, blank strings and undecodable JSON yield def. Text is
// always decoded, even when T is string or any. Other values of type T are
// returned unchanged; the rest are re-shaped into T through a JSON round trip,
// falling back to def when that is impossible. ParseField never fails.
func ParseField[T any](value any, def T) T {
	switch v := value.(type) {
	case nil:
		return def
	case string:
		return parseText(v, def)
	case []byte:
		return parseText(string(v), def)
	case json.RawMessage:
		return parseText(string(v), def)
	case T:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return def
		}
		var out T
		if err := json.Unmarshal(raw, &out); err != nil {
			return def
		}
		return out
	}
}

func parseText[T any](text string, def T) T {
	if strings.TrimSpace(text) == "" {
		return def
	}

	var out T
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		logger := obs.Logger("field")
		logger.Warn().
			Str("value", preview(text, 50)).
			Msg("failed to parse JSON field")
		return def
	}
	return out
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// decodeFlexible resolves raw JSON that is either the target shape itself or a
// JSON string containing it. Failures leave def in place. T must be a plain
// type without a custom UnmarshalJSON that calls back into this function.
func decodeFlexible[T any](data []byte, def T) T {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return def
	}
	if strings.HasPrefix(trimmed, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return def
		}
		return ParseField(text, def)
	}
	return ParseField(json.RawMessage(data), def)
}

func nonNil[E any](s []E) []E {
	if s == nil {
		return []E{}
	}
	return s
}

// EncodeJSON renders v as JSON text for storage columns. Nil slices encode as "[]".
func EncodeJSON[E any](v []E) string {
	raw, err := json.Marshal(nonNil(v))
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// Tags is a prompt's tag list. It decodes from a JSON array or from a JSON
// string holding an array, and is never nil after decoding.
type Tags []string

// UnmarshalJSON implements json.Unmarshaler
func (t *Tags) UnmarshalJSON(data []byte) error {
	*t = Tags(nonNil(decodeFlexible(data, []string{})))
	return nil
}

// Variable describes one fillable placeholder of a prompt body.
type Variable struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"` // text, textarea or select
	Help     string   `json:"help,omitempty"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// Variables is a prompt's variable schema, decoded like Tags.
type Variables []Variable

// UnmarshalJSON implements json.Unmarshaler
func (v *Variables) UnmarshalJSON(data []byte) error {
	*v = Variables(nonNil(decodeFlexible(data, []Variable{})))
	return nil
}

// Example is a sample input/output pair for a prompt.
type Example struct {
	Input  map[string]string `json:"input"`
	Output string            `json:"output"`
}

// Examples is a prompt's example list, decoded like Tags.
type Examples []Example

// UnmarshalJSON implements json.Unmarshaler
func (e *Examples) UnmarshalJSON(data []byte) error {
	*e = Examples(nonNil(decodeFlexible(data, []Example{})))
	return nil
}

// ParseTags resolves a raw tags value into Tags.
func ParseTags(value any) Tags {
	return Tags(nonNil(ParseField(value, []string{})))
}

// ParseVariables resolves a raw variable schema value into Variables.
func ParseVariables(value any) Variables {
	return Variables(nonNil(ParseField(value, []Variable{})))
}

// ParseExamples resolves a raw examples value into Examples.
func ParseExamples(value any) Examples {
	return Examples(nonNil(ParseField(value, []Example{})))
}
