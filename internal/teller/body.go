package teller

import (
	"bytes"
	"encoding/json"
)

// Body is a provider response body kept verbatim: the raw JSON document when
// it parses, otherwise the raw text.
type Body struct {
	JSON json.RawMessage
	Text string
}

// parseBody never fails; an empty body is treated as an empty JSON object.
func parseBody(raw []byte) Body {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Body{JSON: json.RawMessage(`{}`)}
	}
	if json.Valid(trimmed) {
		return Body{JSON: append(json.RawMessage(nil), trimmed...)}
	}
	return Body{Text: string(raw)}
}

// IsJSON reports whether the provider answered with a parseable document.
func (b Body) IsJSON() bool { return b.JSON != nil }

// MarshalJSON emits the JSON document unchanged or the text as a JSON string.
func (b Body) MarshalJSON() ([]byte, error) {
	if b.JSON != nil {
		return b.JSON, nil
	}
	return json.Marshal(b.Text)
}

// Field returns a top-level string field when the body is a JSON object.
func (b Body) Field(name string) string {
	if b.JSON == nil {
		return ""
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b.JSON, &obj); err != nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(obj[name], &s); err != nil {
		return ""
	}
	return s
}
