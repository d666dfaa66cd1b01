package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/meridian-legal/docaudit/internal/resilience"
)

// defaultFieldConfidence applies when a model returns a bare string value
// instead of the {value, confidence} shape.
const defaultFieldConfidence = 0.7

// responseSchema accepts the documented shape plus the bare-string form
// models sometimes fall back to. Anything else is a permanent error.
const responseSchema = `{
	"type": "object",
	"additionalProperties": {
		"anyOf": [
			{
				"type": "object",
				"properties": {
					"value": {"type": ["string", "number", "null"]},
					"confidence": {"type": "number", "minimum": 0, "maximum": 1}
				},
				"required": ["value"]
			},
			{"type": ["string", "number", "null"]}
		]
	}
}`

var compiledResponseSchema = jsonschema.MustCompileString("response.json", responseSchema)

// ParseResponse normalizes raw model output into Fields. Markdown code
// fences are stripped first; the remainder must be a JSON object matching
// the response schema. A response that cannot be parsed or does not match
// is a permanent error — retrying the same malformed contract is pointless.
func ParseResponse(raw string) (map[string]Field, error) {
	cleaned := StripFences(raw)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, resilience.NewPermanentError(eris.Wrap(err, "extraction: response is not valid JSON"))
	}
	if err := compiledResponseSchema.Validate(doc); err != nil {
		return nil, resilience.NewPermanentError(eris.Wrap(err, "extraction: response does not match schema"))
	}

	obj := doc.(map[string]any)
	fields := make(map[string]Field, len(obj))
	for name, v := range obj {
		f, ok := normalizeField(v)
		if !ok {
			continue
		}
		fields[name] = f
	}
	return fields, nil
}

func normalizeField(v any) (Field, bool) {
	switch val := v.(type) {
	case nil:
		return Field{}, false
	case string:
		if nullish(val) {
			return Field{}, false
		}
		return Field{Value: val, Confidence: defaultFieldConfidence}, true
	case float64:
		return Field{Value: trimFloat(val), Confidence: defaultFieldConfidence}, true
	case map[string]any:
		f := Field{Confidence: defaultFieldConfidence}
		switch inner := val["value"].(type) {
		case string:
			if nullish(inner) {
				return Field{}, false
			}
			f.Value = inner
		case float64:
			f.Value = trimFloat(inner)
		default:
			return Field{}, false
		}
		if c, ok := val["confidence"].(float64); ok {
			f.Confidence = c
		}
		return f, true
	default:
		return Field{}, false
	}
}

func nullish(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "n/a", "none":
		return true
	}
	return false
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// StripFences removes a surrounding markdown code fence from model output.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return string(bytes.TrimSpace([]byte(s)))
}
