package parser

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned when decoding a document of unknown format
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Decode parses text according to format and returns a JSON-compatible value:
// mappings become map[string]any, sequences []any, scalars their Go equivalents.
func Decode(format Format, text string) (any, error) {
	switch {
	case format == FormatJSON:
		var value any
		if err := json.Unmarshal([]byte(text), &value); err != nil {
			return nil, err
		}
		return value, nil
	case format.IsYAML():
		var value any
		if err := yaml.Unmarshal([]byte(text), &value); err != nil {
			return nil, err
		}
		return normalize(value), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// normalize converts YAML mappings with non-string keys (e.g. response codes
// such as 200) into string keyed maps so the value can be treated as JSON.
func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			v[key] = normalize(item)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range v {
			v[i] = normalize(item)
		}
		return v
	default:
		return v
	}
}

// asSwaggerObject returns the value as a mapping if it is one and carries the
// version marker key.
func asSwaggerObject(value any) (map[string]any, bool) {
	object, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	if _, hasMarker := object[versionMarker]; !hasMarker {
		return nil, false
	}
	return object, true
}
