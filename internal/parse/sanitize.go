package parse

import (
	"strings"

	"github.com/notarykit/docuscan/internal/schema"
)

// Sanitize cleans a decoded strict-tier object just enough to re-check
// conformance: nulls dropped, unknown keys removed, strings trimmed, and
// amount fields expressed as strings coerced to numbers. The input map is
// not modified. Returns the cleaned copy plus the keys it touched.
func Sanitize(s *schema.ExtractionSchema, obj map[string]any) (map[string]any, []string) {
	cleaned := make(map[string]any, len(obj))
	var dropped []string

	allowed := map[string]schema.Field{}
	for _, f := range s.Fields {
		allowed[f.Name] = f
	}

	for k, v := range obj {
		if k == schema.ConfidenceField {
			cleaned[k] = numericConfidence(v)
			continue
		}
		f, ok := allowed[k]
		if !ok {
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		if v == nil {
			dropped = append(dropped, k+"(null)")
			continue
		}

		switch t := v.(type) {
		case string:
			trimmed := strings.TrimSpace(t)
			if trimmed == "" || strings.EqualFold(trimmed, "null") {
				dropped = append(dropped, k+"(empty)")
				continue
			}
			if f.Type == schema.FieldAmount {
				cleaned[k] = CoerceAmount(trimmed)
				if trimmed != t {
					dropped = append(dropped, k+"(coerced)")
				}
				continue
			}
			cleaned[k] = trimmed
		case float64, bool:
			cleaned[k] = t
		default:
			// nested objects or arrays have no field to land in
			dropped = append(dropped, k+"(type)")
		}
	}

	return cleaned, dropped
}
