package schema

import (
	"github.com/notarykit/docuscan/constants"
)

// Sentinel values substituted for anything the pipeline cannot resolve.
// The prompt instructs the model to emit Unknown, the parser leaves
// unresolved fields at their default, and verification compares against
// the same constants; keeping them named avoids the prompt text and the
// comparison logic drifting apart.
const (
	Unknown         = "Unknown"
	DefaultCategory = string(constants.Other)
)

// ConfidenceField is the extra key every prompt asks for alongside the
// schema's own fields.
const ConfidenceField = "confidence"

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldDate     FieldType = "date"
	FieldAmount   FieldType = "amount"
	FieldCategory FieldType = "category"
)

// Field describes one extractable field of a document kind.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	// Aliases are the labels the heuristic tier scans lines for, checked
	// case-insensitively. The field name itself is always included.
	Aliases []string
}

// Default returns the sentinel value substituted when the field is
// unresolved. Amounts default to 0, categories to the catch-all, and
// everything else to Unknown.
func (f Field) Default() any {
	switch f.Type {
	case FieldAmount:
		return float64(0)
	case FieldCategory:
		return DefaultCategory
	default:
		return Unknown
	}
}

// ExtractionSchema holds everything the pipeline needs to know about one
// document kind: the ordered field list, the prompt sent to the model, and
// the JSON-Schema map used to check strict-tier conformance. Immutable
// after construction.
type ExtractionSchema struct {
	Kind   constants.DocKind
	Fields []Field

	prompt     string
	jsonSchema map[string]any
}

// Field looks up a field by name.
func (s *ExtractionSchema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the declared field names in order.
func (s *ExtractionSchema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Required returns the required subset of fields.
func (s *ExtractionSchema) Required() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// Prompt is the extraction instruction sent to the model for this kind.
func (s *ExtractionSchema) Prompt() string {
	return s.prompt
}

// JSONSchema returns the JSON-Schema (draft 2020-12 subset) map describing
// the shape the model is asked to emit. Used locally to check conformance
// of strict-tier replies; never a hard gate.
func (s *ExtractionSchema) JSONSchema() map[string]any {
	return s.jsonSchema
}
