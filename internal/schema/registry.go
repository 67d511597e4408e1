package schema

import (
	"fmt"
	"strings"

	"github.com/notarykit/docuscan/constants"
)

var registry = map[constants.DocKind]*ExtractionSchema{}

func init() {
	register(receiptSchema())
	register(identitySchema())
}

func register(s *ExtractionSchema) {
	s.prompt = buildPrompt(s)
	s.jsonSchema = buildJSONSchema(s)
	registry[s.Kind] = s
}

// Get returns the extraction schema for a document kind. Adding a new kind
// is a registry entry; no other component changes.
func Get(kind constants.DocKind) (*ExtractionSchema, error) {
	s, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("no extraction schema registered for kind %q", kind)
	}
	return s, nil
}

func receiptSchema() *ExtractionSchema {
	return &ExtractionSchema{
		Kind: constants.KindReceipt,
		Fields: []Field{
			{Name: "vendor", Type: FieldText, Required: true,
				Aliases: []string{"merchant", "store", "business", "payee"}},
			{Name: "amount", Type: FieldAmount, Required: true,
				Aliases: []string{"total", "total amount", "amount due", "grand total"}},
			{Name: "date", Type: FieldDate, Required: true,
				Aliases: []string{"transaction date", "purchase date"}},
			{Name: "description", Type: FieldText,
				Aliases: []string{"items", "memo", "notes"}},
			{Name: "category", Type: FieldCategory,
				Aliases: []string{"expense category", "expense type"}},
			{Name: "payment_method", Type: FieldText,
				Aliases: []string{"payment method", "paid with", "payment", "tender"}},
		},
	}
}

func identitySchema() *ExtractionSchema {
	return &ExtractionSchema{
		Kind: constants.KindIdentity,
		Fields: []Field{
			{Name: "document_type", Type: FieldText, Required: true,
				Aliases: []string{"document type", "id type", "type"}},
			{Name: "document_number", Type: FieldText, Required: true,
				Aliases: []string{"document number", "id number", "license number", "number"}},
			{Name: "full_name", Type: FieldText, Required: true,
				Aliases: []string{"name", "full name", "holder name"}},
			{Name: "address", Type: FieldText,
				Aliases: []string{"residence", "street"}},
			{Name: "date_of_birth", Type: FieldDate,
				Aliases: []string{"date of birth", "dob", "birth date", "born"}},
			{Name: "expiration_date", Type: FieldDate,
				Aliases: []string{"expiration", "expiration date", "expires", "expiry", "exp"}},
		},
	}
}

// buildPrompt composes the extraction instruction for one kind: the exact
// field names to emit, per-type formatting rules, and the Unknown convention
// the downstream normalizer and verifier rely on.
func buildPrompt(s *ExtractionSchema) string {
	subject := "a receipt"
	if s.Kind == constants.KindIdentity {
		subject = "an identity document"
	}

	parts := []string{
		"You are a document parser for a notary business dashboard. The attached image is " + subject + ".",
		"Return ONLY a JSON object with exactly these keys: " + strings.Join(append(s.FieldNames(), ConfidenceField), ", ") + ".",
		"'" + ConfidenceField + "' is an integer 0-100 reflecting how certain you are overall.",
		"Use the string \"" + Unknown + "\" for any field you cannot determine. Never output null and never add keys.",
	}

	for _, f := range s.Fields {
		switch f.Type {
		case FieldDate:
			parts = append(parts, "'"+f.Name+"' must be an ISO-8601 date (YYYY-MM-DD).")
		case FieldAmount:
			parts = append(parts, "'"+f.Name+"' must be a plain number with no currency symbol.")
		case FieldCategory:
			parts = append(parts,
				"'"+f.Name+"' must be exactly one of: "+strings.Join(constants.AsStringSlice(), ", ")+
					". If uncertain, choose '"+DefaultCategory+"'.")
		}
	}

	return strings.Join(parts, " ")
}

// buildJSONSchema emits a JSON-Schema (draft 2020-12 subset) map mirroring the
// prompt contract. Dates and amounts also admit the Unknown sentinel since the
// model is told to fall back to it.
func buildJSONSchema(s *ExtractionSchema) map[string]any {
	props := map[string]any{
		ConfidenceField: map[string]any{"type": "number", "minimum": 0.0, "maximum": 100.0},
	}
	required := []string{}
	for _, f := range s.Fields {
		switch f.Type {
		case FieldDate:
			props[f.Name] = map[string]any{
				"type":    "string",
				"pattern": `^(\d{4}-\d{2}-\d{2}|` + Unknown + `)$`,
			}
		case FieldAmount:
			props[f.Name] = map[string]any{"type": []string{"number", "string"}}
		case FieldCategory:
			props[f.Name] = map[string]any{
				"type": "string",
				"enum": append(constants.AsStringSlice(), Unknown),
			}
		default:
			props[f.Name] = map[string]any{"type": "string", "minLength": 1}
		}
		if f.Required {
			required = append(required, f.Name)
		}
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}
