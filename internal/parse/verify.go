package parse

import (
	"github.com/notarykit/docuscan/internal/schema"
)

// Verified derives the advisory trust flag: confidence must exceed the
// threshold (exclusive) and every required field must differ from its
// sentinel default. It never blocks acceptance downstream; it only signals
// whether manual review is advisable.
func Verified(s *schema.ExtractionSchema, fields map[string]any, confidence, threshold int) bool {
	if confidence <= threshold {
		return false
	}
	for _, f := range s.Required() {
		if fields[f.Name] == f.Default() {
			return false
		}
	}
	return true
}
