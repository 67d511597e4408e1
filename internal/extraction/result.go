package extraction

import (
	"github.com/notarykit/docuscan/constants"
	"github.com/notarykit/docuscan/internal/parse"
)

// Result is the output of one pipeline run. A fresh value is built per call
// and never mutated afterwards; retry means re-invoking the pipeline.
type Result struct {
	Kind constants.DocKind `json:"kind"`
	// Fields maps every declared schema field to its normalized value
	// (string, YYYY-MM-DD string, or number). Unresolved fields carry the
	// schema default, never nil and never absent.
	Fields map[string]any `json:"fields"`
	// Confidence is always within [0,100].
	Confidence int `json:"confidence"`
	// Verified is derived from confidence and required-field presence;
	// neither the model nor the user sets it.
	Verified bool `json:"verified"`
	// RawText is the original model reply, kept for audit and for
	// retry-without-recall.
	RawText string `json:"raw_text"`
	// Tier records which parsing path produced the fields.
	Tier parse.Tier `json:"tier"`
}
