package parse

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/notarykit/docuscan/internal/schema"
)

// Tier records which parsing path produced an outcome.
type Tier string

const (
	TierStrict    Tier = "strict"
	TierHeuristic Tier = "heuristic"
)

// Outcome is the parser's raw read of a model reply: resolved fields only
// (unresolved ones are absent, never nil), plus the unclamped confidence.
type Outcome struct {
	Fields     map[string]any
	Confidence float64
	Tier       Tier
	// Conforming is true when the strict-tier object validated against the
	// kind's JSON schema, possibly after the sanitize pass. Advisory; a
	// non-conforming reply still parses.
	Conforming bool
}

// Parse extracts fields from raw model text. The strict tier looks for a
// brace-delimited object and decodes it; the heuristic tier falls back to
// line-by-line alias scanning whenever no such object exists or it fails to
// decode. Parsing never fails: a reply with nothing recoverable yields an
// empty outcome that normalization turns into all defaults at confidence 0.
func Parse(s *schema.ExtractionSchema, raw string, heuristicConfidence int, logger *slog.Logger) Outcome {
	if logger == nil {
		logger = slog.Default()
	}

	if obj, ok := decodeStrict(raw); ok {
		return strictOutcome(s, obj, logger)
	}

	logger.Info("parse.fallback_heuristic", "kind", s.Kind, "reply_len", len(raw))
	return heuristicOutcome(s, raw, heuristicConfidence)
}

// decodeStrict finds the first '{' and the last '}' in the text and tries to
// decode the span between them. Prose, markdown fences, or trailing chatter
// around the object are tolerated by construction.
func decodeStrict(text string) (map[string]any, bool) {
	start := strings.Index(text, "{")
	if start == -1 {
		return nil, false
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func strictOutcome(s *schema.ExtractionSchema, obj map[string]any, logger *slog.Logger) Outcome {
	conforming := checkConformance(s, obj, logger)

	fields := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		if v, ok := obj[f.Name]; ok && v != nil {
			fields[f.Name] = v
		}
	}

	return Outcome{
		Fields:     fields,
		Confidence: numericConfidence(obj[schema.ConfidenceField]),
		Tier:       TierStrict,
		Conforming: conforming,
	}
}

// checkConformance validates the decoded object against the kind's JSON
// schema, retrying once after the sanitize pass. The verdict is logged and
// recorded but never blocks extraction.
func checkConformance(s *schema.ExtractionSchema, obj map[string]any, logger *slog.Logger) bool {
	if err := ValidateAgainstSchema(s.JSONSchema(), obj); err == nil {
		return true
	}
	cleaned, dropped := Sanitize(s, obj)
	if err := ValidateAgainstSchema(s.JSONSchema(), cleaned); err != nil {
		logger.Warn("parse.nonconforming_reply", "kind", s.Kind, "error", err)
		return false
	}
	if len(dropped) > 0 {
		logger.Warn("parse.sanitize_applied", "kind", s.Kind, "dropped", dropped)
	}
	return true
}

func numericConfidence(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return 0
}

func heuristicOutcome(s *schema.ExtractionSchema, raw string, heuristicConfidence int) Outcome {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			lines = append(lines, l)
		}
	}

	fields := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		if v, ok := scanLines(lines, append([]string{f.Name}, f.Aliases...)); ok {
			fields[f.Name] = v
		}
	}

	// No model-reported confidence exists on this path; the configured
	// default stands in for it. A reply where no line matched anything
	// earns no confidence at all.
	confidence := float64(heuristicConfidence)
	if len(fields) == 0 {
		confidence = 0
	}
	return Outcome{
		Fields:     fields,
		Confidence: confidence,
		Tier:       TierHeuristic,
	}
}

// scanLines finds the first line containing any alias (case-insensitive) and
// returns the trimmed, unquoted value after the first ':' or '=' separator.
func scanLines(lines []string, aliases []string) (string, bool) {
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, alias := range aliases {
			if !strings.Contains(lower, strings.ToLower(strings.ReplaceAll(alias, "_", " "))) &&
				!strings.Contains(lower, strings.ToLower(alias)) {
				continue
			}
			value, ok := splitValue(line)
			if !ok {
				continue
			}
			return value, true
		}
	}
	return "", false
}

func splitValue(line string) (string, bool) {
	sep := strings.IndexAny(line, ":=")
	if sep == -1 {
		return "", false
	}
	value := strings.TrimSpace(line[sep+1:])
	value = strings.Trim(value, `"'`)
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}
