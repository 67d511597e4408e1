package parse

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/notarykit/docuscan/constants"
	"github.com/notarykit/docuscan/internal/schema"
)

var reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// dateLayouts are tried in order for anything that is not already ISO.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02.01.2006",
}

// Normalize turns a parser outcome into the final field map plus clamped
// confidence. Every schema field is present afterwards: unresolved ones get
// the field's default, dates are either YYYY-MM-DD or the sentinel, amounts
// are numbers, and categories are canonical. Normalization is a fixed point;
// running it twice yields the same map.
func Normalize(s *schema.ExtractionSchema, out Outcome) (map[string]any, int) {
	fields := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		raw, ok := out.Fields[f.Name]
		if !ok || raw == nil {
			fields[f.Name] = f.Default()
			continue
		}
		fields[f.Name] = normalizeValue(f, raw)
	}
	return fields, ClampConfidence(out.Confidence)
}

func normalizeValue(f schema.Field, raw any) any {
	switch f.Type {
	case schema.FieldDate:
		return normalizeDate(asString(raw))
	case schema.FieldAmount:
		return CoerceAmount(asString(raw))
	case schema.FieldCategory:
		cat, _ := constants.Canonicalize(asString(raw))
		return string(cat)
	default:
		s := strings.TrimSpace(asString(raw))
		if s == "" {
			return schema.Unknown
		}
		return s
	}
}

// normalizeDate passes ISO dates through untouched and reformats anything
// else it can parse; unparsable input becomes the sentinel, never a raw
// string.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if reISODate.MatchString(s) {
		return s
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return schema.Unknown
}

var reAmountNoise = regexp.MustCompile(`[$€£¥,\s]`)

// CoerceAmount parses a money-ish string into a number, tolerating currency
// symbols and thousands separators. Anything unparsable becomes 0.
func CoerceAmount(v string) float64 {
	s := reAmountNoise.ReplaceAllString(strings.TrimSpace(v), "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ClampConfidence forces the raw confidence into [0,100]. Out-of-range
// values are clamped, not rejected; NaN collapses to 0.
func ClampConfidence(raw float64) int {
	if math.IsNaN(raw) {
		return 0
	}
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return int(math.Round(raw))
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
