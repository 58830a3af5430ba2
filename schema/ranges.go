package schema

import "strings"

// Canonical datatype range names. These are the only values a merged card
// ever stores in a datatype property range.
const (
	RangeString   = "string"
	RangeInteger  = "integer"
	RangeDecimal  = "decimal"
	RangeBoolean  = "boolean"
	RangeDate     = "date"
	RangeDateTime = "dateTime"
	RangeAnyURI   = "anyURI"
)

// rangeSynonyms maps the range spellings LLMs and baselines produce onto
// the canonical names.
var rangeSynonyms = map[string]string{
	"string":    RangeString,
	"str":       RangeString,
	"text":      RangeString,
	"integer":   RangeInteger,
	"int":       RangeInteger,
	"decimal":   RangeDecimal,
	"float":     RangeDecimal,
	"number":    RangeDecimal,
	"boolean":   RangeBoolean,
	"bool":      RangeBoolean,
	"date":      RangeDate,
	"datetime":  RangeDateTime,
	"timestamp": RangeDateTime,
	"anyuri":    RangeAnyURI,
	"url":       RangeAnyURI,
	"uri":       RangeAnyURI,
}

// NormalizeRange maps a proposed range onto a canonical datatype name.
// Unrecognized ranges coerce to string; the second return reports whether
// coercion happened so the caller can warn.
func NormalizeRange(r string) (string, bool) {
	if canonical, ok := rangeSynonyms[strings.ToLower(strings.TrimSpace(r))]; ok {
		return canonical, false
	}
	return RangeString, true
}

// IsCanonicalRange reports whether r is one of the canonical datatype names.
func IsCanonicalRange(r string) bool {
	switch r {
	case RangeString, RangeInteger, RangeDecimal, RangeBoolean, RangeDate, RangeDateTime, RangeAnyURI:
		return true
	}
	return false
}
