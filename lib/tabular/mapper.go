package tabular

import (
	"strings"
)

// FieldSpec binds a logical field to a predicate over lowercased
// header text. Several specs may target the same field; the first
// assignment wins and later columns never overwrite it.
type FieldSpec struct {
	Field string
	Match func(header string) bool
}

// ColumnMap maps logical field names to column indexes. Lifetime is
// one table parse.
type ColumnMap map[string]int

// MapColumns walks headers left to right, evaluating every spec
// against each lowercased header. A field claimed by an earlier
// column keeps its index.
func MapColumns(headers []string, specs []FieldSpec) ColumnMap {
	out := ColumnMap{}
	for idx, header := range headers {
		lowered := strings.ToLower(strings.TrimSpace(header))
		for _, spec := range specs {
			if _, claimed := out[spec.Field]; claimed {
				continue
			}
			if spec.Match(lowered) {
				out[spec.Field] = idx
			}
		}
	}
	return out
}

// Cell returns the cell text for a logical field, guarding against
// short rows.
func (m ColumnMap) Cell(cells []string, field string) (string, bool) {
	idx, ok := m[field]
	if !ok || idx >= len(cells) {
		return "", false
	}
	return strings.TrimSpace(cells[idx]), true
}

// DefaultPositional is the fallback map used when no header matched
// any field predicate.
func DefaultPositional() ColumnMap {
	return ColumnMap{
		"timestamp": 0,
		"price":     1,
		"volume":    2,
		"buyer":     3,
		"seller":    4,
	}
}

// Contains reports whether the lowercased header contains the phrase.
func Contains(phrase string) func(string) bool {
	return func(header string) bool {
		return strings.Contains(header, phrase)
	}
}

// ContainsAll reports whether the lowercased header contains every
// phrase.
func ContainsAll(phrases ...string) func(string) bool {
	return func(header string) bool {
		for _, phrase := range phrases {
			if !strings.Contains(header, phrase) {
				return false
			}
		}
		return true
	}
}

// ContainsNone inverts Contains over several phrases.
func ContainsNone(phrases ...string) func(string) bool {
	return func(header string) bool {
		for _, phrase := range phrases {
			if strings.Contains(header, phrase) {
				return false
			}
		}
		return true
	}
}

// HasToken reports whether the header, split on whitespace and
// punctuation, contains the exact token.
func HasToken(token string) func(string) bool {
	return func(header string) bool {
		fields := strings.FieldsFunc(header, func(r rune) bool {
			return r == ' ' || r == '-' || r == '_' || r == '.' || r == '(' || r == ')'
		})
		for _, f := range fields {
			if f == token {
				return true
			}
		}
		return false
	}
}

// Any combines predicates disjunctively.
func Any(preds ...func(string) bool) func(string) bool {
	return func(header string) bool {
		for _, p := range preds {
			if p(header) {
				return true
			}
		}
		return false
	}
}

// All combines predicates conjunctively.
func All(preds ...func(string) bool) func(string) bool {
	return func(header string) bool {
		for _, p := range preds {
			if !p(header) {
				return false
			}
		}
		return true
	}
}
