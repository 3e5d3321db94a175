// Package filter derives the visible subset of a collection from a set of
// field criteria. Evaluation is pure: no criterion mutates the record it
// inspects.
package filter

import (
	"iter"
	"strings"

	"golang.org/x/text/cases"
)

// All is the wildcard value for categorical criteria.
const All = "all"

// Kind selects how a criterion compares its value with a record field.
type Kind int

const (
	// Text matches when any of the fields contains Value, ignoring case.
	// An empty Value matches everything.
	Text Kind = iota
	// Exact matches when a field equals Value. The value "all" or an empty
	// value matches everything.
	Exact
	// Partial is a categorical criterion compared by case-insensitive
	// substring, with the same wildcard rules as Exact.
	Partial
)

// Record exposes named fields to the evaluator. Unknown fields return "".
type Record interface {
	FilterValue(field string) string
}

// Criterion is one predicate over a record. When Fields lists more than one
// name the criterion matches if any of them does.
type Criterion struct {
	Fields []string
	Value  string
	Kind   Kind
}

// Criteria combine with logical AND. An empty set matches every record.
type Criteria []Criterion

// Match reports whether rec satisfies c.
func (c Criterion) Match(rec Record) bool {
	value := strings.TrimSpace(c.Value)
	if value == "" {
		return true
	}
	if c.Kind != Text && strings.EqualFold(value, All) {
		return true
	}

	var needle string
	if c.Kind != Exact {
		needle = fold(value)
	}
	for _, field := range c.Fields {
		got := rec.FilterValue(field)
		switch c.Kind {
		case Exact:
			if got == value {
				return true
			}
		default:
			if strings.Contains(fold(got), needle) {
				return true
			}
		}
	}
	return false
}

// Evaluate reports whether rec satisfies every criterion.
func Evaluate(rec Record, criteria Criteria) bool {
	for _, c := range criteria {
		if !c.Match(rec) {
			return false
		}
	}
	return true
}

// Visible yields the records of seq that satisfy criteria, in order.
func Visible[T Record](seq iter.Seq[T], criteria Criteria) iter.Seq[T] {
	return func(yield func(T) bool) {
		for rec := range seq {
			if !Evaluate(rec, criteria) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Collect is Visible over a slice, returning a new slice.
func Collect[T Record](items []T, criteria Criteria) []T {
	out := make([]T, 0, len(items))
	for _, rec := range items {
		if Evaluate(rec, criteria) {
			out = append(out, rec)
		}
	}
	return out
}

// fold returns the Unicode case-folded form of s, used for case-insensitive
// matching.
func fold(s string) string {
	return cases.Fold().String(s)
}
