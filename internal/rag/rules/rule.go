// Package rules is the Health Rule Engine (component C7): a declarative
// catalog of per-device-kind health rules plus an evaluator that scores a
// single device record against the best-matching rule.
//
// Grounded on the original knowledge/health_rules.py's executable_rules
// dict shape. Rather than interpreting a string expression language at
// runtime, predicates are built from a small set of composable Go
// constructors (Eq, Lt, Gt, In, Not, And, Exists) that produce the same
// total, side-effect-free Predicate func — the grammar the spec calls for,
// expressed as Go values instead of a parsed mini-language.
package rules

import "fmt"

// Severity is a health-condition bucket.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityHealthy  Severity = "HEALTHY"
)

// Priority orders recommendations.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

var priorityRank = map[Priority]int{PriorityHigh: 0, PriorityMedium: 1, PriorityLow: 2}

// Predicate is a total boolean function of a device record: a missing field
// never panics, it evaluates the comparison as false.
type Predicate func(rec map[string]any) bool

// Condition pairs a severity bucket with the predicate that signals it.
type Condition struct {
	Severity  Severity
	Predicate Predicate
	Label     string // human-readable description, mirrors the original's "field op value" / "condition" strings
}

// Adjustment is a scoring rule: when Predicate holds, Impact (signed) is
// added to the running score.
type Adjustment struct {
	Predicate Predicate
	Impact    int
	Reason    string
}

// Recommendation fires Message at Priority when Predicate holds.
type Recommendation struct {
	Predicate Predicate
	Message   string
	Priority  Priority
}

// Rule is one declarative health rule for a device kind.
type Rule struct {
	ID            string
	DeviceKind    string
	Version       string
	SummaryFields []string
	Conditions    []Condition
	Adjustments   []Adjustment
	Recommendations []Recommendation
	Keywords      []string
}

// --- predicate constructors -------------------------------------------------

// Eq reports whether rec[field] equals value under a loose numeric/string
// comparison (absent field -> false).
func Eq(field string, value any) Predicate {
	return func(rec map[string]any) bool {
		v, ok := rec[field]
		if !ok {
			return false
		}
		return looseEqual(v, value)
	}
}

// Lt reports whether rec[field] < value, for numeric fields.
func Lt(field string, value float64) Predicate {
	return func(rec map[string]any) bool {
		n, ok := asFloat(rec[field])
		return ok && n < value
	}
}

// Gt reports whether rec[field] > value, for numeric fields.
func Gt(field string, value float64) Predicate {
	return func(rec map[string]any) bool {
		n, ok := asFloat(rec[field])
		return ok && n > value
	}
}

// InRange reports whether rec[field] is within [low, high).
func InRange(field string, low, high float64) Predicate {
	return func(rec map[string]any) bool {
		n, ok := asFloat(rec[field])
		return ok && n >= low && n < high
	}
}

// In reports whether rec[field] (as a string) is a member of values.
func In(field string, values ...string) Predicate {
	return func(rec map[string]any) bool {
		s, ok := rec[field].(string)
		if !ok {
			return false
		}
		for _, v := range values {
			if s == v {
				return true
			}
		}
		return false
	}
}

// Exists reports whether field is present in rec at all.
func Exists(field string) Predicate {
	return func(rec map[string]any) bool {
		_, ok := rec[field]
		return ok
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(rec map[string]any) bool { return !p(rec) }
}

// And is true when every predicate holds (vacuously true for zero args).
func And(preds ...Predicate) Predicate {
	return func(rec map[string]any) bool {
		for _, p := range preds {
			if !p(rec) {
				return false
			}
		}
		return true
	}
}

// Or is true when any predicate holds.
func Or(preds ...Predicate) Predicate {
	return func(rec map[string]any) bool {
		for _, p := range preds {
			if p(rec) {
				return true
			}
		}
		return false
	}
}

func looseEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
