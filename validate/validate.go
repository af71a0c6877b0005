// Package validate provides pure predicates for the structured-data fields
// the site publishes: URLs, currency codes, availability states, ratings and
// review counts.
//
// Every predicate takes a string and reports whether it satisfies the
// field's constraints. Domain violations are reported as false, never as an
// error; translating a rejection into a user-facing error is left to the
// caller.
package validate

import "fmt"

// Func is a single-argument string predicate.
type Func func(string) bool

// TypeError reports that a loosely typed value was not a string.
// It indicates a broken caller contract rather than bad user input.
type TypeError struct {
	Field string // Field being validated, if known
	Got   any    // The offending value
}

func (e *TypeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validate: %s must be a string, got %T", e.Field, e.Got)
	}
	return fmt.Sprintf("validate: expected string, got %T", e.Got)
}

// Value applies fn to v when v is a string.
// Any other dynamic type yields a *TypeError.
func Value(fn Func, v any) (bool, error) {
	return FieldValue("", fn, v)
}

// FieldValue is Value with the field name recorded on type errors.
func FieldValue(field string, fn Func, v any) (bool, error) {
	s, ok := v.(string)
	if !ok {
		return false, &TypeError{Field: field, Got: v}
	}
	return fn(s), nil
}

// Result is the outcome of a named check.
type Result struct {
	Field  string
	Value  string
	OK     bool
	Reason string // Empty when OK
}

// Check runs fn against s and describes a rejection.
func Check(field string, fn Func, s string) Result {
	if fn(s) {
		return Result{Field: field, Value: s, OK: true}
	}
	return Result{
		Field:  field,
		Value:  s,
		Reason: fmt.Sprintf("%q is not a valid %s", s, field),
	}
}

// ByName maps field kinds to their predicates.
var ByName = map[string]Func{
	"url":          URL,
	"currency":     CurrencyCode,
	"availability": AvailabilityState,
	"rating":       Rating,
	"reviewCount":  ReviewCount,
}
