// Package validation checks and sanitizes untrusted form input.
//
// Constraints are declared as Rule tuples {field, tag, reason}. Every rule is
// evaluated on its own and all failures are collected, so one submission can
// report several problems at once. Tags use the go-playground/validator
// syntax, extended with the custom tags registered in this package.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one rejected field and the human-readable reason.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error is returned when input is rejected. Fields keep rule order.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field appears among the errors.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Rule binds a validator tag to a field and the reason reported on failure.
type Rule struct {
	Field  string
	Tag    string
	Reason string
}

// Validator evaluates a fixed rule list against field values.
type Validator struct {
	engine *validator.Validate
	rules  []Rule
}

// NewValidator compiles rules against an engine carrying the package's
// custom tags. It panics on a rule that names an unknown tag, which is a
// programming error.
func NewValidator(rules []Rule) *Validator {
	engine := newEngine()
	for _, r := range rules {
		if err := checkTag(engine, r.Tag); err != nil {
			panic(fmt.Sprintf("validation: rule %s %q: %v", r.Field, r.Tag, err))
		}
	}
	return &Validator{engine: engine, rules: rules}
}

// Check runs every rule against values[rule.Field] (a missing field is the
// empty string) and returns the failures in rule order.
func (v *Validator) Check(values map[string]string) []FieldError {
	var errs []FieldError
	for _, r := range v.rules {
		if err := v.engine.Var(values[r.Field], r.Tag); err != nil {
			errs = append(errs, FieldError{Field: r.Field, Reason: r.Reason})
		}
	}
	return errs
}

// Rules returns a copy of the rule list.
func (v *Validator) Rules() []Rule {
	return append([]Rule(nil), v.rules...)
}

// checkTag surfaces unknown tags at construction time. validator panics on an
// undefined tag, so the panic is turned into an error here.
func checkTag(engine *validator.Validate, tag string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	_ = engine.Var("", tag)
	return nil
}
