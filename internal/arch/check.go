package arch

import (
	"fmt"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/roach88/archcheck/internal/codemodel"
)

// Check is an evaluable architecture assertion.
//
// Evaluate must not modify the model; checks may be evaluated concurrently
// against the same model.
type Check interface {
	Description() string
	Evaluate(m *codemodel.Model) Result
}

// Violation is one element that broke a check.
type Violation struct {
	Element string         `json:"element"`
	Message string         `json:"message"`
	Pos     token.Position `json:"-"`
}

// String renders the violation with its source location, if known.
func (v Violation) String() string {
	if !v.Pos.IsValid() {
		return v.Message
	}
	return fmt.Sprintf("%s in (%s:%d)", v.Message, filepath.Base(v.Pos.Filename), v.Pos.Line)
}

// Result is the outcome of evaluating one check.
type Result struct {
	Description string
	Violations  []Violation
}

// Passed reports whether the check found no violations.
func (r Result) Passed() bool { return len(r.Violations) == 0 }

// FailureError is returned by Assert when a check has violations.
type FailureError struct {
	Description string
	Violations  []Violation
}

// Error implements the error interface.
func (e *FailureError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Architecture Violation - Rule '%s' was violated (%d times):", e.Description, len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n")
		b.WriteString(v.String())
	}
	return b.String()
}

// Assert evaluates the check and returns a *FailureError when it has
// violations.
func Assert(c Check, m *codemodel.Model) error {
	res := c.Evaluate(m)
	if res.Passed() {
		return nil
	}
	return &FailureError{Description: res.Description, Violations: res.Violations}
}

// Rule is the concrete Check produced by the builders.
type Rule struct {
	description string
	evaluate    func(*codemodel.Model) []Violation
}

// New creates a rule from a description and an evaluation function.
func New(description string, evaluate func(*codemodel.Model) []Violation) *Rule {
	return &Rule{description: description, evaluate: evaluate}
}

// Description implements Check.
func (r *Rule) Description() string { return r.description }

// Evaluate implements Check.
func (r *Rule) Evaluate(m *codemodel.Model) Result {
	return Result{Description: r.description, Violations: r.evaluate(m)}
}

// Because returns a copy of the rule whose description carries the reason.
func (r *Rule) Because(reason string) *Rule {
	return &Rule{description: r.description + ", because " + reason, evaluate: r.evaluate}
}
