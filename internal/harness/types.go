package harness

import (
	"time"

	"github.com/roach88/archcheck/internal/arch"
)

// CheckResult is the outcome of one named check.
type CheckResult struct {
	// Name is "[<Provider>] <description>".
	Name string `json:"name"`

	// Provider is the simple name of the providing rule set.
	Provider string `json:"provider"`

	// Pass is true when the check evaluated without violations.
	Pass bool `json:"pass"`

	// Violations lists what broke the check.
	Violations []arch.Violation `json:"violations,omitempty"`

	// Error is set when the check could not be evaluated (e.g. it panicked).
	Error string `json:"error,omitempty"`

	// Duration is the evaluation time.
	Duration time.Duration `json:"duration_ns"`
}

// Result is the outcome of a run.
type Result struct {
	// Pass is true when every check passed.
	Pass bool `json:"pass"`

	// Roots are the package roots the run scanned.
	Roots []string `json:"roots"`

	// Checks are the results in check order.
	Checks []CheckResult `json:"checks"`

	// Started is when evaluation began.
	Started time.Time `json:"started"`

	// Duration is the wall time of the evaluation phase.
	Duration time.Duration `json:"duration_ns"`
}

// NewResult creates a passing result with no checks.
func NewResult(roots []string) *Result {
	return &Result{Pass: true, Roots: roots, Checks: []CheckResult{}}
}

// Add appends a check result and updates Pass.
func (r *Result) Add(c CheckResult) {
	r.Checks = append(r.Checks, c)
	if !c.Pass {
		r.Pass = false
	}
}

// Failed returns the number of failed checks.
func (r *Result) Failed() int {
	n := 0
	for _, c := range r.Checks {
		if !c.Pass {
			n++
		}
	}
	return n
}

// Violations returns the total number of violations.
func (r *Result) Violations() int {
	n := 0
	for _, c := range r.Checks {
		n += len(c.Violations)
	}
	return n
}
