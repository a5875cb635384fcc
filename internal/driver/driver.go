// Package driver turns discovered providers into a lazy sequence of
// individually named, individually evaluable checks.
//
// Check names have the form "[<Provider>] <check description>". Nothing is
// evaluated while the sequence is produced; each NamedCheck is evaluated on
// demand, and a failing or panicking check never affects its siblings.
package driver

import (
	"fmt"
	"iter"
	"runtime/debug"
	"slices"

	"github.com/roach88/archcheck/internal/arch"
	"github.com/roach88/archcheck/internal/codemodel"
	"github.com/roach88/archcheck/internal/discovery"
)

// NamedCheck is one check bound to the model it is evaluated against.
type NamedCheck struct {
	// Name is "[<Provider>] <description>".
	Name string

	// Provider is the simple name of the providing rule set.
	Provider string

	// Check is the underlying check; nil when the provider misbehaved.
	Check arch.Check

	model *codemodel.Model
	fault error
}

// PanicError reports a check or provider that panicked.
type PanicError struct {
	Name  string
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: panic: %v", e.Name, e.Value)
}

// Result evaluates the check. The error is non-nil only when the check
// could not be evaluated at all (a panic or a nil check); violations are
// reported in the result.
func (n NamedCheck) Result() (res arch.Result, err error) {
	if n.fault != nil {
		return arch.Result{Description: n.Name}, n.fault
	}
	if n.Check == nil {
		return arch.Result{Description: n.Name}, fmt.Errorf("%s: nil check", n.Name)
	}

	defer func() {
		if r := recover(); r != nil {
			res = arch.Result{Description: n.Name}
			err = &PanicError{Name: n.Name, Value: r, Stack: debug.Stack()}
		}
	}()
	return n.Check.Evaluate(n.model), nil
}

// Evaluate runs the check and returns nil when it passes, an
// *arch.FailureError when it has violations, or the evaluation error.
func (n NamedCheck) Evaluate() error {
	res, err := n.Result()
	if err != nil {
		return err
	}
	if res.Passed() {
		return nil
	}
	return &arch.FailureError{Description: res.Description, Violations: res.Violations}
}

// Checks returns the named checks of every provider, in provider order
// and, within a provider, in the order All returns them.
//
// The sequence is lazy: All is called for a provider only when iteration
// reaches it. A provider whose All panics contributes one failing check, and
// so does a check whose Description panics.
func Checks(providers []discovery.Provider, model *codemodel.Model) iter.Seq[NamedCheck] {
	return func(yield func(NamedCheck) bool) {
		for _, p := range providers {
			checks, fault := all(p)
			if fault != nil {
				nc := NamedCheck{Name: Name(p.Name, "All"), Provider: p.Name, model: model, fault: fault}
				if !yield(nc) {
					return
				}
				continue
			}
			for i, c := range checks {
				nc := NamedCheck{Provider: p.Name, Check: c, model: model}
				switch desc, fault := description(c); {
				case c == nil:
					nc.Name = Name(p.Name, "<nil check>")
				case fault != nil:
					// Typed-nil checks land here too.
					nc.Name = Name(p.Name, fmt.Sprintf("<check %d>", i))
					nc.fault = &PanicError{Name: nc.Name, Value: fault.Value, Stack: fault.Stack}
				default:
					nc.Name = Name(p.Name, desc)
				}
				if !yield(nc) {
					return
				}
			}
		}
	}
}

// Name formats a check name.
func Name(provider, description string) string {
	return "[" + provider + "] " + description
}

// Collect materializes a check sequence.
func Collect(seq iter.Seq[NamedCheck]) []NamedCheck {
	return slices.Collect(seq)
}

func all(p discovery.Provider) (checks []arch.Check, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Name: Name(p.Name, "All"), Value: r, Stack: debug.Stack()}
		}
	}()
	return p.RuleSet.All(), nil
}

func description(c arch.Check) (desc string, fault *PanicError) {
	if c == nil {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			fault = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return c.Description(), nil
}
