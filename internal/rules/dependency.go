package rules

import (
	"github.com/roach88/archcheck/internal/annotation"
	"github.com/roach88/archcheck/internal/arch"
	"github.com/roach88/archcheck/internal/codemodel"
	"github.com/roach88/archcheck/internal/ruleset"
)

// DependencyRules guards how declarations depend on each other.
type DependencyRules struct {
	ruleset.Set
}

// All implements ruleset.Rule.
func (DependencyRules) All() []arch.Check {
	return []arch.Check{
		NoDeprecatedDependencies(),
		SlicesFreeOfCycles(),
		NoUnapprovedPanics(),
		StatelessUtilities(),
	}
}

// NoDeprecatedDependencies forbids references to declarations whose doc
// comment carries a "Deprecated:" paragraph.
func NoDeprecatedDependencies() *arch.Rule {
	return arch.NoDependencies(arch.TargetsAnnotatedWith(codemodel.Deprecated)).
		Because("deprecated declarations are scheduled for removal")
}

// SlicesFreeOfCycles forbids import cycles between top-level slices.
func SlicesFreeOfCycles() *arch.Rule {
	return arch.SlicesFreeOfCycles().
		Because("cyclic slices cannot be built, tested or released independently")
}

// NoUnapprovedPanics forbids panic outside functions marked with
// //arch:allow-panic or //nolint:panic.
func NoUnapprovedPanics() *arch.Rule {
	approved := arch.AreAnnotatedWith[*codemodel.Func](codemodel.AllowPanic).
		Or(annotation.MethodIsSuppressing("panic"))
	return arch.NoFuncs(arch.Not(approved), arch.CallPanic()).
		Because("errors should be returned to the caller")
}

// StatelessUtilities requires *Utils, *Util and *Helper structs to have no
// fields.
func StatelessUtilities() *arch.Rule {
	utility := arch.AreStructs().And(arch.HaveNameEndingWith[*codemodel.Type]("Utils", "Util", "Helper"))
	return arch.Types(utility, arch.HaveNoFields()).
		Because("utility types group functions and must not hold state")
}
