// Package arch defines the evaluable checks that architecture rules are
// made of.
//
// A Check has a human-readable description and evaluates to a Result
// against an immutable codemodel.Model. The builders in this package
// (NoTypes, NoFuncs, NoDependencies, SlicesFreeOfCycles, ...) compose
// described predicates into checks; they are a thin vocabulary, not a rule
// language.
//
//	check := arch.NoTypes(arch.AreInterfaces(), arch.HaveNameEndingWith("Impl")).
//	    Because("interfaces should not carry an implementation suffix")
//	if err := arch.Assert(check, model); err != nil {
//	    // *arch.FailureError lists every violation
//	}
package arch
