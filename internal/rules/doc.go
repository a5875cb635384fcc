// Package rules holds the built-in architecture rule sets.
//
// The rule sets register themselves in ruleset.Default from init. Like any
// provider they are discovered only when their package is part of the
// scanned code; Builtin returns them for callers that apply them to other
// codebases.
package rules
