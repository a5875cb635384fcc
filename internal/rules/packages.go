package rules

import (
	"github.com/roach88/archcheck/internal/arch"
	"github.com/roach88/archcheck/internal/codemodel"
	"github.com/roach88/archcheck/internal/ruleset"
)

// catchAllNames are package names that say nothing about their contents.
var catchAllNames = []string{"util", "utils", "common", "misc", "helpers"}

// PackageStructureRules guards package naming and layout.
type PackageStructureRules struct {
	ruleset.Set
}

// All implements ruleset.Rule.
func (PackageStructureRules) All() []arch.Check {
	commands := arch.ResideInPathSegment("cmd").And(arch.Not(arch.AreTestPackages()))
	return []arch.Check{
		arch.NoPackages(arch.Predicate[*codemodel.Package]{}, arch.HavePackageName(catchAllNames...)).
			Because("package names should describe what they provide"),
		arch.Packages(commands, arch.HavePackageName("main")).
			Because("cmd/ holds one binary per directory"),
	}
}
