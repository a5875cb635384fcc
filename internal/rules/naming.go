package rules

import (
	"github.com/roach88/archcheck/internal/arch"
	"github.com/roach88/archcheck/internal/codemodel"
	"github.com/roach88/archcheck/internal/ruleset"
)

// BaseArchitectureRules are interface naming rules shared by rule sets.
// It is a Rule only and is never discovered on its own.
type BaseArchitectureRules struct{}

// All implements ruleset.Rule.
func (BaseArchitectureRules) All() []arch.Check {
	return []arch.Check{
		arch.NoTypes(arch.AreInterfaces(), arch.HaveNameEndingWith[*codemodel.Type]("Impl")).
			Because("interfaces name a behaviour, not an implementation"),
		arch.NoTypes(arch.AreInterfaces(), arch.HaveNamePrefixedWith[*codemodel.Type]("I")).
			Because("Go interfaces are not marked with a prefix"),
	}
}

// NamingConventions extends the base rules with naming rules for values.
type NamingConventions struct {
	ruleset.Set
	Base BaseArchitectureRules
}

// All implements ruleset.Rule.
func (n NamingConventions) All() []arch.Check {
	sentinels := arch.Values(
		arch.AreVariables().And(arch.HaveType("error")),
		arch.HaveNameStartingWith[*codemodel.Value]("Err", "err"),
	).Because("sentinel errors are recognised by their Err prefix")

	return append(n.Base.All(), sentinels)
}
