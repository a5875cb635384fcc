package rules

import (
	"github.com/roach88/archcheck/internal/discovery"
	"github.com/roach88/archcheck/internal/ruleset"
)

func init() {
	ruleset.Register(entries()...)
}

func entries() []ruleset.Entry {
	return []ruleset.Entry{
		ruleset.Stateless(DependencyRules{}),
		ruleset.Stateless(NamingConventions{}),
		ruleset.Stateless(PackageStructureRules{}),
	}
}

// Builtin returns the built-in rule sets as providers, sorted by name.
func Builtin() []discovery.Provider {
	reg := ruleset.NewRegistry()
	if err := reg.Register(entries()...); err != nil {
		return nil
	}
	var out []discovery.Provider
	for _, e := range reg.Entries() {
		rs, err := e.New()
		if err != nil || rs == nil {
			continue
		}
		out = append(out, discovery.Provider{Name: e.TypeName, PkgPath: e.PkgPath, RuleSet: rs})
	}
	return out
}
