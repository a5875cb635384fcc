// Package ruleset defines the provider contracts and the registry through
// which providers are discovered.
//
// A provider is a type exposing architecture checks through All. Providers
// that embed Set are rule sets: only rule sets can be registered, and only
// registered rule sets are discovered. Rule-only providers are building
// blocks that rule sets compose.
//
// Providers register themselves from init:
//
//	func init() {
//	    ruleset.Register(ruleset.Stateless(LayeringRules{}))
//	}
package ruleset

import (
	"github.com/roach88/archcheck/internal/arch"
)

// Rule is a provider of architecture checks.
//
// All must be side-effect free and may be called more than once.
type Rule interface {
	All() []arch.Check
}

// RuleSet is a Rule marked for discovery. Embed Set to satisfy it.
type RuleSet interface {
	Rule
	isRuleSet()
}

// Set marks the embedding type as a RuleSet.
type Set struct{}

func (Set) isRuleSet() {}

// Concat flattens the checks of several providers, in order.
func Concat(rules ...Rule) []arch.Check {
	var out []arch.Check
	for _, r := range rules {
		out = append(out, r.All()...)
	}
	return out
}
