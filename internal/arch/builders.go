package arch

import (
	"fmt"
	"strings"

	"github.com/roach88/archcheck/internal/codemodel"
)

// Edge is a dependency together with its resolved target declaration.
// Target is nil when the target is not a declaration of the model.
type Edge struct {
	codemodel.Dependency
	Target codemodel.Decl
}

// NoTypes reports every type matching that for which should holds.
func NoTypes(that, should Predicate[*codemodel.Type]) *Rule {
	return noneMatch("types", that, should, (*codemodel.Model).Types)
}

// Types reports every type matching that for which should does not hold.
func Types(that, should Predicate[*codemodel.Type]) *Rule {
	return allMatch("types", that, should, (*codemodel.Model).Types)
}

// NoFuncs reports every function matching that for which should holds.
func NoFuncs(that, should Predicate[*codemodel.Func]) *Rule {
	return noneMatch("functions", that, should, (*codemodel.Model).Funcs)
}

// Funcs reports every function matching that for which should does not hold.
func Funcs(that, should Predicate[*codemodel.Func]) *Rule {
	return allMatch("functions", that, should, (*codemodel.Model).Funcs)
}

// NoValues reports every variable or constant matching that for which
// should holds.
func NoValues(that, should Predicate[*codemodel.Value]) *Rule {
	return noneMatch("values", that, should, (*codemodel.Model).Values)
}

// Values reports every variable or constant matching that for which should
// does not hold.
func Values(that, should Predicate[*codemodel.Value]) *Rule {
	return allMatch("values", that, should, (*codemodel.Model).Values)
}

// NoPackages reports every package matching that for which should holds.
func NoPackages(that, should Predicate[*codemodel.Package]) *Rule {
	return noneMatch("packages", that, should, (*codemodel.Model).Packages)
}

// Packages reports every package matching that for which should does not
// hold.
func Packages(that, should Predicate[*codemodel.Package]) *Rule {
	return allMatch("packages", that, should, (*codemodel.Model).Packages)
}

// NoDependencies reports every dependency edge whose target matches should.
func NoDependencies(should Predicate[Edge]) *Rule {
	desc := "no declarations should depend on " + should.Description()
	return New(desc, func(m *codemodel.Model) []Violation {
		var out []Violation
		for _, d := range m.Dependencies() {
			e := Edge{Dependency: d}
			if target, ok := m.Decl(d.To); ok {
				e.Target = target
			}
			if !should.Test(e) {
				continue
			}
			out = append(out, Violation{
				Element: d.From.String(),
				Message: fmt.Sprintf("%s depends on %s", d.From, d.To),
				Pos:     d.Pos,
			})
		}
		return out
	})
}

// element is what the generic builders evaluate.
type element interface {
	*codemodel.Type | *codemodel.Func | *codemodel.Value | *codemodel.Package
}

func noneMatch[T element](noun string, that, should Predicate[T], all func(*codemodel.Model) []T) *Rule {
	desc := describe("no "+noun, that, should)
	return New(desc, func(m *codemodel.Model) []Violation {
		var out []Violation
		for _, el := range all(m) {
			if that.Test(el) && should.Test(el) {
				out = append(out, violation(el, "should not "+should.Description()))
			}
		}
		return out
	})
}

func allMatch[T element](noun string, that, should Predicate[T], all func(*codemodel.Model) []T) *Rule {
	desc := describe(noun, that, should)
	return New(desc, func(m *codemodel.Model) []Violation {
		var out []Violation
		for _, el := range all(m) {
			if that.Test(el) && !should.Test(el) {
				out = append(out, violation(el, "should "+should.Description()))
			}
		}
		return out
	})
}

func describe[T any](subject string, that, should Predicate[T]) string {
	var b strings.Builder
	b.WriteString(subject)
	if that.Description() != "" {
		b.WriteString(" that ")
		b.WriteString(that.Description())
	}
	b.WriteString(" should ")
	b.WriteString(should.Description())
	return b.String()
}

func violation[T element](el T, what string) Violation {
	switch v := any(el).(type) {
	case *codemodel.Type:
		return Violation{Element: v.Ref.String(), Message: fmt.Sprintf("Type <%s> %s", v.Ref, what), Pos: v.Pos}
	case *codemodel.Func:
		return Violation{Element: v.Ref.String(), Message: fmt.Sprintf("Function <%s> %s", v.Ref, what), Pos: v.Pos}
	case *codemodel.Value:
		return Violation{Element: v.Ref.String(), Message: fmt.Sprintf("Value <%s> %s", v.Ref, what), Pos: v.Pos}
	case *codemodel.Package:
		return Violation{Element: v.Path, Message: fmt.Sprintf("Package <%s> %s", v.Path, what)}
	}
	return Violation{}
}
