package arch

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/archcheck/internal/codemodel"
)

// Predicate is a described boolean test over T.
// The zero Predicate matches everything and has an empty description.
type Predicate[T any] struct {
	description string
	test        func(T) bool
}

// NewPredicate creates a described predicate.
func NewPredicate[T any](description string, test func(T) bool) Predicate[T] {
	return Predicate[T]{description: description, test: test}
}

// Description returns the human-readable form used in reports.
func (p Predicate[T]) Description() string { return p.description }

// Test evaluates the predicate.
func (p Predicate[T]) Test(v T) bool {
	if p.test == nil {
		return true
	}
	return p.test(v)
}

// And combines two predicates; both must hold.
func (p Predicate[T]) And(other Predicate[T]) Predicate[T] {
	return NewPredicate(p.description+" and "+other.description, func(v T) bool {
		return p.Test(v) && other.Test(v)
	})
}

// Or combines two predicates; either may hold.
func (p Predicate[T]) Or(other Predicate[T]) Predicate[T] {
	return NewPredicate(p.description+" or "+other.description, func(v T) bool {
		return p.Test(v) || other.Test(v)
	})
}

// Not negates the predicate.
func Not[T any](p Predicate[T]) Predicate[T] {
	return NewPredicate("not "+p.description, func(v T) bool { return !p.Test(v) })
}

// named is implemented by declarations with an unqualified name.
type named interface {
	Name() string
}

// AreInterfaces matches interface types.
func AreInterfaces() Predicate[*codemodel.Type] {
	return NewPredicate("are interfaces", func(t *codemodel.Type) bool {
		return t.Kind == codemodel.KindInterface
	})
}

// AreStructs matches struct types.
func AreStructs() Predicate[*codemodel.Type] {
	return NewPredicate("are structs", func(t *codemodel.Type) bool {
		return t.Kind == codemodel.KindStruct
	})
}

// HaveNoFields matches structs without fields and all non-struct types.
func HaveNoFields() Predicate[*codemodel.Type] {
	return NewPredicate("have no fields", func(t *codemodel.Type) bool {
		return t.Fields == 0
	})
}

// HaveNameEndingWith matches declarations whose name ends with any suffix.
func HaveNameEndingWith[T named](suffixes ...string) Predicate[T] {
	return NewPredicate(fmt.Sprintf("have name ending with %s", quoteAll(suffixes)), func(v T) bool {
		for _, s := range suffixes {
			if strings.HasSuffix(v.Name(), s) {
				return true
			}
		}
		return false
	})
}

// HaveNameStartingWith matches declarations whose name starts with any prefix.
func HaveNameStartingWith[T named](prefixes ...string) Predicate[T] {
	return NewPredicate(fmt.Sprintf("have name starting with %s", quoteAll(prefixes)), func(v T) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(v.Name(), p) {
				return true
			}
		}
		return false
	})
}

// HaveNamePrefixedWith matches names made of prefix followed by an
// upper-case letter, e.g. "IReader" for prefix "I" but not "Iterator".
func HaveNamePrefixedWith[T named](prefix string) Predicate[T] {
	return NewPredicate(fmt.Sprintf("have name prefixed with '%s'", prefix), func(v T) bool {
		rest, ok := strings.CutPrefix(v.Name(), prefix)
		if !ok {
			return false
		}
		r, _ := utf8.DecodeRuneInString(rest)
		return unicode.IsUpper(r)
	})
}

// AreAnnotatedWith matches elements carrying an annotation of type t.
func AreAnnotatedWith[T codemodel.Annotated](t codemodel.AnnotationType) Predicate[T] {
	return NewPredicate(fmt.Sprintf("are annotated with @%s", t.SimpleName()), func(v T) bool {
		return codemodel.HasAnnotation(v, t)
	})
}

// CallPanic matches functions whose body calls the panic builtin.
func CallPanic() Predicate[*codemodel.Func] {
	return NewPredicate("call panic", func(f *codemodel.Func) bool { return f.CallsPanic })
}

// HaveType matches values of the given package-relative type.
func HaveType(typeName string) Predicate[*codemodel.Value] {
	return NewPredicate(fmt.Sprintf("have type %s", typeName), func(v *codemodel.Value) bool {
		return v.TypeName == typeName
	})
}

// AreVariables matches package-level variables.
func AreVariables() Predicate[*codemodel.Value] {
	return NewPredicate("are variables", func(v *codemodel.Value) bool { return !v.Const })
}

// HavePackageName matches packages declared with any of the names.
func HavePackageName(names ...string) Predicate[*codemodel.Package] {
	return NewPredicate(fmt.Sprintf("have package name %s", quoteAll(names)), func(p *codemodel.Package) bool {
		for _, n := range names {
			if p.Name == n {
				return true
			}
		}
		return false
	})
}

// ResideInPathSegment matches packages with seg as a path element.
func ResideInPathSegment(seg string) Predicate[*codemodel.Package] {
	return NewPredicate(fmt.Sprintf("reside under a '%s' path segment", seg), func(p *codemodel.Package) bool {
		for _, part := range strings.Split(p.Path, "/") {
			if part == seg {
				return true
			}
		}
		return false
	})
}

// AreTestPackages matches external test packages.
func AreTestPackages() Predicate[*codemodel.Package] {
	return NewPredicate("are test packages", func(p *codemodel.Package) bool {
		return strings.HasSuffix(p.Path, "_test")
	})
}

// TargetsAnnotatedWith matches dependency edges whose target carries an
// annotation of type t.
func TargetsAnnotatedWith(t codemodel.AnnotationType) Predicate[Edge] {
	return NewPredicate(fmt.Sprintf("declarations that are annotated with @%s", t.SimpleName()), func(e Edge) bool {
		return e.Target != nil && codemodel.HasAnnotation(e.Target, t)
	})
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, " or ")
}
