// Package annotation provides reusable predicates over annotated
// declarations for rule authors.
//
// The predicates are stateless and never fail: an absent annotation or an
// attribute of an unsupported shape simply does not match.
package annotation

import (
	"fmt"
	"iter"
	"strings"

	"github.com/roach88/archcheck/internal/arch"
	"github.com/roach88/archcheck/internal/codemodel"
)

// MethodHasAnnotationWithAnyValue matches functions that carry an
// annotation of annotationType whose attribute contains any of values.
//
// With no values the predicate matches when the annotation is present at
// all. Attribute values may be a string, []string, []any or
// iter.Seq[string]; non-string elements are ignored.
func MethodHasAnnotationWithAnyValue(annotationType codemodel.AnnotationType, attribute string, values ...string) arch.Predicate[*codemodel.Func] {
	wanted := make(map[string]struct{}, len(values))
	for _, v := range values {
		wanted[v] = struct{}{}
	}
	desc := fmt.Sprintf("@%s(%s contains any of %s) on method",
		annotationType.SimpleName(), attribute, strings.Join(values, ", "))

	return arch.NewPredicate(desc, func(f *codemodel.Func) bool {
		if f == nil {
			return false
		}
		return hasMatching(f, annotationType, attribute, wanted)
	})
}

// MethodIsSuppressing matches functions whose //nolint directive names any
// of the given linters.
func MethodIsSuppressing(values ...string) arch.Predicate[*codemodel.Func] {
	return MethodHasAnnotationWithAnyValue(codemodel.Nolint, codemodel.ValueAttribute, values...)
}

// TypeHasAnnotationWithAnyValue is the type counterpart of
// MethodHasAnnotationWithAnyValue.
func TypeHasAnnotationWithAnyValue(annotationType codemodel.AnnotationType, attribute string, values ...string) arch.Predicate[*codemodel.Type] {
	wanted := make(map[string]struct{}, len(values))
	for _, v := range values {
		wanted[v] = struct{}{}
	}
	desc := fmt.Sprintf("@%s(%s contains any of %s) on type",
		annotationType.SimpleName(), attribute, strings.Join(values, ", "))

	return arch.NewPredicate(desc, func(t *codemodel.Type) bool {
		if t == nil {
			return false
		}
		return hasMatching(t, annotationType, attribute, wanted)
	})
}

func hasMatching(el codemodel.Annotated, annotationType codemodel.AnnotationType, attribute string, wanted map[string]struct{}) bool {
	for _, a := range codemodel.AnnotationsOf(el, annotationType) {
		if len(wanted) == 0 {
			return true
		}
		value, ok := a.Attribute(attribute)
		if !ok {
			continue
		}
		if AnyValueMatches(value, wanted) {
			return true
		}
	}
	return false
}

// AnyValueMatches reports whether value, or any string element of it, is in
// wanted.
func AnyValueMatches(value any, wanted map[string]struct{}) bool {
	match := func(s string) bool {
		_, ok := wanted[s]
		return ok
	}

	switch v := value.(type) {
	case string:
		return match(v)
	case []string:
		for _, s := range v {
			if match(s) {
				return true
			}
		}
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok && match(s) {
				return true
			}
		}
	case iter.Seq[string]:
		for s := range v {
			if match(s) {
				return true
			}
		}
	case func(func(string) bool):
		return AnyValueMatches(iter.Seq[string](v), wanted)
	}
	return false
}
