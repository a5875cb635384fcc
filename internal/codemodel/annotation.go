package codemodel

import "strings"

// AnnotationType names a directive, e.g. "nolint" or "lint:ignore".
type AnnotationType string

// Well-known annotation types.
const (
	// Nolint is the golangci-lint suppression directive.
	Nolint AnnotationType = "nolint"

	// LintIgnore is the staticcheck suppression directive.
	LintIgnore AnnotationType = "lint:ignore"

	// Deprecated marks declarations carrying a "Deprecated:" paragraph.
	Deprecated AnnotationType = "Deprecated"

	// AllowPanic permits a function to call panic.
	AllowPanic AnnotationType = "arch:allow-panic"
)

// ValueAttribute is the attribute carrying a directive's positional arguments.
const ValueAttribute = "value"

// SimpleName returns the directive name without its namespace.
func (t AnnotationType) SimpleName() string {
	s := string(t)
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Annotation is a directive attached to a declaration.
//
// Attribute values are a string, a []string, a []any or an iter.Seq[string].
type Annotation struct {
	Type       AnnotationType
	Attributes map[string]any
}

// Attribute returns the named attribute value.
func (a Annotation) Attribute(name string) (any, bool) {
	if a.Attributes == nil {
		return nil, false
	}
	v, ok := a.Attributes[name]
	return v, ok
}

// Annotated is implemented by model elements that carry annotations.
type Annotated interface {
	Annotations() []Annotation
}

// HasAnnotation reports whether el carries an annotation of type t.
func HasAnnotation(el Annotated, t AnnotationType) bool {
	for _, a := range el.Annotations() {
		if a.Type == t {
			return true
		}
	}
	return false
}

// AnnotationsOf returns the annotations of type t carried by el.
func AnnotationsOf(el Annotated, t AnnotationType) []Annotation {
	var out []Annotation
	for _, a := range el.Annotations() {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}
