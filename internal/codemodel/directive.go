package codemodel

import (
	"go/ast"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// directivePattern matches "//ns:name args" comment directives.
var directivePattern = regexp.MustCompile(`^([a-z0-9]+:[a-z0-9][-a-z0-9_.]*)(?:\s+(.*))?$`)

// ParseDirectives extracts annotations from a doc comment.
//
// Directive text is NFC normalised so that attribute values compare equal
// regardless of the source encoding of composed characters.
func ParseDirectives(doc *ast.CommentGroup) []Annotation {
	if doc == nil {
		return nil
	}

	var out []Annotation
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, "//") {
			continue
		}
		if a, ok := parseDirective(norm.NFC.String(c.Text[2:])); ok {
			out = append(out, a)
		}
	}

	if notice, ok := deprecationNotice(doc.Text()); ok {
		out = append(out, Annotation{
			Type:       Deprecated,
			Attributes: map[string]any{ValueAttribute: norm.NFC.String(notice)},
		})
	}
	return out
}

// parseDirective parses the body of a single line comment.
func parseDirective(body string) (Annotation, bool) {
	if rest, ok := strings.CutPrefix(body, string(Nolint)); ok {
		return parseNolint(rest)
	}

	m := directivePattern.FindStringSubmatch(strings.TrimRight(body, " \t"))
	if m == nil {
		return Annotation{}, false
	}
	typ := AnnotationType(m[1])
	args := strings.Fields(m[2])
	attrs := make(map[string]any)

	switch typ {
	case LintIgnore, "lint:file-ignore":
		checks := []string{}
		if len(args) > 0 {
			checks = splitList(args[0])
			if len(args) > 1 {
				attrs["reason"] = strings.Join(args[1:], " ")
			}
		}
		attrs[ValueAttribute] = checks
	default:
		values := []string{}
		for _, arg := range args {
			if k, v, ok := strings.Cut(arg, "="); ok && k != "" {
				attrs[k] = v
				continue
			}
			values = append(values, arg)
		}
		attrs[ValueAttribute] = values
	}

	return Annotation{Type: typ, Attributes: attrs}, true
}

// parseNolint handles "//nolint", "//nolint:a,b" and "//nolint:a // why".
func parseNolint(rest string) (Annotation, bool) {
	linters := []string{}
	switch {
	case rest == "" || rest[0] == ' ' || rest[0] == '\t':
	case rest[0] == ':':
		list := rest[1:]
		if i := strings.IndexAny(list, " \t"); i >= 0 {
			list = list[:i]
		}
		linters = splitList(list)
	default:
		// "//nolintfoo" is not a directive.
		return Annotation{}, false
	}
	return Annotation{
		Type:       Nolint,
		Attributes: map[string]any{ValueAttribute: linters},
	}, true
}

// deprecationNotice finds the "Deprecated:" paragraph of a doc comment.
func deprecationNotice(text string) (string, bool) {
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if notice, ok := strings.CutPrefix(para, "Deprecated:"); ok {
			return strings.Join(strings.Fields(notice), " "), true
		}
	}
	return "", false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
