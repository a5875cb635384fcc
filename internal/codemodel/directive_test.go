package codemodel

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commentGroup(lines ...string) *ast.CommentGroup {
	cg := &ast.CommentGroup{}
	for _, l := range lines {
		cg.List = append(cg.List, &ast.Comment{Text: l})
	}
	return cg
}

func TestParseDirectives_Nil(t *testing.T) {
	assert.Empty(t, ParseDirectives(nil))
}

func TestParseDirectives_Nolint(t *testing.T) {
	anns := ParseDirectives(commentGroup("//nolint:unused, errcheck // kept for reflection"))
	require.Len(t, anns, 1)
	assert.Equal(t, Nolint, anns[0].Type)

	v, ok := anns[0].Attribute(ValueAttribute)
	require.True(t, ok)
	assert.Equal(t, []string{"unused"}, v, "list ends at the first blank")
}

func TestParseDirectives_NolintList(t *testing.T) {
	anns := ParseDirectives(commentGroup("//nolint:unused,errcheck"))
	require.Len(t, anns, 1)
	v, _ := anns[0].Attribute(ValueAttribute)
	assert.Equal(t, []string{"unused", "errcheck"}, v)
}

func TestParseDirectives_BareNolint(t *testing.T) {
	anns := ParseDirectives(commentGroup("//nolint"))
	require.Len(t, anns, 1)
	assert.Equal(t, Nolint, anns[0].Type)
	v, _ := anns[0].Attribute(ValueAttribute)
	assert.Empty(t, v)
}

func TestParseDirectives_NotADirective(t *testing.T) {
	anns := ParseDirectives(commentGroup(
		"// Service does things.",
		"//nolintish",
		"/* block */",
		"// nolint:unused",
	))
	assert.Empty(t, anns)
}

func TestParseDirectives_LintIgnore(t *testing.T) {
	anns := ParseDirectives(commentGroup("//lint:ignore SA1019,SA4006 legacy API kept"))
	require.Len(t, anns, 1)
	assert.Equal(t, LintIgnore, anns[0].Type)

	v, _ := anns[0].Attribute(ValueAttribute)
	assert.Equal(t, []string{"SA1019", "SA4006"}, v)
	reason, _ := anns[0].Attribute("reason")
	assert.Equal(t, "legacy API kept", reason)
}

func TestParseDirectives_GenericWithAttributes(t *testing.T) {
	anns := ParseDirectives(commentGroup("//arch:layer name=domain strict"))
	require.Len(t, anns, 1)
	assert.Equal(t, AnnotationType("arch:layer"), anns[0].Type)
	assert.Equal(t, "layer", anns[0].Type.SimpleName())

	name, _ := anns[0].Attribute("name")
	assert.Equal(t, "domain", name)
	v, _ := anns[0].Attribute(ValueAttribute)
	assert.Equal(t, []string{"strict"}, v)
}

func TestParseDirectives_AllowPanic(t *testing.T) {
	anns := ParseDirectives(commentGroup("// mustParse panics on bad input.", "//arch:allow-panic"))
	require.Len(t, anns, 1)
	assert.Equal(t, AllowPanic, anns[0].Type)
}

func TestParseDirectives_Deprecated(t *testing.T) {
	anns := ParseDirectives(commentGroup(
		"// Old is the previous entry point.",
		"//",
		"// Deprecated: use New",
		"// instead.",
	))
	require.Len(t, anns, 1)
	assert.Equal(t, Deprecated, anns[0].Type)
	v, _ := anns[0].Attribute(ValueAttribute)
	assert.Equal(t, "use New instead.", v)
}

func TestParseDirectives_NFC(t *testing.T) {
	// "e" followed by a combining acute accent composes to "é".
	anns := ParseDirectives(commentGroup("//arch:owner team=cafe\u0301"))
	require.Len(t, anns, 1)
	team, _ := anns[0].Attribute("team")
	assert.Equal(t, "caf\u00e9", team)
}

func TestAnnotationType_SimpleName(t *testing.T) {
	assert.Equal(t, "nolint", Nolint.SimpleName())
	assert.Equal(t, "ignore", LintIgnore.SimpleName())
	assert.Equal(t, "allow-panic", AllowPanic.SimpleName())
}

func TestAnnotation_AttributeMissing(t *testing.T) {
	_, ok := Annotation{Type: Nolint}.Attribute(ValueAttribute)
	assert.False(t, ok)
}
