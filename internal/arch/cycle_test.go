package arch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/archcheck/internal/codemodel"
)

func importModel(roots []string, imports map[string][]string) *codemodel.Model {
	var pkgs []*codemodel.Package
	for path, imps := range imports {
		pkgs = append(pkgs, &codemodel.Package{Path: path, Imports: imps})
	}
	return codemodel.New(roots, pkgs...)
}

// TestSlicesFreeOfCycles_DAG tests that acyclic slices produce no violations.
func TestSlicesFreeOfCycles_DAG(t *testing.T) {
	m := importModel([]string{"com.example"}, map[string][]string{
		"com.example/api":        {"com.example/core", "fmt"},
		"com.example/core":       {"com.example/core/model"},
		"com.example/core/model": nil,
	})

	res := SlicesFreeOfCycles().Evaluate(m)
	assert.True(t, res.Passed())
}

// TestSlicesFreeOfCycles_TwoSlices tests detection of a two-slice cycle.
func TestSlicesFreeOfCycles_TwoSlices(t *testing.T) {
	m := importModel([]string{"com.example"}, map[string][]string{
		"com.example/billing/invoice": {"com.example/orders"},
		"com.example/orders":          {"com.example/billing"},
		"com.example/billing":         nil,
	})

	res := SlicesFreeOfCycles().Evaluate(m)
	require.Len(t, res.Violations, 1)

	v := res.Violations[0]
	assert.Equal(t, "com.example/billing -> com.example/orders -> com.example/billing", v.Element)
	assert.Contains(t, v.Message, "com.example/billing/invoice imports com.example/orders")
	assert.Contains(t, v.Message, "com.example/orders imports com.example/billing")
}

// TestSlicesFreeOfCycles_ThreeSlices tests a cycle through three slices.
func TestSlicesFreeOfCycles_ThreeSlices(t *testing.T) {
	m := importModel([]string{"com.example"}, map[string][]string{
		"com.example/a": {"com.example/b"},
		"com.example/b": {"com.example/c"},
		"com.example/c": {"com.example/a"},
	})

	res := SlicesFreeOfCycles().Evaluate(m)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "com.example/a -> com.example/b -> com.example/c -> com.example/a", res.Violations[0].Element)
}

// TestSlicesFreeOfCycles_IgnoresRootAndForeignPackages tests that the root
// package and packages outside the model do not form slices.
func TestSlicesFreeOfCycles_IgnoresRootAndForeignPackages(t *testing.T) {
	m := importModel([]string{"com.example"}, map[string][]string{
		"com.example":     {"com.example/a"},
		"com.example/a":   {"com.example", "org.other/b"},
		"com.example/a/x": {"com.example/a"},
	})

	res := SlicesFreeOfCycles().Evaluate(m)
	assert.True(t, res.Passed())
}

// TestSlicesFreeOfCycles_Deterministic tests that repeated evaluation
// reports identical violations.
func TestSlicesFreeOfCycles_Deterministic(t *testing.T) {
	m := importModel([]string{"com.example"}, map[string][]string{
		"com.example/a": {"com.example/b"},
		"com.example/b": {"com.example/a"},
		"com.example/c": {"com.example/d"},
		"com.example/d": {"com.example/c"},
	})

	first := SlicesFreeOfCycles().Evaluate(m)
	require.Len(t, first.Violations, 2)
	for range 10 {
		assert.Equal(t, first, SlicesFreeOfCycles().Evaluate(m))
	}
	assert.Equal(t, "com.example/a -> com.example/b -> com.example/a", first.Violations[0].Element)
	assert.Equal(t, "com.example/c -> com.example/d -> com.example/c", first.Violations[1].Element)
}

func TestSliceOf(t *testing.T) {
	roots := []string{"com.example", "org.acme/svc"}
	cases := map[string]string{
		"com.example":          "",
		"com.example/a":        "com.example/a",
		"com.example/a/b/c":    "com.example/a",
		"com.example/a_test":   "com.example/a",
		"org.acme/svc/http/mw": "org.acme/svc/http",
		"org.other/thing":      "",
		"com.examplefoo/a":     "",
	}
	for path, want := range cases {
		assert.Equal(t, want, sliceOf(path, roots), path)
	}
}

func TestTarjanSCC_SelfContained(t *testing.T) {
	graph := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"b"},
		"d": {},
	}
	sccs := tarjanSCC(graph)
	assert.Equal(t, [][]string{{"a"}, {"b", "c"}, {"d"}}, sccs)
}
