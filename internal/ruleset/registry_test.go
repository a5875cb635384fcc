package ruleset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/archcheck/internal/arch"
	"github.com/roach88/archcheck/internal/codemodel"
)

const pkg = "github.com/roach88/archcheck/internal/ruleset"

type alwaysPass struct{}

func (alwaysPass) Description() string { return "always passes" }
func (alwaysPass) Evaluate(*codemodel.Model) arch.Result {
	return arch.Result{Description: "always passes"}
}

type layeringRules struct{ Set }

func (layeringRules) All() []arch.Check { return []arch.Check{alwaysPass{}, alwaysPass{}} }

type namingRules struct {
	Set
	checks int
}

func (n *namingRules) All() []arch.Check { return make([]arch.Check, n.checks) }

type baseRules struct{}

func (baseRules) All() []arch.Check { return []arch.Check{alwaysPass{}} }

func TestSetMarksRuleSet(t *testing.T) {
	var _ RuleSet = layeringRules{}
	var _ RuleSet = (*namingRules)(nil)

	var r Rule = baseRules{}
	_, isSet := r.(RuleSet)
	assert.False(t, isSet, "a provider without Set is only a Rule")
}

func TestProvide_Metadata(t *testing.T) {
	e := Provide(func() (*namingRules, error) { return &namingRules{checks: 2}, nil })

	assert.Equal(t, pkg, e.PkgPath)
	assert.Equal(t, "namingRules", e.TypeName)
	assert.Equal(t, pkg+".namingRules", e.Name())

	rs, err := e.New()
	require.NoError(t, err)
	assert.Len(t, rs.All(), 2)
}

func TestProvide_NilFactory(t *testing.T) {
	e := Provide[layeringRules](nil)
	assert.Nil(t, e.New)
	assert.Equal(t, "layeringRules", e.TypeName)
}

func TestProvide_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	e := Provide(func() (*namingRules, error) { return nil, boom })

	rs, err := e.New()
	assert.Nil(t, rs)
	assert.ErrorIs(t, err, boom)
}

func TestProvide_TypedNilBecomesNil(t *testing.T) {
	e := Provide(func() (*namingRules, error) { return nil, nil })

	rs, err := e.New()
	require.NoError(t, err)
	assert.Nil(t, rs, "typed nil pointers must not surface as a non-nil RuleSet")
}

func TestStateless(t *testing.T) {
	e := Stateless(layeringRules{})
	a, err := e.New()
	require.NoError(t, err)
	b, err := e.New()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a.All(), 2)
}

func TestRegistry_EntriesSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(
		Provide(func() (*namingRules, error) { return &namingRules{}, nil }),
		Stateless(layeringRules{}),
	))

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "layeringRules", entries[0].TypeName)
	assert.Equal(t, "namingRules", entries[1].TypeName)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Stateless(layeringRules{})))

	err := r.Register(Stateless(layeringRules{}))
	assert.ErrorIs(t, err, ErrDuplicate)

	err = NewRegistry().Register(Stateless(layeringRules{}), Stateless(layeringRules{}))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRegistry_RegisterIsAtomic(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Stateless(layeringRules{})))

	err := r.Register(
		Provide(func() (*namingRules, error) { return &namingRules{}, nil }),
		Stateless(layeringRules{}),
	)
	require.Error(t, err)
	assert.Equal(t, 1, r.Len(), "a failed batch must not add any entry")
}

func TestRegistry_RejectsAnonymous(t *testing.T) {
	err := NewRegistry().Register(Entry{PkgPath: pkg})
	assert.ErrorIs(t, err, ErrAnonymous)
}

func TestProvide_InterfaceTypeIsAnonymous(t *testing.T) {
	e := Provide(func() (RuleSet, error) { return layeringRules{}, nil })
	assert.Empty(t, e.TypeName)
	assert.Empty(t, e.PkgPath)

	err := NewRegistry().Register(e)
	assert.ErrorIs(t, err, ErrAnonymous)
}

func TestConcat(t *testing.T) {
	checks := Concat(baseRules{}, layeringRules{})
	assert.Len(t, checks, 3)
}
