package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/archcheck/internal/codemodel"
)

func TestDeterministicClock(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewDeterministicClock(base, time.Millisecond)

	assert.Equal(t, base, c.Now())
	assert.Equal(t, base.Add(time.Millisecond), c.Now())
	assert.Equal(t, int64(2), c.Calls())

	c.Reset()
	assert.Equal(t, base, c.Now())
}

func TestDeterministicClock_Concurrent(t *testing.T) {
	c := NewDeterministicClock(time.Unix(0, 0), time.Second)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Now()
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), c.Calls())
}

func TestSequentialIDs(t *testing.T) {
	g := NewSequentialIDs("")
	assert.Equal(t, "run-0001", g.Generate())
	assert.Equal(t, "run-0002", g.Generate())

	assert.Equal(t, "x-0001", NewSequentialIDs("x").Generate())
}

func TestStaticImporter(t *testing.T) {
	imp := NewStaticImporter(
		&codemodel.Package{Path: "com.example/app"},
		&codemodel.Package{Path: "com.example/app_test", Test: true},
		&codemodel.Package{Path: "com.other/lib"},
	)
	ctx := context.Background()

	m, err := imp.Import(ctx, []string{"com.example"}, codemodel.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example/app", "com.example/app_test"}, m.Members())

	m, err = imp.Import(ctx, []string{"com.example"}, codemodel.ImportOptions{ExcludeTests: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example/app"}, m.Members())

	_, err = imp.Import(ctx, []string{"com.missing"}, codemodel.ImportOptions{})
	var ie *codemodel.ImportError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, codemodel.ErrCodeUnresolvedRoot, ie.Code)

	calls := imp.Calls()
	require.Len(t, calls, 3)
	assert.True(t, calls[1].Opts.ExcludeTests)
}

func TestStaticImporter_Err(t *testing.T) {
	boom := errors.New("boom")
	imp := &StaticImporter{Err: boom}

	_, err := imp.Import(context.Background(), []string{"a"}, codemodel.ImportOptions{})
	assert.ErrorIs(t, err, boom)
}
