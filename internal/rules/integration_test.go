package rules

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/archcheck/internal/codemodel"
)

// TestDependencyRules_LoadedModule evaluates the dependency rules against
// the module under codemodel/testdata.
func TestDependencyRules_LoadedModule(t *testing.T) {
	if testing.Short() {
		t.Skip("go/packages loading skipped in short mode")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}
	dir, err := filepath.Abs(filepath.Join("..", "codemodel", "testdata", "mod"))
	require.NoError(t, err)

	imp := codemodel.NewPackagesImporter(dir, nil)
	imp.Env = append(os.Environ(), "GOWORK=off", "GOFLAGS=-mod=mod")

	m, err := imp.Import(context.Background(), []string{"example.com/mod"}, codemodel.ImportOptions{
		ExcludeTests:    true,
		ExcludeArchives: true,
	})
	require.NoError(t, err)

	deps := NoDeprecatedDependencies().Evaluate(m)
	require.Len(t, deps.Violations, 1)
	assert.Equal(t, "example.com/mod/app.Service.Run depends on example.com/mod/app/legacy.Old", deps.Violations[0].Message)

	panics := NoUnapprovedPanics().Evaluate(m)
	require.Len(t, panics.Violations, 1)
	assert.Equal(t, "example.com/mod/app.helper", panics.Violations[0].Element)

	assert.True(t, SlicesFreeOfCycles().Evaluate(m).Passed())
}
