package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/archcheck/internal/testutil"
)

// createTestStore creates a new file-backed store with sequential run IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDs("run").Generate))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with one passing and one failing check.
func createTestRun(started time.Time) Run {
	return Run{
		Started:  started,
		Duration: 1500 * time.Millisecond,
		Roots:    []string{"github.com/acme/shop"},
		Pass:     false,
		Checks: []CheckRecord{
			{
				Name:     "[DependencyRules] slices should be free of cycles",
				Provider: "DependencyRules",
				Pass:     true,
				Duration: 20 * time.Millisecond,
			},
			{
				Name:       "[NamingConventions] no interfaces ending with Impl",
				Provider:   "NamingConventions",
				Pass:       false,
				Violations: []string{"Type <a.FooImpl>", "Type <b.BarImpl>"},
				Duration:   5 * time.Millisecond,
			},
		},
	}
}
