package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/archcheck/internal/codemodel"
)

// ImportCall records one call to StaticImporter.Import.
type ImportCall struct {
	Roots []string
	Opts  codemodel.ImportOptions
}

// StaticImporter is an in-memory codemodel.Importer for tests.
//
// Packages with Test set model test-only sources and are dropped when
// ExcludeTests is requested. Packages outside every root are dropped, and a
// root without packages fails with an UNRESOLVED_ROOT *codemodel.ImportError,
// like the real importer.
//
// Thread-safety: Safe for concurrent use.
type StaticImporter struct {
	// Packages are the loadable packages.
	Packages []*codemodel.Package

	// Err, when set, is returned by every Import.
	Err error

	mu    sync.Mutex
	calls []ImportCall
}

// NewStaticImporter creates an importer over pkgs.
func NewStaticImporter(pkgs ...*codemodel.Package) *StaticImporter {
	return &StaticImporter{Packages: pkgs}
}

// Import implements codemodel.Importer.
func (s *StaticImporter) Import(_ context.Context, roots []string, opts codemodel.ImportOptions) (*codemodel.Model, error) {
	s.mu.Lock()
	s.calls = append(s.calls, ImportCall{Roots: slices.Clone(roots), Opts: opts})
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	if len(roots) == 0 {
		return nil, &codemodel.ImportError{Code: codemodel.ErrCodeNoRoots, Message: "no package roots given"}
	}

	var selected []*codemodel.Package
	for _, root := range roots {
		root = strings.TrimSuffix(root, "/...")
		found := false
		for _, p := range s.Packages {
			if !codemodel.UnderRoot(p.Path, root) {
				continue
			}
			found = true
			if opts.ExcludeTests && p.Test {
				continue
			}
			if !slices.Contains(selected, p) {
				selected = append(selected, p)
			}
		}
		if !found {
			return nil, &codemodel.ImportError{
				Code:    codemodel.ErrCodeUnresolvedRoot,
				Roots:   []string{root},
				Message: "root matched no packages",
			}
		}
	}
	return codemodel.New(roots, selected...), nil
}

// Calls returns the recorded calls.
func (s *StaticImporter) Calls() []ImportCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}
