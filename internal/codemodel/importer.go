package codemodel

import (
	"context"
	"fmt"
	"strings"
)

// ImportOptions controls which packages an import includes.
type ImportOptions struct {
	// ExcludeTests drops _test.go files and external test packages.
	ExcludeTests bool

	// ExcludeArchives drops packages outside the main module
	// (module cache, GOROOT and vendored dependencies).
	ExcludeArchives bool

	// ExcludePackages lists doublestar globs over import paths
	// (e.g. "**/mocks/**") whose packages are dropped.
	ExcludePackages []string
}

// Importer produces code models.
//
// Implementations must be idempotent and must return an error instead of a
// partial model when any root cannot be resolved.
type Importer interface {
	Import(ctx context.Context, roots []string, opts ImportOptions) (*Model, error)
}

// ImportErrorCode categorizes import failures.
type ImportErrorCode string

const (
	// ErrCodeNoRoots indicates that no package root was given.
	ErrCodeNoRoots ImportErrorCode = "NO_ROOTS"

	// ErrCodeLoadFailed indicates that the package loader itself failed.
	ErrCodeLoadFailed ImportErrorCode = "LOAD_FAILED"

	// ErrCodeUnresolvedRoot indicates a root that matched no packages.
	ErrCodeUnresolvedRoot ImportErrorCode = "UNRESOLVED_ROOT"

	// ErrCodePackageErrors indicates packages that failed to parse or type-check.
	ErrCodePackageErrors ImportErrorCode = "PACKAGE_ERRORS"

	// ErrCodeInvalidPattern indicates a malformed exclusion glob.
	ErrCodeInvalidPattern ImportErrorCode = "INVALID_PATTERN"
)

// ImportError describes why a model could not be imported.
type ImportError struct {
	Code    ImportErrorCode
	Roots   []string
	Message string
	Details []string
	Err     error
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if len(e.Roots) > 0 {
		fmt.Fprintf(&b, " (roots=%s)", strings.Join(e.Roots, ","))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	for _, d := range e.Details {
		b.WriteString("\n  ")
		b.WriteString(d)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ImportError) Unwrap() error { return e.Err }

// normalizeRoots trims whitespace, trailing "/..." and duplicates.
func normalizeRoots(roots []string) []string {
	seen := make(map[string]bool, len(roots))
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		r = strings.TrimSuffix(strings.TrimSpace(r), "/...")
		r = strings.TrimSuffix(r, "/")
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
