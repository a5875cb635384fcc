// Package discovery finds the rule-set providers that belong to the scanned
// codebase and instantiates them.
//
// A registered provider is discovered when the package declaring its type
// is part of the code model imported from the package roots. The discovery
// model includes test sources, so providers declared in _test.go files of
// the scanned packages are found too.
package discovery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/roach88/archcheck/internal/codemodel"
	"github.com/roach88/archcheck/internal/ruleset"
)

// Provider is an instantiated rule set.
type Provider struct {
	// Name is the simple provider type name used to prefix check names.
	Name string

	// PkgPath is the import path of the package declaring the provider.
	PkgPath string

	// RuleSet is the provider instance.
	RuleSet ruleset.RuleSet
}

// QualifiedName returns "<pkgpath>.<Name>".
func (p Provider) QualifiedName() string { return p.PkgPath + "." + p.Name }

// DefaultRoot returns the package root used when none is configured: the
// first two elements of this package's own import path (the module's
// organisation, e.g. "github.com/roach88").
func DefaultRoot() string {
	path := reflect.TypeFor[Provider]().PkgPath()
	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 2 {
		return path
	}
	return parts[0] + "/" + parts[1]
}

// Discoverer finds providers in a registry.
type Discoverer struct {
	Importer codemodel.Importer
	Registry *ruleset.Registry

	// ExcludePackages is passed through to the importer.
	ExcludePackages []string

	// Logger receives discovery progress; nil discards it.
	Logger *slog.Logger
}

// Discover imports the roots (archives excluded, tests included) and
// instantiates every registered provider declared in the imported packages.
//
// An empty roots slice uses DefaultRoot. Providers are returned in registry
// order. Any failure returns a *ConfigError and no providers.
func (d *Discoverer) Discover(ctx context.Context, roots []string) ([]Provider, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.Importer == nil {
		return nil, &ConfigError{Code: ErrCodeNoImporter, Message: "no code model importer configured"}
	}
	registry := d.Registry
	if registry == nil {
		registry = ruleset.Default()
	}
	if len(roots) == 0 {
		roots = []string{DefaultRoot()}
	}

	model, err := d.Importer.Import(ctx, roots, codemodel.ImportOptions{
		ExcludeTests:    false,
		ExcludeArchives: true,
		ExcludePackages: d.ExcludePackages,
	})
	if err != nil {
		return nil, &ConfigError{
			Code:    ErrCodeImportFailed,
			Message: fmt.Sprintf("cannot import package roots %s", strings.Join(roots, ",")),
			Err:     err,
		}
	}

	var providers []Provider
	for _, entry := range registry.Entries() {
		if !model.Contains(entry.PkgPath) {
			continue
		}
		rs, err := instantiate(entry)
		if err != nil {
			return nil, err
		}
		providers = append(providers, Provider{
			Name:    entry.TypeName,
			PkgPath: entry.PkgPath,
			RuleSet: rs,
		})
		logger.Debug("provider discovered", "provider", entry.Name())
	}

	logger.Info("discovery complete",
		"roots", roots,
		"registered", registry.Len(),
		"discovered", len(providers),
	)
	return providers, nil
}

// Discover is a convenience wrapper around Discoverer.
func Discover(ctx context.Context, importer codemodel.Importer, registry *ruleset.Registry, roots []string) ([]Provider, error) {
	d := &Discoverer{Importer: importer, Registry: registry}
	return d.Discover(ctx, roots)
}

// instantiate calls the entry factory, converting panics into errors.
func instantiate(entry ruleset.Entry) (rs ruleset.RuleSet, err error) {
	if entry.New == nil {
		return nil, &ConfigError{
			Code:     ErrCodeMissingConstructor,
			Message:  "provider has no constructor",
			Provider: entry.Name(),
		}
	}

	defer func() {
		if r := recover(); r != nil {
			rs = nil
			err = &ConfigError{
				Code:     ErrCodeConstructorPanic,
				Message:  fmt.Sprintf("provider constructor panicked: %v", r),
				Provider: entry.Name(),
			}
		}
	}()

	rs, err = entry.New()
	if err != nil {
		return nil, &ConfigError{
			Code:     ErrCodeConstructorFailed,
			Message:  "provider constructor failed",
			Provider: entry.Name(),
			Err:      err,
		}
	}
	if rs == nil {
		return nil, &ConfigError{
			Code:     ErrCodeNilProvider,
			Message:  "provider constructor returned nil",
			Provider: entry.Name(),
		}
	}
	return rs, nil
}
