package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/archcheck/internal/arch"
	"github.com/roach88/archcheck/internal/codemodel"
	"github.com/roach88/archcheck/internal/config"
	"github.com/roach88/archcheck/internal/discovery"
	"github.com/roach88/archcheck/internal/driver"
	"github.com/roach88/archcheck/internal/ruleset"
)

// Harness discovers and runs architecture rules.
//
// Thread Safety: Checks and Run may be called concurrently once New has
// returned.
type Harness struct {
	importer   codemodel.Importer
	registry   *ruleset.Registry
	logger     *slog.Logger
	now        func() time.Time
	dir        string
	configPath string
	roots      []string
	fallback   string
	exclude    []string
	extra      []discovery.Provider
}

// Option configures a Harness.
type Option func(*Harness)

// WithImporter sets the code model importer.
// The default is a go/packages importer running in the harness directory.
func WithImporter(imp codemodel.Importer) Option {
	return func(h *Harness) { h.importer = imp }
}

// WithRegistry sets the provider registry; the default is ruleset.Default().
func WithRegistry(r *ruleset.Registry) Option {
	return func(h *Harness) { h.registry = r }
}

// WithLogger sets the logger; the default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithRoots sets the package roots, overriding every other source.
func WithRoots(roots ...string) Option {
	return func(h *Harness) { h.roots = roots }
}

// WithDir sets the directory the go command runs in and where settings
// files are looked up.
func WithDir(dir string) Option {
	return func(h *Harness) { h.dir = dir }
}

// WithDefaultRoot sets the root used when no other source names one.
// The default is discovery.DefaultRoot.
func WithDefaultRoot(root string) Option {
	return func(h *Harness) { h.fallback = root }
}

// WithConfigFile loads settings from path instead of looking them up.
func WithConfigFile(path string) Option {
	return func(h *Harness) { h.configPath = path }
}

// WithExcludePackages adds doublestar globs over import paths to leave out.
func WithExcludePackages(globs ...string) Option {
	return func(h *Harness) { h.exclude = append(h.exclude, globs...) }
}

// WithProviders adds providers that apply regardless of discovery.
// Providers already discovered are not added twice.
func WithProviders(providers ...discovery.Provider) Option {
	return func(h *Harness) { h.extra = append(h.extra, providers...) }
}

// WithClock sets the time source used for durations.
func WithClock(now func() time.Time) Option {
	return func(h *Harness) { h.now = now }
}

// New creates a harness and resolves the package roots once.
//
// Roots come from WithRoots, then the settings file, then
// ARCHCHECK_SCAN_PACKAGES, then the default root.
func New(opts ...Option) (*Harness, error) {
	h := &Harness{now: time.Now, fallback: discovery.DefaultRoot()}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if h.registry == nil {
		h.registry = ruleset.Default()
	}

	cfg, err := h.loadConfig()
	if err != nil {
		return nil, err
	}
	if h.dir == "" && cfg.Dir != "" {
		h.dir = cfg.Dir
	}

	h.roots = config.Roots(h.roots, cfg.ScanPackages, config.FromEnv(), []string{h.fallback})
	h.exclude = append(h.exclude, cfg.ExcludePackages...)
	for _, glob := range h.exclude {
		if !doublestar.ValidatePattern(glob) {
			return nil, fmt.Errorf("invalid exclude pattern %q", glob)
		}
	}

	if h.importer == nil {
		h.importer = codemodel.NewPackagesImporter(h.dir, h.logger)
	}

	h.logger.Debug("harness configured",
		"roots", h.roots,
		"dir", h.dir,
		"exclude", h.exclude,
	)
	return h, nil
}

// loadConfig reads the explicit settings file, or the one found in dir.
// A settings file's relative dir is resolved against the file location.
func (h *Harness) loadConfig() (*config.Config, error) {
	path := h.configPath
	if path == "" {
		found, ok := config.Find(h.searchDir())
		if !ok {
			return &config.Config{}, nil
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Dir != "" && !filepath.IsAbs(cfg.Dir) {
		cfg.Dir = filepath.Join(filepath.Dir(path), cfg.Dir)
	}
	h.logger.Debug("settings loaded", "path", path)
	return cfg, nil
}

func (h *Harness) searchDir() string {
	if h.dir == "" {
		return "."
	}
	return h.dir
}

// Roots returns the resolved package roots.
func (h *Harness) Roots() []string { return slices.Clone(h.roots) }

// Checks discovers the providers and returns the lazy sequence of named
// checks bound to the evaluation model.
//
// Errors are configuration errors (*discovery.ConfigError); no check has
// run when one is returned.
func (h *Harness) Checks(ctx context.Context) (iter.Seq[driver.NamedCheck], error) {
	d := &discovery.Discoverer{
		Importer:        h.importer,
		Registry:        h.registry,
		ExcludePackages: h.exclude,
		Logger:          h.logger,
	}
	providers, err := d.Discover(ctx, h.roots)
	if err != nil {
		return nil, err
	}
	providers = h.withExtra(providers)

	model, err := h.importer.Import(ctx, h.roots, codemodel.ImportOptions{
		ExcludeTests:    true,
		ExcludeArchives: true,
		ExcludePackages: h.exclude,
	})
	if err != nil {
		return nil, &discovery.ConfigError{
			Code:    discovery.ErrCodeImportFailed,
			Message: "cannot import the evaluation model",
			Err:     err,
		}
	}

	h.logger.Info("checks ready",
		"providers", len(providers),
		"packages", len(model.Members()),
	)
	return driver.Checks(providers, model), nil
}

func (h *Harness) withExtra(providers []discovery.Provider) []discovery.Provider {
	for _, p := range h.extra {
		dup := slices.ContainsFunc(providers, func(q discovery.Provider) bool {
			return q.QualifiedName() == p.QualifiedName()
		})
		if !dup {
			providers = append(providers, p)
		}
	}
	return providers
}

// RunOptions controls evaluation.
type RunOptions struct {
	// Filter keeps checks whose provider name matches a doublestar glob
	// or whose name contains the text. Empty keeps every check.
	Filter []string

	// Jobs is the evaluation parallelism; zero or less means GOMAXPROCS.
	Jobs int
}

// Validate checks that every filter is a well-formed doublestar glob.
func (o RunOptions) Validate() error {
	for _, f := range o.Filter {
		if !doublestar.ValidatePattern(f) {
			return fmt.Errorf("invalid filter pattern %q", f)
		}
	}
	return nil
}

// Matches reports whether a check passes the filter.
func (o RunOptions) Matches(nc driver.NamedCheck) bool {
	if len(o.Filter) == 0 {
		return true
	}
	for _, f := range o.Filter {
		if ok, _ := doublestar.Match(f, nc.Provider); ok {
			return true
		}
		if strings.Contains(nc.Name, f) {
			return true
		}
	}
	return false
}

// Run evaluates every selected check and returns the results in check
// order. A failing check never stops the others; the error is non-nil only
// for configuration errors or a cancelled context.
func (h *Harness) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	seq, err := h.Checks(ctx)
	if err != nil {
		return nil, err
	}

	var checks []driver.NamedCheck
	for nc := range seq {
		if opts.Matches(nc) {
			checks = append(checks, nc)
		}
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	result := NewResult(h.Roots())
	result.Started = h.now()
	results := make([]CheckResult, len(checks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, nc := range checks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = h.evaluate(nc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	for _, r := range results {
		result.Add(r)
	}
	result.Duration = h.now().Sub(result.Started)

	h.logger.Info("run complete",
		"checks", len(result.Checks),
		"failed", result.Failed(),
		"violations", result.Violations(),
		"duration", result.Duration,
	)
	return result, nil
}

func (h *Harness) evaluate(nc driver.NamedCheck) CheckResult {
	start := h.now()
	res, err := nc.Result()
	cr := CheckResult{
		Name:       nc.Name,
		Provider:   nc.Provider,
		Pass:       err == nil && res.Passed(),
		Violations: res.Violations,
		Duration:   h.now().Sub(start),
	}
	if err != nil {
		cr.Error = err.Error()
		var pe *driver.PanicError
		if errors.As(err, &pe) {
			h.logger.Error("check panicked", "check", nc.Name, "panic", pe.Value)
		}
	}
	h.logger.Debug("check evaluated",
		"check", nc.Name,
		"pass", cr.Pass,
		"violations", len(cr.Violations),
	)
	return cr
}

// Failure converts a failed check result back into the error returned by
// the driver, for callers that report through the error interface.
func (c CheckResult) Failure() error {
	if c.Pass {
		return nil
	}
	if c.Error != "" {
		return errors.New(c.Error)
	}
	return &arch.FailureError{Description: strings.TrimPrefix(c.Name, "["+c.Provider+"] "), Violations: c.Violations}
}
