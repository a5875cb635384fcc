package cli

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/archcheck/internal/config"
	"github.com/roach88/archcheck/internal/harness"
	"github.com/roach88/archcheck/internal/rules"
)

// scanFlags are the flags shared by commands that build a harness.
type scanFlags struct {
	Packages []string
	Exclude  []string
	Filter   []string
	Builtin  bool
}

func (s *scanFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVarP(&s.Packages, "packages", "p", nil, "package roots to scan (default: settings, $"+config.EnvScanPackages+", then the module path)")
	f.StringSliceVar(&s.Exclude, "exclude", nil, "doublestar globs over import paths to leave out")
	f.StringSliceVar(&s.Filter, "filter", nil, "keep checks whose provider matches a glob or whose name contains the text")
	f.BoolVar(&s.Builtin, "builtin", true, "also apply the built-in rule sets")
}

// harness builds a harness scanning dir.
func (s *scanFlags) harness(root *RootOptions, dir string, logger *slog.Logger) (*harness.Harness, error) {
	opts := []harness.Option{
		harness.WithDir(dir),
		harness.WithLogger(logger),
		harness.WithExcludePackages(s.Exclude...),
	}
	if len(s.Packages) > 0 {
		opts = append(opts, harness.WithRoots(s.Packages...))
	}
	if mod, err := config.ModuleRoot(dir); err == nil {
		opts = append(opts, harness.WithDefaultRoot(mod))
	} else {
		logger.Debug("no module path found", "dir", dir, "error", err)
	}
	if root.ConfigFile != "" {
		opts = append(opts, harness.WithConfigFile(root.ConfigFile))
	}
	if root.Importer != nil {
		opts = append(opts, harness.WithImporter(root.Importer))
	}
	if root.Registry != nil {
		opts = append(opts, harness.WithRegistry(root.Registry))
	}
	if s.Builtin {
		opts = append(opts, harness.WithProviders(rules.Builtin()...))
	}
	return harness.New(opts...)
}

// scanDir returns the directory argument, defaulting to ".".
func scanDir(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return filepath.Clean(args[0])
}
