// Package config loads archcheck settings from files and the environment.
//
// Settings files are YAML (archcheck.yaml, archcheck.yml) or CUE
// (archcheck.cue). CUE files are unified with an embedded #Config schema,
// so unknown fields and wrong types are rejected the same way strict YAML
// decoding rejects them.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// EnvScanPackages overrides the package roots with a comma-separated list.
const EnvScanPackages = "ARCHCHECK_SCAN_PACKAGES"

// FileNames are the settings files looked up by Find, in order.
var FileNames = []string{"archcheck.yaml", "archcheck.yml", "archcheck.cue"}

//go:embed schema.cue
var schemaSource string

// Config holds file-based settings.
type Config struct {
	ScanPackages    []string `yaml:"scan_packages" json:"scan_packages,omitempty"`
	Dir             string   `yaml:"dir" json:"dir,omitempty"`
	ExcludePackages []string `yaml:"exclude_packages" json:"exclude_packages,omitempty"`
}

// Load reads a settings file. The format is chosen by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "cannot read settings file", Err: err}
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = decodeYAML(data)
	case ".cue":
		cfg, err = decodeCUE(path, data)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupportedFormat,
			Path:    path,
			Message: fmt.Sprintf("unsupported settings format %q", ext),
		}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: "cannot parse settings file", Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Path: path, Message: "invalid settings", Err: err}
	}
	return cfg, nil
}

func decodeYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil {
		// An empty document is an empty configuration.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func decodeCUE(path string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, err
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks roots and exclusion globs.
func (c *Config) Validate() error {
	for _, r := range c.ScanPackages {
		if strings.TrimSpace(r) == "" {
			return errors.New("scan_packages: empty package root")
		}
	}
	for _, glob := range c.ExcludePackages {
		if !doublestar.ValidatePattern(glob) {
			return fmt.Errorf("exclude_packages: invalid pattern %q", glob)
		}
	}
	return nil
}

// Find returns the first settings file present in dir.
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// FromEnv returns the package roots listed in ARCHCHECK_SCAN_PACKAGES.
func FromEnv() []string {
	value, ok := os.LookupEnv(EnvScanPackages)
	if !ok {
		return nil
	}
	return SplitList(value)
}

// SplitList splits a comma-separated list, dropping blank items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Roots returns the first non-empty source, in precedence order.
func Roots(sources ...[]string) []string {
	for _, s := range sources {
		if len(s) > 0 {
			return s
		}
	}
	return nil
}

// ModuleRoot returns the module path declared by dir/go.mod.
func ModuleRoot(dir string) (string, error) {
	path := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &LoadError{Code: ErrCodeNotFound, Path: path, Message: "cannot read go.mod", Err: err}
	}
	mod := modfile.ModulePath(data)
	if mod == "" {
		return "", &LoadError{Code: ErrCodeInvalid, Path: path, Message: "go.mod has no module directive"}
	}
	return mod, nil
}
