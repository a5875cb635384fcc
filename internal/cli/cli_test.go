package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/archcheck/internal/arch"
	"github.com/roach88/archcheck/internal/codemodel"
	"github.com/roach88/archcheck/internal/config"
	"github.com/roach88/archcheck/internal/discovery"
	"github.com/roach88/archcheck/internal/ruleset"
	"github.com/roach88/archcheck/internal/testutil"
)

type layerRules struct{ ruleset.Set }

func (layerRules) All() []arch.Check {
	return []arch.Check{
		arch.NoTypes(arch.AreInterfaces(), arch.HaveNameEndingWith[*codemodel.Type]("Impl")),
		arch.NoFuncs(arch.Predicate[*codemodel.Func]{}, arch.CallPanic()),
	}
}

type cleanRules struct{ ruleset.Set }

func (cleanRules) All() []arch.Check {
	return []arch.Check{arch.NoFuncs(arch.Predicate[*codemodel.Func]{}, arch.CallPanic())}
}

func fixtureImporter() *testutil.StaticImporter {
	return testutil.NewStaticImporter(
		&codemodel.Package{
			Path: "com.example/app",
			Name: "app",
			Types: []*codemodel.Type{{
				Ref:  codemodel.Ref{Name: "ServiceImpl"},
				Kind: codemodel.KindInterface,
				Pos:  token.Position{Filename: "/src/app/app.go", Line: 12},
			}},
		},
		&codemodel.Package{Path: "com.example/rules", Name: "rules"},
	)
}

func entry(name string, rs ruleset.RuleSet) ruleset.Entry {
	return ruleset.Entry{
		PkgPath:  "com.example/rules",
		TypeName: name,
		New:      func() (ruleset.RuleSet, error) { return rs, nil },
	}
}

func testRoot(t *testing.T, entries ...ruleset.Entry) *RootOptions {
	t.Helper()
	reg := ruleset.NewRegistry()
	require.NoError(t, reg.Register(entries...))
	return &RootOptions{Importer: fixtureImporter(), Registry: reg}
}

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func scanArgs(t *testing.T, command string, extra ...string) []string {
	return append([]string{command, "--packages", "com.example", "--builtin=false", t.TempDir()}, extra...)
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(nil)
	require.NotNil(t, cmd)
	assert.Equal(t, "archcheck", cmd.Use)

	for _, name := range []string{"run", "list", "history"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(nil)

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand(nil)
	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	for _, name := range []string{"packages", "exclude", "filter", "jobs", "builtin", "record", "metrics-file"} {
		assert.NotNil(t, run.Flags().Lookup(name), name)
	}
	assert.Equal(t, "true", run.Flags().Lookup("builtin").DefValue)
}

func TestRun_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, testRoot(t), "--format", "xml", "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_Failing(t *testing.T) {
	opts := testRoot(t, entry("LayerRules", layerRules{}))

	stdout, _, err := execute(t, opts, scanArgs(t, "run")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 checks failed")

	assert.Contains(t, stdout, "archcheck: roots com.example")
	assert.Contains(t, stdout, "--- FAIL: [LayerRules] no types that are interfaces should have name ending with 'Impl' (1 violations)")
	assert.Contains(t, stdout, "Type <com.example/app.ServiceImpl> should not have name ending with 'Impl' in (app.go:12)")
	assert.Contains(t, stdout, "--- PASS: [LayerRules] no functions should call panic")
	assert.Contains(t, stdout, "FAIL: 2 checks, 1 failed, 1 violations")
}

func TestRun_Passing(t *testing.T) {
	opts := testRoot(t, entry("CleanRules", cleanRules{}))

	stdout, _, err := execute(t, opts, scanArgs(t, "run")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "PASS: 1 checks, 0 failed, 0 violations")
}

func TestRun_JSON(t *testing.T) {
	opts := testRoot(t, entry("LayerRules", layerRules{}))

	stdout, _, err := execute(t, opts, append([]string{"--format", "json"}, scanArgs(t, "run")...)...)
	require.Error(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Pass   bool `json:"pass"`
			Checks []struct {
				Name string `json:"name"`
				Pass bool   `json:"pass"`
			} `json:"checks"`
		} `json:"data"`
		Error *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Pass)
	assert.Len(t, resp.Data.Checks, 2)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CHECKS_FAILED", resp.Error.Code)
}

func TestRun_Filter(t *testing.T) {
	opts := testRoot(t, entry("LayerRules", layerRules{}), entry("CleanRules", cleanRules{}))

	stdout, _, err := execute(t, opts, scanArgs(t, "run", "--filter", "Clean*")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "[CleanRules]")
	assert.NotContains(t, stdout, "[LayerRules]")
}

func TestRun_ConfigurationError(t *testing.T) {
	opts := testRoot(t, ruleset.Entry{PkgPath: "com.example/rules", TypeName: "NoCtor"})

	stdout, stderr, err := execute(t, opts, scanArgs(t, "run")...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "Error [MISSING_CONSTRUCTOR]")
	assert.Empty(t, stdout, "no check ran")
}

func TestRun_SettingsFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "archcheck.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("scan_packages: [com.example]\n"), 0o644))

	opts := testRoot(t, entry("CleanRules", cleanRules{}))
	stdout, _, err := execute(t, opts, "--config", cfg, "run", "--builtin=false", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "archcheck: roots com.example")
}

func TestRun_RecordAndHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "archcheck.db")
	opts := testRoot(t, entry("LayerRules", layerRules{}))

	_, _, err := execute(t, opts, scanArgs(t, "run", "--record", db)...)
	require.Error(t, err)
	require.Equal(t, ExitFailure, GetExitCode(err))

	stdout, _, err := execute(t, opts, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "ID")
	assert.Contains(t, stdout, "FAIL")

	stdout, _, err = execute(t, opts, "--format", "json", "history", "--db", db)
	require.NoError(t, err)
	var resp struct {
		Data []HistoryEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data, 1)
	got := resp.Data[0]
	assert.False(t, got.Pass)
	assert.Equal(t, 2, got.Checks)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 1, got.Violations)
	assert.Equal(t, []string{"com.example"}, got.Roots)

	stdout, _, err = execute(t, opts, "history", "--db", db, "--run", got.ID)
	require.NoError(t, err)
	assert.Contains(t, stdout, "run "+got.ID+" FAIL")
	assert.Contains(t, stdout, "--- FAIL: [LayerRules] no types that are interfaces")
	assert.Contains(t, stdout, "should not have name ending with 'Impl' in (app.go:12)")
}

func TestHistory_UnknownRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "archcheck.db")

	_, stderr, err := execute(t, testRoot(t), "history", "--db", db, "--run", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "run not found")
}

func TestHistory_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "archcheck.db")

	stdout, _, err := execute(t, testRoot(t), "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No recorded runs")
}

func TestHistory_MissingDatabaseFlag(t *testing.T) {
	_, _, err := execute(t, testRoot(t), "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_MetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archcheck.prom")
	opts := testRoot(t, entry("LayerRules", layerRules{}))

	_, _, err := execute(t, opts, scanArgs(t, "run", "--metrics-file", path)...)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `archcheck_checks_total{outcome="fail",provider="LayerRules"} 1`)
	assert.Contains(t, string(data), `archcheck_checks_total{outcome="pass",provider="LayerRules"} 1`)
}

func TestList(t *testing.T) {
	opts := testRoot(t, entry("LayerRules", layerRules{}), entry("CleanRules", cleanRules{}))

	stdout, _, err := execute(t, opts, scanArgs(t, "list")...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, []string{
		"[CleanRules] no functions should call panic",
		"[LayerRules] no types that are interfaces should have name ending with 'Impl'",
		"[LayerRules] no functions should call panic",
	}, lines)
}

func TestList_JSONWithFilter(t *testing.T) {
	opts := testRoot(t, entry("LayerRules", layerRules{}), entry("CleanRules", cleanRules{}))

	stdout, _, err := execute(t, opts, append([]string{"--format", "json"}, scanArgs(t, "list", "--filter", "ending with")...)...)
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []ListedCheck `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "LayerRules", resp.Data[0].Provider)
}

func TestList_Builtin(t *testing.T) {
	opts := testRoot(t)

	stdout, _, err := execute(t, opts, "list", "--packages", "com.example", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "[DependencyRules]")
	assert.Contains(t, stdout, "[NamingConventions]")
}

func TestExecute_ExitCodes(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := Execute([]string{"--format", "xml", "list"}, stdout, stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "archcheck: invalid format")

	code = Execute([]string{"--help"}, stdout, stderr)
	assert.Equal(t, ExitSuccess, code)
}

func TestRun_UnresolvedRootCode(t *testing.T) {
	opts := testRoot(t, entry("CleanRules", cleanRules{}))

	stdout, _, err := execute(t, opts, "--format", "json", "run", "--packages", "com.missing", "--builtin=false", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNRESOLVED_ROOT", resp.Error.Code)
}

func TestErrorCode(t *testing.T) {
	imp := &codemodel.ImportError{Code: codemodel.ErrCodeUnresolvedRoot, Message: "root matched no packages"}
	wrapped := &discovery.ConfigError{Code: discovery.ErrCodeImportFailed, Message: "cannot import", Err: imp}

	assert.Equal(t, "UNRESOLVED_ROOT", ErrorCode(wrapped))
	assert.Equal(t, "MISSING_CONSTRUCTOR", ErrorCode(&discovery.ConfigError{Code: discovery.ErrCodeMissingConstructor}))
	assert.Equal(t, "NOT_FOUND", ErrorCode(fmt.Errorf("settings: %w", &config.LoadError{Code: config.ErrCodeNotFound})))
	assert.Equal(t, "COMMAND_ERROR", ErrorCode(errors.New("boom")))
}

func TestList_InvalidFilter(t *testing.T) {
	opts := testRoot(t, entry("LayerRules", layerRules{}))

	stdout, stderr, err := execute(t, opts, scanArgs(t, "list", "--filter", "[bad")...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, `invalid filter pattern "[bad"`)
	assert.Empty(t, stdout)
}
