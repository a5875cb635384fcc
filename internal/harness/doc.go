// Package harness runs discovered architecture rules against a codebase and
// reports every check as its own test case.
//
// A run has two phases. Configuration reads the package roots once
// (explicit option, settings file, ARCHCHECK_SCAN_PACKAGES, then the
// default root) and discovers the registered rule sets declared under
// them. Execution imports the production code of the roots, with tests and
// third-party packages excluded, and evaluates each named check
// independently. Configuration errors abort before any check executes.
//
// Inside go test:
//
//	func TestArchitecture(t *testing.T) {
//	    harness.RunTests(t, harness.WithRoots("github.com/acme/shop"))
//	}
//
// Outside go test, Run evaluates the checks (optionally in parallel) and
// returns a Result for reporting:
//
//	h, err := harness.New(harness.WithDir("."))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := h.Run(ctx, harness.RunOptions{Jobs: 4})
//	if err == nil && !result.Pass {
//	    harness.WriteText(os.Stdout, result)
//	}
package harness
