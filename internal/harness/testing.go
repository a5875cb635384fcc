package harness

import (
	"testing"
)

// RunTests runs every discovered check as a subtest of t.
//
// A configuration error fails t before any check runs. Each subtest fails
// with the check's violations; failures never stop sibling subtests.
func RunTests(t *testing.T, opts ...Option) {
	t.Helper()

	h, err := New(opts...)
	if err != nil {
		t.Fatalf("archcheck configuration: %v", err)
	}
	seq, err := h.Checks(t.Context())
	if err != nil {
		t.Fatalf("archcheck configuration: %v", err)
	}

	n := 0
	for nc := range seq {
		n++
		t.Run(nc.Name, func(t *testing.T) {
			if err := nc.Evaluate(); err != nil {
				t.Error(err.Error())
			}
		})
	}
	if n == 0 {
		t.Logf("no rule sets discovered under %v", h.Roots())
	}
}
