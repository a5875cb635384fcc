package harness

import (
	"fmt"
	"io"
	"strings"
)

// WriteText writes the human-readable report. It carries no timings, so
// the same result always renders identically.
func WriteText(w io.Writer, r *Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "archcheck: roots %s\n", strings.Join(r.Roots, ", "))

	for _, c := range r.Checks {
		switch {
		case c.Error != "":
			fmt.Fprintf(&b, "--- ERROR: %s\n", c.Name)
			writeIndented(&b, c.Error)
		case !c.Pass:
			fmt.Fprintf(&b, "--- FAIL: %s (%d violations)\n", c.Name, len(c.Violations))
			for _, v := range c.Violations {
				writeIndented(&b, v.String())
			}
		default:
			fmt.Fprintf(&b, "--- PASS: %s\n", c.Name)
		}
	}

	status := "PASS"
	if !r.Pass {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "%s: %d checks, %d failed, %d violations\n",
		status, len(r.Checks), r.Failed(), r.Violations())

	_, err := io.WriteString(w, b.String())
	return err
}

func writeIndented(b *strings.Builder, text string) {
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}
