// Command archcheck evaluates architecture rules against Go packages.
package main

import (
	"os"

	"github.com/roach88/archcheck/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
