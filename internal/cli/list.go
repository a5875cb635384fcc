package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/archcheck/internal/harness"
)

// ListedCheck is one entry of the list command output.
type ListedCheck struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List the named checks without evaluating them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, &flags, scanDir(args), cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.bind(cmd)

	return cmd
}

func runList(opts *RootOptions, flags *scanFlags, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	filter := harness.RunOptions{Filter: flags.Filter}
	if err := filter.Validate(); err != nil {
		return formatter.CommandError("invalid filter", err)
	}

	h, err := flags.harness(opts, dir, opts.newLogger(cmd.ErrOrStderr()))
	if err != nil {
		return formatter.CommandError("invalid configuration", err)
	}
	seq, err := h.Checks(cmd.Context())
	if err != nil {
		return formatter.CommandError("discovery failed", err)
	}

	checks := []ListedCheck{}
	for nc := range seq {
		if filter.Matches(nc) {
			checks = append(checks, ListedCheck{Name: nc.Name, Provider: nc.Provider})
		}
	}

	if formatter.JSON() {
		return formatter.Success(checks)
	}
	for _, c := range checks {
		fmt.Fprintln(formatter.Writer, c.Name)
	}
	formatter.VerboseLog("%d checks", len(checks))
	return nil
}
