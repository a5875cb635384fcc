package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/archcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	RunID    string
}

// HistoryEntry is one run in the history command output.
type HistoryEntry struct {
	ID         string        `json:"id"`
	Started    time.Time     `json:"started"`
	Duration   time.Duration `json:"duration_ns"`
	Roots      []string      `json:"roots"`
	Pass       bool          `json:"pass"`
	Checks     int           `json:"checks"`
	Failed     int           `json:"failed"`
	Violations int           `json:"violations"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history --db <path>",
		Short: "Show runs recorded with run --record",
		Long: `Show the most recent recorded runs, newest first, or the check results of
one run with --run.

Example:
  archcheck history --db ./archcheck.db
  archcheck history --db ./archcheck.db --run 0b6f...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of runs to show")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show the checks of this run")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.newLogger(cmd.ErrOrStderr())

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.CommandError("failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if opts.RunID != "" {
		run, err := st.ReadRun(cmd.Context(), opts.RunID)
		if err != nil {
			return formatter.CommandError("cannot read run", err)
		}
		return writeRun(formatter, run)
	}

	runs, err := st.RecentRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return formatter.CommandError("cannot read history", err)
	}

	entries := make([]HistoryEntry, len(runs))
	for i, r := range runs {
		entries[i] = HistoryEntry(r)
	}
	if formatter.JSON() {
		return formatter.Success(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No recorded runs")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tCHECKS\tFAILED\tVIOLATIONS\tDURATION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			e.ID, e.Started.Format(time.RFC3339), status(e.Pass), e.Checks, e.Failed, e.Violations, e.Duration)
	}
	return tw.Flush()
}

func writeRun(f *OutputFormatter, run store.Run) error {
	if f.JSON() {
		return f.Success(run)
	}
	fmt.Fprintf(f.Writer, "run %s %s (%s)\n", run.ID, status(run.Pass), run.Started.Format(time.RFC3339))
	for _, c := range run.Checks {
		fmt.Fprintf(f.Writer, "--- %s: %s\n", checkStatus(c), c.Name)
		if c.Error != "" {
			fmt.Fprintf(f.Writer, "    %s\n", c.Error)
		}
		for _, v := range c.Violations {
			fmt.Fprintf(f.Writer, "    %s\n", v)
		}
	}
	return nil
}

func status(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func checkStatus(c store.CheckRecord) string {
	if c.Error != "" {
		return "ERROR"
	}
	return status(c.Pass)
}
