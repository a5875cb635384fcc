package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/archcheck/internal/harness"
	"github.com/roach88/archcheck/internal/metrics"
	"github.com/roach88/archcheck/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	scanFlags

	Jobs        int
	Record      string
	MetricsFile string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Evaluate every discovered architecture rule",
		Long: `Discover the rule sets registered under the package roots and evaluate each
of their rules against the non-test packages of the main module.

Every failing rule is reported; one failure never stops the others.

Example:
  archcheck run
  archcheck run --packages github.com/acme/shop ./shop
  archcheck run --filter 'Naming*' --record ./archcheck.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChecks(cmd.Context(), opts, scanDir(args), cmd)
		},
	}

	opts.bind(cmd)
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "checks evaluated in parallel (default GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.Record, "record", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")

	return cmd
}

func runChecks(ctx context.Context, opts *RunOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.newLogger(cmd.ErrOrStderr())

	h, err := opts.harness(opts.RootOptions, dir, logger)
	if err != nil {
		return formatter.CommandError("invalid configuration", err)
	}
	formatter.VerboseLog("Scanning %v in %s", h.Roots(), dir)

	result, err := h.Run(ctx, harness.RunOptions{Filter: opts.Filter, Jobs: opts.Jobs})
	if err != nil {
		return formatter.CommandError("run failed", err)
	}

	if opts.Record != "" {
		id, err := recordRun(ctx, opts.Record, result, logger)
		if err != nil {
			return formatter.CommandError("cannot record run", err)
		}
		formatter.VerboseLog("Recorded run %s in %s", id, opts.Record)
	}
	if opts.MetricsFile != "" {
		rec := metrics.New()
		rec.Record(result)
		if err := rec.WriteTextfile(opts.MetricsFile); err != nil {
			return formatter.CommandError("cannot write metrics", err)
		}
	}

	if err := writeResult(formatter, result); err != nil {
		return WrapExitError(ExitCommandError, "cannot write report", err)
	}
	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d checks failed", result.Failed(), len(result.Checks)))
	}
	return nil
}

func writeResult(f *OutputFormatter, result *harness.Result) error {
	if !f.JSON() {
		return harness.WriteText(f.Writer, result)
	}

	resp := CLIResponse{Status: "ok", Data: result}
	if !result.Pass {
		resp.Status = "error"
		resp.Error = &CLIError{
			Code:    "CHECKS_FAILED",
			Message: fmt.Sprintf("%d of %d checks failed", result.Failed(), len(result.Checks)),
		}
	}
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// recordRun stores the result and returns the run ID.
func recordRun(ctx context.Context, path string, result *harness.Result, logger *slog.Logger) (string, error) {
	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	return st.RecordRun(ctx, toStoreRun(result))
}

func toStoreRun(result *harness.Result) store.Run {
	run := store.Run{
		Started:  result.Started,
		Duration: result.Duration,
		Roots:    result.Roots,
		Pass:     result.Pass,
		Checks:   make([]store.CheckRecord, 0, len(result.Checks)),
	}
	for _, c := range result.Checks {
		violations := make([]string, len(c.Violations))
		for i, v := range c.Violations {
			violations[i] = v.String()
		}
		run.Checks = append(run.Checks, store.CheckRecord{
			Name:       c.Name,
			Provider:   c.Provider,
			Pass:       c.Pass,
			Error:      c.Error,
			Violations: violations,
			Duration:   c.Duration,
		})
	}
	return run
}
