package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sondalab/sonda/internal/dimacs"
	"github.com/sondalab/sonda/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Instance string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long: `Show run history from the SQLite database.

With --instance, shows every run of a single formula in chronological
order. The instance may be given as a fingerprint or as a path to a
CNF file, which is fingerprinted on the fly.

Example:
  sonda history --db runs.db
  sonda history --db runs.db --limit 5
  sonda history --db runs.db --instance problem.cnf`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run history database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to show")
	cmd.Flags().StringVar(&opts.Instance, "instance", "", "show runs of one formula (fingerprint or CNF path)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

type runRow struct {
	ID          string `json:"id"`
	Instance    string `json:"instance"`
	Fingerprint string `json:"fingerprint"`
	Command     string `json:"command"`
	Result      string `json:"result"`
	Assigned    int    `json:"assigned"`
	Completed   bool   `json:"completed"`
	DurationMS  int64  `json:"duration_ms"`
	CreatedAt   string `json:"created_at"`
}

type historyReport struct {
	Runs []runRow `json:"runs"`
}

func (r *historyReport) String() string {
	if len(r.Runs) == 0 {
		return "No runs recorded."
	}
	var b strings.Builder
	for i, run := range r.Runs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %-5s  %-12s  %s  %d assigned  %dms",
			run.CreatedAt, run.Command, run.Result, run.Instance, run.Assigned, run.DurationMS)
	}
	return b.String()
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Opening a missing database would create an empty one, which makes
	// a typoed path look like an empty history.
	if _, err := os.Stat(opts.Database); err != nil {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("database not found: %s", opts.Database), nil)
		return NewExitError(ExitCommandError, "database not found")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var runs []store.Run
	if opts.Instance != "" {
		fingerprint := opts.Instance
		if _, statErr := os.Stat(fingerprint); statErr == nil {
			problem, err := dimacs.ParseFile(fingerprint)
			if err != nil {
				_ = formatter.Error(ErrCodeParse, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to parse instance", err)
			}
			fingerprint = dimacs.Fingerprint(problem)
		}
		runs, err = st.InstanceRuns(ctx, fingerprint)
	} else {
		runs, err = st.ListRuns(ctx, opts.Limit)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to query runs", err)
	}

	report := &historyReport{Runs: make([]runRow, 0, len(runs))}
	for _, run := range runs {
		report.Runs = append(report.Runs, runRow{
			ID:          run.ID,
			Instance:    run.Instance,
			Fingerprint: run.Fingerprint,
			Command:     run.Command,
			Result:      run.Result,
			Assigned:    run.Assigned,
			Completed:   run.Completed,
			DurationMS:  run.Duration.Milliseconds(),
			CreatedAt:   run.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return formatter.Success(report)
}
